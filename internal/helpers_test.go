package internal_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// fakeProber reports fixed durations keyed by path
type fakeProber map[string]int64

func (p fakeProber) DurationMs(_ context.Context, path string) (int64, error) {
	ms, ok := p[path]
	if !ok {
		return 0, fmt.Errorf("%w: %s", internal.ErrNotFound, path)
	}
	return ms, nil
}

// fakeRunner records commands and replays canned output
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	output []byte
	err    error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.output, r.err
}

// silentUI discards output and hands out no-op bars
type silentUI struct{}

func (silentUI) NewProgressBar(int, string) internal.ProgressBar { return noopBar{} }
func (silentUI) Verbose(string, ...interface{})                  {}
func (silentUI) Printf(string, ...interface{})                   {}

type noopBar struct{}

func (noopBar) Set(int)         {}
func (noopBar) Describe(string) {}
func (noopBar) Finish()         {}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// completeEpisode writes every artifact an episode of totalMs should have,
// with the given text in every five minute transcript
func completeEpisode(t *testing.T, dir string, totalMs int64, transcript string) {
	t.Helper()
	writeFile(t, internal.FullAudioPath(dir), "full")
	writeFile(t, internal.PreviewAudioPath(dir), "preview")
	writeFile(t, internal.PreviewTranscriptPath(dir), "preview transcript")
	for _, step := range []struct {
		spec internal.ChunkSpec
		kind internal.AssetKind
	}{
		{internal.HourChunks, internal.AudioAsset},
		{internal.FiveMinuteChunks, internal.AudioAsset},
		{internal.FiveMinuteChunks, internal.TranscriptAsset},
	} {
		paths, err := internal.Plan(dir, totalMs, step.spec, step.kind)
		if err != nil {
			t.Fatalf("Plan returned error: %v", err)
		}
		for _, p := range paths {
			content := "chunk"
			if step.kind == internal.TranscriptAsset {
				content = transcript
			}
			writeFile(t, p, content)
		}
	}
}

func joinArgs(call []string) string {
	return strings.Join(call, " ")
}
