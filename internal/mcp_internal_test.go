package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

type staticProber map[string]int64

func (p staticProber) DurationMs(_ context.Context, path string) (int64, error) {
	if ms, ok := p[path]; ok {
		return ms, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// newTestMCPServer builds a server over one 650 second episode with every audio file
// and the first two five minute transcripts
func newTestMCPServer(t *testing.T) (*MCPServer, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "tAP1eZYEuKA")
	const totalMs = 650_000

	files := []string{FullAudioPath(dir), PreviewAudioPath(dir)}
	for _, spec := range []ChunkSpec{HourChunks, FiveMinuteChunks} {
		paths, err := Plan(dir, totalMs, spec, AudioAsset)
		if err != nil {
			t.Fatalf("Plan returned error: %v", err)
		}
		files = append(files, paths...)
	}
	for _, f := range files {
		mustWrite(t, f, "audio")
	}
	transcripts, err := Plan(dir, totalMs, FiveMinuteChunks, TranscriptAsset)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	mustWrite(t, transcripts[0], "第一段")
	mustWrite(t, transcripts[1], "第二段")

	app := &App{
		prober: staticProber{FullAudioPath(dir): totalMs},
		config: &Config{AudioRoot: root, RepetitionThreshold: 0.1},
		logger: zap.NewNop(),
	}
	return NewMCPServer(app, "test"), dir
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("tool returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestMCPPlanChunks(t *testing.T) {
	s, dir := newTestMCPServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{
			name: "five minute audio by default",
			args: map[string]any{"episode_dir": dir},
			want: []string{"1_5_mins_chuck.mp3", "2_5_mins_chuck.mp3", "3_5_mins_chuck.mp3"},
		},
		{
			name: "hour chunks by video ID",
			args: map[string]any{"episode_dir": "tAP1eZYEuKA", "chunk": "1h"},
			want: []string{"1_hour_chuck.mp3"},
		},
		{
			name: "transcripts",
			args: map[string]any{"episode_dir": dir, "kind": "transcript"},
			want: []string{"1_5_mins_chuck.txt", "2_5_mins_chuck.txt", "3_5_mins_chuck.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handlePlanChunks(ctx, callTool("plan_chunks", tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if result.IsError {
				t.Fatalf("tool error: %s", resultText(t, result))
			}
			lines := strings.Split(resultText(t, result), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d paths, want %d: %v", len(lines), len(tt.want), lines)
			}
			for i, want := range tt.want {
				if filepath.Base(lines[i]) != want {
					t.Fatalf("path %d = %s, want %s", i, lines[i], want)
				}
			}
		})
	}
}

func TestMCPPlanChunksErrors(t *testing.T) {
	s, _ := newTestMCPServer(t)
	ctx := context.Background()

	for _, args := range []map[string]any{
		{},
		{"episode_dir": "zzzzzzzzzzz"},
		{"episode_dir": "tAP1eZYEuKA", "chunk": "2h"},
		{"episode_dir": "tAP1eZYEuKA", "kind": "video"},
		{"episode_dir": "tAP1eZYEuKA", "kind": "Transcript"},
		{"episode_dir": "tAP1eZYEuKA", "kind": ""},
	} {
		result, err := s.handlePlanChunks(ctx, callTool("plan_chunks", args))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if !result.IsError {
			t.Fatalf("expected a tool error for %v", args)
		}
	}
}

func TestMCPCheckIntegrity(t *testing.T) {
	s, _ := newTestMCPServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"audio", map[string]any{"stage": "audio_creation"}, "Success: 6\nFailure: 0\nTotal: 6\nSuccess rate: 100.00%"},
		{"transcripts", map[string]any{"stage": "transcript_creation"}, "Success: 2\nFailure: 2\nTotal: 4\nSuccess rate: 50.00%"},
		// each transcript is a single token
		{"quality at default threshold", map[string]any{"stage": "transcript_quality"}, "Success: 0\nFailure: 2\nTotal: 2\n"},
		{"quality at threshold one", map[string]any{"stage": "transcript_quality", "threshold": 1.0}, "Success: 2\nFailure: 0\nTotal: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleCheckIntegrity(ctx, callTool("check_integrity", tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			text := resultText(t, result)
			if result.IsError || !strings.Contains(text, tt.want) {
				t.Fatalf("unexpected result:\n%s", text)
			}
		})
	}

	result, err := s.handleCheckIntegrity(ctx, callTool("check_integrity", map[string]any{"stage": "uploads"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected a tool error for an unknown stage")
	}
}

func TestMCPGetEpisodeTranscript(t *testing.T) {
	s, dir := newTestMCPServer(t)

	result, err := s.handleGetTranscript(context.Background(), callTool("get_episode_transcript", map[string]any{"episode_dir": dir}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if got := resultText(t, result); result.IsError || got != "第一段\n第二段" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestMCPRegistersTools(t *testing.T) {
	s, _ := newTestMCPServer(t)
	tools := s.GetServer().ListTools()
	for _, name := range []string{"plan_chunks", "check_integrity", "get_episode_transcript"} {
		if _, ok := tools[name]; !ok {
			t.Fatalf("tool %s not registered", name)
		}
	}
}
