package internal_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// writeMP3 writes n silent MPEG-1 Layer III frames (128 kbps, 44.1 kHz, stereo)
func writeMP3(t *testing.T, path string, n int) {
	t.Helper()
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	var buf bytes.Buffer
	for range n {
		buf.Write(frame)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestMP3ProberSumsFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full.mp3")
	writeMP3(t, path, 100)

	got, err := internal.MP3Prober{}.DurationMs(context.Background(), path)
	if err != nil {
		t.Fatalf("DurationMs returned error: %v", err)
	}
	// 1152 samples at 44.1 kHz is ~26.122 ms per frame
	if got < 2610 || got > 2614 {
		t.Fatalf("DurationMs = %d, want ~2612", got)
	}
}

func TestMP3ProberMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.mp3"), empty} {
		if _, err := (internal.MP3Prober{}).DurationMs(context.Background(), path); !errors.Is(err, internal.ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", path, err)
		}
	}
}

func TestNewDurationProber(t *testing.T) {
	audio := internal.NewAudio(&fakeRunner{}, false)

	p, err := internal.NewDurationProber("mp3", audio)
	if err != nil {
		t.Fatalf("NewDurationProber(mp3) returned error: %v", err)
	}
	if _, ok := p.(internal.MP3Prober); !ok {
		t.Fatalf("expected MP3Prober, got %T", p)
	}

	p, err = internal.NewDurationProber("ffprobe", audio)
	if err != nil {
		t.Fatalf("NewDurationProber(ffprobe) returned error: %v", err)
	}
	if p != internal.DurationProber(audio) {
		t.Fatalf("expected the audio processor, got %T", p)
	}

	if _, err := internal.NewDurationProber("sox", audio); !errors.Is(err, internal.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
