package internal_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

func TestAudioDurationMs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "full.mp3")
	writeFile(t, file, "mp3")

	runner := &fakeRunner{output: []byte("650.1234\n")}
	audio := internal.NewAudio(runner, false)

	got, err := audio.DurationMs(context.Background(), file)
	if err != nil {
		t.Fatalf("DurationMs returned error: %v", err)
	}
	if got != 650_123 {
		t.Fatalf("DurationMs = %d, want 650123", got)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "ffprobe" {
		t.Fatalf("expected one ffprobe call, got %v", runner.calls)
	}
}

func TestAudioDurationMsUnusable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "full.mp3")
	writeFile(t, file, "mp3")

	tests := []struct {
		name   string
		runner *fakeRunner
		path   string
	}{
		{"missing file", &fakeRunner{}, filepath.Join(dir, "nope.mp3")},
		{"ffprobe fails", &fakeRunner{err: errors.New("exit status 1")}, file},
		{"garbage output", &fakeRunner{output: []byte("N/A")}, file},
		{"zero duration", &fakeRunner{output: []byte("0")}, file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := internal.NewAudio(tt.runner, false).DurationMs(context.Background(), tt.path)
			if !errors.Is(err, internal.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestAudioChunkArguments(t *testing.T) {
	runner := &fakeRunner{}
	audio := internal.NewAudio(runner, false)

	r := internal.ChunkRange{Index: 3, Start: 600_000, End: 650_500}
	if err := audio.Chunk(context.Background(), "full.mp3", r, "3_5_mins_chuck.mp3"); err != nil {
		t.Fatalf("Chunk returned error: %v", err)
	}

	got := joinArgs(runner.calls[0])
	want := "ffmpeg -v quiet -i full.mp3 -ss 600.000 -t 50.500 -c:a copy -y 3_5_mins_chuck.mp3"
	if got != want {
		t.Fatalf("ffmpeg args:\n got %s\nwant %s", got, want)
	}
}

func TestAudioChunkRejectsEmptyRange(t *testing.T) {
	runner := &fakeRunner{}
	err := internal.NewAudio(runner, false).Chunk(context.Background(), "full.mp3", internal.ChunkRange{Start: 10, End: 10}, "out.mp3")
	if !errors.Is(err, internal.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("ffmpeg should not run for an empty range")
	}
}

func TestAudioTranscodeReencodesNonMP3(t *testing.T) {
	runner := &fakeRunner{}
	audio := internal.NewAudio(runner, false)

	if err := audio.Transcode(context.Background(), "abc.webm", "full.mp3"); err != nil {
		t.Fatalf("Transcode returned error: %v", err)
	}
	if got := joinArgs(runner.calls[0]); !strings.Contains(got, "-c:a libmp3lame") {
		t.Fatalf("expected libmp3lame for webm input, got %s", got)
	}

	runner.err = errors.New("boom")
	runner.output = []byte("bad input")
	err := audio.Transcode(context.Background(), "abc.mp3", "full.mp3")
	if err == nil || !strings.Contains(err.Error(), "bad input") {
		t.Fatalf("expected ffmpeg output in error, got %v", err)
	}
}
