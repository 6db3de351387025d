package internal

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Audio handles audio file operations using FFmpeg
type Audio struct {
	cmdRunner CommandRunner
	verbose   bool
}

// NewAudio creates a new audio processor
func NewAudio(cmdRunner CommandRunner, verbose bool) *Audio {
	return &Audio{
		cmdRunner: cmdRunner,
		verbose:   verbose,
	}
}

// DurationMs returns the audio duration in milliseconds as reported by ffprobe
func (a *Audio) DurationMs(ctx context.Context, audioFile string) (int64, error) {
	if !FileExists(audioFile) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, audioFile)
	}

	output, err := a.cmdRunner.Run(ctx, "ffprobe",
		"-i", audioFile,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0")
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe failed on %s: %v\nOutput: %s", ErrNotFound, audioFile, err, string(output))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing duration of %s: %v", ErrNotFound, audioFile, err)
	}
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: unusable duration %q for %s", ErrNotFound, strings.TrimSpace(string(output)), audioFile)
	}

	return int64(seconds * 1000), nil
}

// Transcode converts any audio ffmpeg can read into mp3
func (a *Audio) Transcode(ctx context.Context, input, output string) error {
	cmdOutput, err := a.cmdRunner.Run(ctx, "ffmpeg",
		"-v", "quiet",
		"-i", input,
		"-vn",
		"-c:a", codecFor(input),
		"-y", output)
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(cmdOutput))
	}
	return nil
}

// Chunk extracts the [r.Start, r.End) segment of an audio file
func (a *Audio) Chunk(ctx context.Context, audioFile string, r ChunkRange, output string) error {
	if r.Len() <= 0 {
		return fmt.Errorf("%w: empty range %d-%d for %s", ErrInvalidArgument, r.Start, r.End, output)
	}

	cmdOutput, err := a.cmdRunner.Run(ctx, "ffmpeg",
		"-v", "quiet",
		"-i", audioFile,
		"-ss", formatSeconds(r.Start),
		"-t", formatSeconds(r.Len()),
		"-c:a", codecFor(audioFile),
		"-y", output)
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(cmdOutput))
	}
	return nil
}

// codecFor copies mp3 streams and re-encodes everything else
func codecFor(input string) string {
	if strings.EqualFold(filepath.Ext(input), audioExt) {
		return "copy"
	}
	return "libmp3lame"
}

func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
