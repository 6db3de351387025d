package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/tcolgate/mp3"
)

// DurationProber reports the length of an audio file without decoding the samples
type DurationProber interface {
	DurationMs(ctx context.Context, path string) (int64, error)
}

// MP3Prober sums mp3 frame header durations
type MP3Prober struct{}

// DurationMs walks the frame headers of an mp3 file
func (MP3Prober) DurationMs(ctx context.Context, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, fmt.Errorf("%w: opening %s: %v", ErrNotFound, path, err)
	}
	defer f.Close()

	var (
		decoder = mp3.NewDecoder(f)
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, fmt.Errorf("%w: reading mp3 frames of %s: %v", ErrNotFound, path, err)
		}
		total += frame.Duration()
		frames++
		if frames%4096 == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}

	if frames == 0 {
		return 0, fmt.Errorf("%w: no mp3 frames in %s", ErrNotFound, path)
	}
	return total.Milliseconds(), nil
}

// NewDurationProber selects a prober by its configuration name
func NewDurationProber(name string, audio *Audio) (DurationProber, error) {
	switch name {
	case "", "mp3":
		return MP3Prober{}, nil
	case "ffprobe":
		if audio == nil {
			return nil, fmt.Errorf("%w: ffprobe prober needs an audio processor", ErrInvalidArgument)
		}
		return audio, nil
	default:
		return nil, fmt.Errorf("%w: unknown duration probe %q (supported: mp3, ffprobe)", ErrInvalidArgument, name)
	}
}
