package internal

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// AudioCutter converts and slices audio files
type AudioCutter interface {
	Transcode(ctx context.Context, input, output string) error
	Chunk(ctx context.Context, audioFile string, r ChunkRange, output string) error
}

// Exporter derives every planned audio artifact of an episode from its raw download
type Exporter struct {
	cutter AudioCutter
	prober DurationProber
	logger *zap.Logger
}

// NewExporter creates the export stage
func NewExporter(cutter AudioCutter, prober DurationProber, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		cutter: cutter,
		prober: prober,
		logger: logger.With(zap.String("component", "export")),
	}
}

// Export writes full.mp3, the preview and every hour and five minute chunk into episodeDir.
// Existing outputs are kept, so rawFile may be empty when full.mp3 is already present.
// It returns the number of files written.
func (e *Exporter) Export(ctx context.Context, rawFile, episodeDir string) (int, error) {
	if err := EnsureDirs(episodeDir); err != nil {
		return 0, fmt.Errorf("creating episode directory: %w", err)
	}

	written := 0
	full := FullAudioPath(episodeDir)
	if !FileExists(full) {
		if rawFile == "" || !FileExists(rawFile) {
			return 0, fmt.Errorf("%w: no raw audio for %s", ErrNotFound, episodeDir)
		}
		if err := e.cutter.Transcode(ctx, rawFile, full); err != nil {
			return 0, fmt.Errorf("exporting full audio: %w", err)
		}
		written++
	}

	totalMs, err := e.prober.DurationMs(ctx, full)
	if err != nil {
		return written, fmt.Errorf("probing duration: %w", err)
	}

	preview := PreviewAudioPath(episodeDir)
	if !FileExists(preview) {
		r := ChunkRange{Index: 1, Start: 0, End: min(PreviewDuration.Milliseconds(), totalMs)}
		if err := e.cutter.Chunk(ctx, full, r, preview); err != nil {
			return written, fmt.Errorf("exporting preview: %w", err)
		}
		written++
	}

	for _, spec := range []ChunkSpec{HourChunks, FiveMinuteChunks} {
		ranges, err := ChunkRanges(totalMs, spec)
		if err != nil {
			return written, err
		}
		paths, err := Plan(episodeDir, totalMs, spec, AudioAsset)
		if err != nil {
			return written, err
		}
		for i, r := range ranges {
			if FileExists(paths[i]) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return written, err
			}
			if err := e.cutter.Chunk(ctx, full, r, paths[i]); err != nil {
				return written, fmt.Errorf("exporting %s chunk %d: %w", spec.Keyword, r.Index, err)
			}
			written++
		}
	}

	e.logger.Info("episode exported",
		zap.String("episode", episodeDir),
		zap.Int64("duration_ms", totalMs),
		zap.Int("written", written))
	return written, nil
}
