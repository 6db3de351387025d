package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Transcriber is the audio to text collaborator
type Transcriber interface {
	Transcribe(ctx context.Context, audioFile string) (string, error)
}

// TranscribeStats counts outcomes of a transcription run
type TranscribeStats struct {
	Transcribed int
	Skipped     int
	Failed      int
}

// TranscribeEpisodes writes Whisper transcripts for every episode under root
type TranscribeEpisodes struct {
	transcriber Transcriber
	prober      DurationProber
	logger      *zap.Logger
	ui          UIManager
}

// NewTranscribeEpisodes creates the transcription stage
func NewTranscribeEpisodes(transcriber Transcriber, prober DurationProber, logger *zap.Logger, ui UIManager) *TranscribeEpisodes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscribeEpisodes{
		transcriber: transcriber,
		prober:      prober,
		logger:      logger.With(zap.String("component", "transcriber")),
		ui:          ui,
	}
}

type transcriptJob struct {
	audio      string
	transcript string
}

// Run transcribes previews and, unless previewOnly, every five minute chunk.
// Existing transcripts are kept; per-file failures are counted and the run continues.
func (t *TranscribeEpisodes) Run(ctx context.Context, root string, previewOnly bool) (TranscribeStats, error) {
	var stats TranscribeStats
	episodes, err := ListEpisodes(root)
	if err != nil {
		return stats, err
	}

	var jobs []transcriptJob
	for _, dir := range episodes {
		episodeJobs, err := t.plan(ctx, dir, previewOnly)
		if err != nil {
			return stats, err
		}
		jobs = append(jobs, episodeJobs...)
	}

	bar := t.ui.NewProgressBar(len(jobs), "Transcribing")
	defer bar.Finish()

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		bar.Set(i)

		if FileExists(job.transcript) {
			stats.Skipped++
			t.logger.Debug("transcript exists", zap.String("path", job.transcript))
			continue
		}
		if err := t.transcribeOne(ctx, job); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed++
			t.logger.Error("transcription failed", zap.String("audio", job.audio), zap.Error(err))
			continue
		}
		stats.Transcribed++
		t.logger.Info("transcribed", zap.String("audio", job.audio), zap.String("path", job.transcript))
	}
	bar.Set(len(jobs))

	return stats, nil
}

// plan pairs each expected audio file with its transcript path
func (t *TranscribeEpisodes) plan(ctx context.Context, dir string, previewOnly bool) ([]transcriptJob, error) {
	jobs := []transcriptJob{{audio: PreviewAudioPath(dir), transcript: PreviewTranscriptPath(dir)}}
	if previewOnly {
		return jobs, nil
	}

	full := FullAudioPath(dir)
	totalMs, err := t.prober.DurationMs(ctx, full)
	if err != nil {
		t.logger.Warn("skipping chunks without full audio duration", zap.String("path", full), zap.Error(err))
		return jobs, nil
	}

	audio, err := Plan(dir, totalMs, FiveMinuteChunks, AudioAsset)
	if err != nil {
		return nil, err
	}
	transcripts, err := Plan(dir, totalMs, FiveMinuteChunks, TranscriptAsset)
	if err != nil {
		return nil, err
	}
	for i := range audio {
		jobs = append(jobs, transcriptJob{audio: audio[i], transcript: transcripts[i]})
	}
	return jobs, nil
}

func (t *TranscribeEpisodes) transcribeOne(ctx context.Context, job transcriptJob) error {
	if !FileExists(job.audio) {
		return fmt.Errorf("%w: %s", ErrNotFound, job.audio)
	}
	text, err := t.transcriber.Transcribe(ctx, job.audio)
	if err != nil {
		return err
	}
	if err := EnsureDirs(filepath.Dir(job.transcript)); err != nil {
		return fmt.Errorf("creating transcript directory: %w", err)
	}
	if err := os.WriteFile(job.transcript, []byte(text), 0644); err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

// EpisodeTranscript concatenates an episode's five minute transcripts in plan order
func EpisodeTranscript(ctx context.Context, prober DurationProber, dir string) (string, error) {
	totalMs, err := prober.DurationMs(ctx, FullAudioPath(dir))
	if err != nil {
		return "", fmt.Errorf("probing duration: %w", err)
	}
	paths, err := Plan(dir, totalMs, FiveMinuteChunks, TranscriptAsset)
	if err != nil {
		return "", err
	}

	var parts []byte
	found := 0
	for _, p := range paths {
		text, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if found > 0 {
			parts = append(parts, '\n')
		}
		parts = append(parts, text...)
		found++
	}
	if found == 0 {
		return "", fmt.Errorf("%w: no transcripts under %s", ErrNotFound, filepath.Join(dir, TranscriptSubdir))
	}
	return string(parts), nil
}
