package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
)

// Stage names an integrity check
type Stage string

const (
	StageAudioCreation      Stage = "audio_creation"
	StageTranscriptCreation Stage = "transcript_creation"
	StageTranscriptQuality  Stage = "transcript_quality"
)

// ParseStage maps a stage name to its Stage
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageAudioCreation, StageTranscriptCreation, StageTranscriptQuality:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("%w: unknown stage %q (supported: %s, %s, %s)", ErrInvalidArgument, s,
			StageAudioCreation, StageTranscriptCreation, StageTranscriptQuality)
	}
}

// Report aggregates the outcome of one integrity check
type Report struct {
	Stage   Stage
	Success int
	Failure int
	Total   int
}

// SuccessRate returns the success percentage; ok is false when nothing was checked
func (r Report) SuccessRate() (float64, bool) {
	if r.Total == 0 {
		return 0, false
	}
	return 100 * float64(r.Success) / float64(r.Total), true
}

// RateString formats SuccessRate for display
func (r Report) RateString() string {
	rate, ok := r.SuccessRate()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", rate)
}

func (r *Report) record(ok bool) {
	r.Total++
	if ok {
		r.Success++
	} else {
		r.Failure++
	}
}

// Ledger verifies that every artifact the chunk plan expects exists on disk
type Ledger struct {
	prober DurationProber
	logger *zap.Logger
}

// NewLedger creates a ledger that probes full.mp3 durations with prober
func NewLedger(prober DurationProber, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		prober: prober,
		logger: logger.With(zap.String("component", "ledger")),
	}
}

// ListEpisodes returns the episode directories under root in lexical order
func ListEpisodes(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing episodes in %s: %w", root, err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}

// Check runs the named stage
func (l *Ledger) Check(ctx context.Context, stage Stage, root string, threshold float64) (Report, error) {
	switch stage {
	case StageAudioCreation:
		return l.CheckAudioCreation(ctx, root)
	case StageTranscriptCreation:
		return l.CheckTranscriptCreation(ctx, root)
	case StageTranscriptQuality:
		return l.CheckTranscriptQuality(ctx, root, threshold)
	default:
		return Report{}, fmt.Errorf("%w: unknown stage %q", ErrInvalidArgument, stage)
	}
}

// CheckAudioCreation verifies full audio, preview and every hour and five minute chunk
func (l *Ledger) CheckAudioCreation(ctx context.Context, root string) (Report, error) {
	report := Report{Stage: StageAudioCreation}
	episodes, err := ListEpisodes(root)
	if err != nil {
		return report, err
	}

	for _, dir := range episodes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		l.expect(&report, FullAudioPath(dir))
		l.expect(&report, PreviewAudioPath(dir))

		totalMs, ok := l.duration(ctx, dir)
		if !ok {
			continue
		}
		for _, spec := range []ChunkSpec{HourChunks, FiveMinuteChunks} {
			paths, err := Plan(dir, totalMs, spec, AudioAsset)
			if err != nil {
				return report, err
			}
			for _, p := range paths {
				l.expect(&report, p)
			}
		}
	}

	l.summarize(report)
	return report, nil
}

// CheckTranscriptCreation verifies the preview transcript and every five minute transcript
func (l *Ledger) CheckTranscriptCreation(ctx context.Context, root string) (Report, error) {
	report := Report{Stage: StageTranscriptCreation}
	episodes, err := ListEpisodes(root)
	if err != nil {
		return report, err
	}

	for _, dir := range episodes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		l.expect(&report, PreviewTranscriptPath(dir))

		totalMs, ok := l.duration(ctx, dir)
		if !ok {
			continue
		}
		paths, err := Plan(dir, totalMs, FiveMinuteChunks, TranscriptAsset)
		if err != nil {
			return report, err
		}
		for _, p := range paths {
			l.expect(&report, p)
		}
	}

	l.summarize(report)
	return report, nil
}

// CheckTranscriptQuality runs the repetition heuristic over every existing five minute transcript
func (l *Ledger) CheckTranscriptQuality(ctx context.Context, root string, threshold float64) (Report, error) {
	report := Report{Stage: StageTranscriptQuality}
	if _, err := CheckRepetition("", threshold); err != nil {
		return report, err
	}
	episodes, err := ListEpisodes(root)
	if err != nil {
		return report, err
	}

	for _, dir := range episodes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		totalMs, ok := l.duration(ctx, dir)
		if !ok {
			continue
		}
		paths, err := Plan(dir, totalMs, FiveMinuteChunks, TranscriptAsset)
		if err != nil {
			return report, err
		}
		for _, p := range paths {
			if !isRegularFile(p) {
				continue
			}
			report.record(l.passesQuality(p, threshold))
		}
	}

	l.summarize(report)
	return report, nil
}

func (l *Ledger) passesQuality(path string, threshold float64) bool {
	text, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error("reading transcript", zap.String("path", path), zap.Error(err))
		return false
	}
	result, err := CheckRepetition(string(text), threshold)
	if err != nil {
		l.logger.Error("checking repetition", zap.String("path", path), zap.Error(err))
		return false
	}
	if result.Repetitive {
		l.logger.Warn("repetitive transcript",
			zap.String("path", path),
			zap.String("token", result.Token),
			zap.Float64("share", result.Share),
			zap.Int("tokens", result.Tokens))
		return false
	}
	return true
}

// expect records whether path exists as a regular file
func (l *Ledger) expect(report *Report, path string) {
	ok := isRegularFile(path)
	if !ok {
		l.logger.Error("missing artifact", zap.String("stage", string(report.Stage)), zap.String("path", path))
	}
	report.record(ok)
}

// duration probes full.mp3; on failure the episode's chunk checks are skipped
func (l *Ledger) duration(ctx context.Context, dir string) (int64, bool) {
	full := FullAudioPath(dir)
	totalMs, err := l.prober.DurationMs(ctx, full)
	if err != nil {
		level := l.logger.Error
		if errors.Is(err, ErrNotFound) {
			level = l.logger.Warn
		}
		level("cannot plan chunks without full audio duration", zap.String("path", full), zap.Error(err))
		return 0, false
	}
	return totalMs, true
}

func (l *Ledger) summarize(r Report) {
	l.logger.Info("integrity check finished",
		zap.String("stage", string(r.Stage)),
		zap.Int("success", r.Success),
		zap.Int("failure", r.Failure),
		zap.Int("total", r.Total),
		zap.String("success_rate", r.RateString()))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
