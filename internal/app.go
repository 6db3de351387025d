package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// App holds the application state and dependencies
type App struct {
	youtube     VideoSource
	audio       *Audio
	cutter      AudioCutter
	prober      DurationProber
	ai          *AI
	transcriber Transcriber
	seedManager *SeedManager
	config      *Config
	logger      *zap.Logger
	ui          UIManager
	runID       string
}

// NewApp initializes the application
func NewApp(config *Config, logger *zap.Logger, options ...AppOption) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	cmdRunner := &DefaultCommandRunner{}
	audio := NewAudio(cmdRunner, config.Verbose)
	prober, err := NewDurationProber(config.DurationProbe, audio)
	if err != nil {
		return nil, err
	}
	ai := NewAIWithKey(config.OpenAIAPIKey, WhisperLimit, config.WhisperTimeout, config.CompletionTimeout)

	app := &App{
		youtube:     NewYouTube(config.RawRoot, logger),
		audio:       audio,
		cutter:      audio,
		prober:      prober,
		ai:          ai,
		transcriber: ai,
		seedManager: NewSeedManager(config.ConfigDir, config.Seeds),
		config:      config,
		logger:      logger,
		ui:          NewUIManager(config.Verbose, config.Quiet),
		runID:       runID,
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	return app, nil
}

// AppOption customizes App creation
type AppOption func(*App)

// WithYouTube sets a custom video source
func WithYouTube(youtube VideoSource) AppOption {
	return func(a *App) {
		a.youtube = youtube
	}
}

// WithAudioCutter sets a custom audio cutter
func WithAudioCutter(cutter AudioCutter) AppOption {
	return func(a *App) {
		a.cutter = cutter
	}
}

// WithProber sets a custom duration prober
func WithProber(prober DurationProber) AppOption {
	return func(a *App) {
		a.prober = prober
	}
}

// WithAI sets a custom AI processor
func WithAI(ai *AI) AppOption {
	return func(a *App) {
		a.ai = ai
		a.transcriber = ai
	}
}

// WithTranscriber sets a custom transcription collaborator
func WithTranscriber(t Transcriber) AppOption {
	return func(a *App) {
		a.transcriber = t
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// SetSeedManager sets a new seed manager
func (app *App) SetSeedManager(sm *SeedManager) {
	app.seedManager = sm
}

// RunID identifies this invocation in logs
func (app *App) RunID() string {
	return app.runID
}

// Config returns the application configuration
func (app *App) Config() *Config {
	return app.config
}

// Fetch downloads and exports a channel's newest uploads, or the given videos when ids is non-empty,
// then records them in the catalog and writes the video reports.
func (app *App) Fetch(ctx context.Context, channelID string, limit int, ids []string) ([]VideoInfo, error) {
	if err := EnsureDirs(app.config.AudioRoot, app.config.RawRoot, app.config.DataDir); err != nil {
		return nil, fmt.Errorf("creating data directories: %w", err)
	}

	catalog, err := OpenCatalog(app.config.CatalogPath())
	if err != nil {
		return nil, err
	}
	defer catalog.Close()

	exporter := NewExporter(app.cutter, app.prober, app.logger)
	fetcher := NewFetcher(app.youtube, exporter, catalog, app.logger, app.ui, app.config.AudioRoot)

	var videos []VideoInfo
	if len(ids) > 0 {
		videos, err = fetcher.RunVideos(ctx, ids)
	} else {
		videos, err = fetcher.Run(ctx, channelID, limit)
	}
	if err != nil {
		return videos, err
	}

	mdPath, csvPath, err := WriteVideoReports(app.config.AudioRoot, videos)
	if err != nil {
		return videos, err
	}
	app.ui.Verbose("Wrote %s and %s\n", mdPath, csvPath)
	return videos, nil
}

// Transcribe writes Whisper transcripts for every episode
func (app *App) Transcribe(ctx context.Context, previewOnly bool) (TranscribeStats, error) {
	stage := NewTranscribeEpisodes(app.transcriber, app.prober, app.logger, app.ui)
	return stage.Run(ctx, app.config.AudioRoot, previewOnly)
}

// Check runs integrity checks in order
func (app *App) Check(ctx context.Context, stages []Stage, threshold float64) ([]Report, error) {
	ledger := NewLedger(app.prober, app.logger)
	reports := make([]Report, 0, len(stages))
	for _, stage := range stages {
		report, err := ledger.Check(ctx, stage, app.config.AudioRoot, threshold)
		if err != nil {
			return reports, fmt.Errorf("checking %s: %w", stage, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// BuildDataset collects examples and writes one JSONL file per portion
func (app *App) BuildDataset(ctx context.Context, threshold float64, portions []float64, options ...DatasetOption) ([]string, error) {
	options = append([]DatasetOption{WithPromptWindow(app.config.PromptWindow)}, options...)
	builder := NewDatasetBuilder(app.prober, app.logger, options...)

	examples, err := builder.Collect(ctx, app.config.AudioRoot, threshold)
	if err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no usable transcripts under %s", ErrNotFound, app.config.AudioRoot)
	}
	app.ui.Printf("Collected %d examples (estimated full training cost $%.4f)\n", len(examples), EstimateTrainingCost(examples))
	return builder.WritePortions(app.config.DatasetRoot, examples, portions)
}

// FineTuner returns the fine-tune operator
func (app *App) FineTuner(options ...FineTunerOption) *FineTuner {
	return NewFineTuner(app.ai, app.logger, app.ui, options...)
}

// Seeds returns the configured seed sentences
func (app *App) Seeds() ([]string, error) {
	return app.seedManager.Seeds()
}

// PlanEpisode lists every planned artifact of an episode and whether it exists
func (app *App) PlanEpisode(ctx context.Context, episodeDir string) ([]PlanRow, error) {
	totalMs, err := app.prober.DurationMs(ctx, FullAudioPath(episodeDir))
	if err != nil {
		return nil, fmt.Errorf("probing duration: %w", err)
	}
	return PlanRows(episodeDir, totalMs)
}

// ChunkPlan returns the chunk paths of one spec and asset kind for an episode
func (app *App) ChunkPlan(ctx context.Context, episodeDir string, spec ChunkSpec, kind AssetKind) ([]string, error) {
	totalMs, err := app.prober.DurationMs(ctx, FullAudioPath(episodeDir))
	if err != nil {
		return nil, fmt.Errorf("probing duration: %w", err)
	}
	return Plan(episodeDir, totalMs, spec, kind)
}

// PlanRows lists the fixed artifacts followed by every planned chunk
func PlanRows(episodeDir string, totalMs int64) ([]PlanRow, error) {
	rows := []PlanRow{
		{Kind: "full", Path: FullAudioPath(episodeDir)},
		{Kind: "preview", Path: PreviewAudioPath(episodeDir)},
		{Kind: "preview transcript", Path: PreviewTranscriptPath(episodeDir)},
	}
	steps := []struct {
		spec ChunkSpec
		kind AssetKind
	}{
		{HourChunks, AudioAsset},
		{FiveMinuteChunks, AudioAsset},
		{FiveMinuteChunks, TranscriptAsset},
	}
	for _, step := range steps {
		paths, err := Plan(episodeDir, totalMs, step.spec, step.kind)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			rows = append(rows, PlanRow{Kind: step.spec.Keyword.String() + " " + step.kind.String(), Path: p})
		}
	}
	for i := range rows {
		rows[i].Exists = isRegularFile(rows[i].Path)
	}
	return rows, nil
}

// EpisodeTranscript returns an episode's stitched five minute transcripts
func (app *App) EpisodeTranscript(ctx context.Context, episodeDir string) (string, error) {
	return EpisodeTranscript(ctx, app.prober, episodeDir)
}

// ResolveEpisodeDir accepts an episode directory, a video ID or a YouTube URL
func (app *App) ResolveEpisodeDir(arg string) (string, error) {
	if abs, err := filepath.Abs(arg); err == nil && isDir(abs) {
		return abs, nil
	}
	_, id, err := ParseArg(arg)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(app.config.AudioRoot, id)
	if !isDir(dir) {
		return "", fmt.Errorf("%w: no episode directory for %s", ErrNotFound, id)
	}
	return dir, nil
}

// CatalogReport lists the catalog, writes the markdown and CSV reports and returns the markdown
func (app *App) CatalogReport(ctx context.Context, outDir string) (string, error) {
	catalog, err := OpenCatalog(app.config.CatalogPath())
	if err != nil {
		return "", err
	}
	defer catalog.Close()

	entries, err := catalog.List(ctx)
	if err != nil {
		return "", err
	}
	videos := make([]VideoInfo, 0, len(entries))
	for _, e := range entries {
		videos = append(videos, e.VideoInfo)
	}

	if _, _, err := WriteVideoReports(outDir, videos); err != nil {
		return "", err
	}
	return VideoMarkdownTable(videos), nil
}
