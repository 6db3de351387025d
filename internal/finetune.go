package internal

import (
	"bufio"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Babbage pricing used for estimates, in USD
const (
	TrainingCostPer1KTokens = 0.0006
	UsageCostPer1KTokens    = 0.0024
	TrainingEpochs          = 4

	// AvgTokensPerSentence is the expected length of one generated sentence
	AvgTokensPerSentence = 18

	samplingPenalty = 0.2
)

// EstimateTrainingCost approximates two tokens per character over all records and epochs
func EstimateTrainingCost(examples []Example) float64 {
	chars := 0
	for _, ex := range examples {
		chars += utf8.RuneCountInString(ex.Prompt) + utf8.RuneCountInString(ex.Completion)
	}
	tokens := float64(chars * 2)
	return roundTo(tokens/1000*TrainingCostPer1KTokens*TrainingEpochs, 4)
}

// EstimateUsageCost approximates the cost of generating n sentences
func EstimateUsageCost(n int) float64 {
	return float64(n*AvgTokensPerSentence) / 1000 * UsageCostPer1KTokens
}

// FineTuner drives OpenAI fine-tuning jobs and samples fine-tuned models
type FineTuner struct {
	ai     *AI
	logger *zap.Logger
	ui     UIManager
	rng    *rand.Rand
	now    func() time.Time
}

// FineTunerOption customizes a FineTuner
type FineTunerOption func(*FineTuner)

// WithFineTuneRand sets the max_tokens sampling source
func WithFineTuneRand(rng *rand.Rand) FineTunerOption {
	return func(f *FineTuner) {
		f.rng = rng
	}
}

// WithClock sets the clock used for output file names
func WithClock(now func() time.Time) FineTunerOption {
	return func(f *FineTuner) {
		f.now = now
	}
}

// NewFineTuner creates a fine-tune operator
func NewFineTuner(ai *AI, logger *zap.Logger, ui UIManager, options ...FineTunerOption) *FineTuner {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &FineTuner{
		ai:     ai,
		logger: logger.With(zap.String("component", "finetune")),
		ui:     ui,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Start estimates the training cost, asks for confirmation, uploads the dataset and creates a job
func (f *FineTuner) Start(ctx context.Context, datasetPath, baseModel string) (FineTuneJob, error) {
	if baseModel == "" {
		return FineTuneJob{}, fmt.Errorf("%w: base model is required", ErrInvalidArgument)
	}
	examples, err := ReadJSONL(datasetPath)
	if err != nil {
		return FineTuneJob{}, err
	}
	if len(examples) == 0 {
		return FineTuneJob{}, fmt.Errorf("%w: dataset %s has no records", ErrInvalidArgument, datasetPath)
	}

	cost := EstimateTrainingCost(examples)
	f.ui.Printf("Dataset: %s (%d records)\n", datasetPath, len(examples))
	f.ui.Printf("Estimated training cost on %s: $%.4f\n", baseModel, cost)
	if !AskUser("Start fine-tuning?") {
		return FineTuneJob{}, fmt.Errorf("fine-tuning %w", ErrDeclined)
	}

	fileID, err := f.ai.UploadDataset(ctx, datasetPath)
	if err != nil {
		return FineTuneJob{}, err
	}
	f.logger.Info("uploaded dataset", zap.String("path", datasetPath), zap.String("file_id", fileID))

	job, err := f.ai.StartFineTune(ctx, baseModel, fileID)
	if err != nil {
		return FineTuneJob{}, err
	}
	f.logger.Info("fine-tune job created",
		zap.String("job_id", job.ID),
		zap.String("base_model", baseModel),
		zap.String("status", job.Status))
	return job, nil
}

// Models lists fine-tuning jobs with their resulting model names
func (f *FineTuner) Models(ctx context.Context) ([]FineTuneJob, error) {
	return f.ai.FineTuneJobs(ctx)
}

// Events returns a job's status and event log
func (f *FineTuner) Events(ctx context.Context, jobID string) (FineTuneJob, []FineTuneEvent, error) {
	if strings.TrimSpace(jobID) == "" {
		return FineTuneJob{}, nil, fmt.Errorf("%w: job ID is required", ErrInvalidArgument)
	}
	return f.ai.FineTuneStatus(ctx, jobID)
}

// Test generates n sentences from model, each prompted by the previous len(seeds) sentences,
// and writes the seeds plus generated sentences to outDir. It returns the file path.
func (f *FineTuner) Test(ctx context.Context, model string, n int, seeds []string, outDir string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("%w: model is required", ErrInvalidArgument)
	}
	if n <= 0 {
		return "", fmt.Errorf("%w: number of sentences must be positive, got %d", ErrInvalidArgument, n)
	}
	if len(seeds) == 0 {
		return "", fmt.Errorf("%w: at least one seed sentence is required", ErrInvalidArgument)
	}

	f.ui.Printf("Testing %s with %d sentences\n", model, n)
	f.ui.Printf("Estimated cost: $%.4f\n", EstimateUsageCost(n))
	if !AskUser("Continue?") {
		return "", fmt.Errorf("model test %w", ErrDeclined)
	}

	if err := EnsureDirs(outDir); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	window := append([]string(nil), seeds...)
	history := append([]string(nil), seeds...)
	// [0.8, 1.2] of the average, truncated
	minTokens := AvgTokensPerSentence * 8 / 10
	maxTokens := AvgTokensPerSentence * 12 / 10

	bar := f.ui.NewProgressBar(n, "Generating")
	for i := range n {
		bar.Set(i)
		prompt := strings.Join(window, PromptSeparator)
		f.logger.Debug("sampling", zap.Int("sentence", i+1), zap.String("prompt", prompt))

		sentence, err := f.ai.Complete(ctx, CompletionRequest{
			Model:            model,
			Prompt:           prompt,
			MaxTokens:        minTokens + f.rng.IntN(maxTokens-minTokens+1),
			PresencePenalty:  samplingPenalty,
			FrequencyPenalty: samplingPenalty,
		})
		if err != nil {
			bar.Finish()
			return "", fmt.Errorf("generating sentence %d: %w", i+1, err)
		}

		window = append(window[1:], sentence)
		history = append(history, sentence)
	}
	bar.Set(n)
	bar.Finish()

	path := filepath.Join(outDir, GeneratedFileName(model, n, f.now()))
	if err := writeLines(path, history); err != nil {
		return "", err
	}
	f.logger.Info("wrote generated chat history", zap.String("path", path), zap.Int("sentences", n))
	return path, nil
}

// GeneratedFileName returns generated_chat_history_{model}_{n}_{timestamp}.txt
func GeneratedFileName(model string, n int, at time.Time) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(model)
	return fmt.Sprintf("generated_chat_history_%s_%d_%s.txt", safe, n, at.Format("2006-01-02_15-04-05"))
}

func writeLines(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}
