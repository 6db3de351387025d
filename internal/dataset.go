package internal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PromptSeparator joins prompt tokens in dataset records and completion prompts
const PromptSeparator = "/!"

// DefaultPromptWindow is the number of tokens per prompt
const DefaultPromptWindow = 3

// DefaultPortions are the dataset fractions written by WritePortions
var DefaultPortions = []float64{0.005, 0.01, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// Example is one fine-tuning record
type Example struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// BuildExamples slides a window over tokens, pairing each window with the next token.
// Inputs with no more tokens than the window produce no examples.
func BuildExamples(tokens []string, window int) ([]Example, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: prompt window must be positive, got %d", ErrInvalidArgument, window)
	}
	if len(tokens) <= window {
		return nil, nil
	}

	examples := make([]Example, 0, len(tokens)-window)
	for i := 0; i+window < len(tokens); i++ {
		examples = append(examples, Example{
			Prompt:     strings.Join(tokens[i:i+window], PromptSeparator),
			Completion: tokens[i+window],
		})
	}
	return examples, nil
}

// DatasetBuilder turns transcripts into JSONL fine-tuning files
type DatasetBuilder struct {
	prober DurationProber
	logger *zap.Logger
	window int
	rng    *rand.Rand
}

// DatasetOption customizes a DatasetBuilder
type DatasetOption func(*DatasetBuilder)

// WithRand sets the shuffle source
func WithRand(rng *rand.Rand) DatasetOption {
	return func(b *DatasetBuilder) {
		b.rng = rng
	}
}

// WithPromptWindow sets the number of prompt tokens
func WithPromptWindow(window int) DatasetOption {
	return func(b *DatasetBuilder) {
		b.window = window
	}
}

// NewDatasetBuilder creates a builder that plans transcript paths from full.mp3 durations
func NewDatasetBuilder(prober DurationProber, logger *zap.Logger, options ...DatasetOption) *DatasetBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &DatasetBuilder{
		prober: prober,
		logger: logger.With(zap.String("component", "dataset")),
		window: DefaultPromptWindow,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Collect gathers examples from every five minute transcript that exists and is not repetitive
func (b *DatasetBuilder) Collect(ctx context.Context, root string, threshold float64) ([]Example, error) {
	if _, err := CheckRepetition("", threshold); err != nil {
		return nil, err
	}
	if b.window < 1 {
		return nil, fmt.Errorf("%w: prompt window must be positive, got %d", ErrInvalidArgument, b.window)
	}
	episodes, err := ListEpisodes(root)
	if err != nil {
		return nil, err
	}

	var (
		examples                       []Example
		used, missing, repetitive, few int
	)
	for _, dir := range episodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		full := FullAudioPath(dir)
		totalMs, err := b.prober.DurationMs(ctx, full)
		if err != nil {
			b.logger.Warn("skipping episode without full audio duration", zap.String("path", full), zap.Error(err))
			continue
		}
		paths, err := Plan(dir, totalMs, FiveMinuteChunks, TranscriptAsset)
		if err != nil {
			return nil, err
		}

		for _, p := range paths {
			if !isRegularFile(p) {
				missing++
				b.logger.Debug("transcript missing", zap.String("path", p))
				continue
			}
			text, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("reading transcript %s: %w", p, err)
			}

			result, err := CheckRepetition(string(text), threshold)
			if err != nil {
				return nil, err
			}
			if result.Repetitive {
				repetitive++
				b.logger.Info("skipping repetitive transcript",
					zap.String("path", p),
					zap.String("token", result.Token),
					zap.Float64("share", result.Share))
				continue
			}

			batch, err := BuildExamples(strings.Fields(string(text)), b.window)
			if err != nil {
				return nil, err
			}
			if len(batch) == 0 {
				few++
				b.logger.Info("skipping transcript shorter than prompt window",
					zap.String("path", p), zap.Int("window", b.window))
				continue
			}
			used++
			examples = append(examples, batch...)
		}
	}

	b.logger.Info("collected dataset examples",
		zap.Int("examples", len(examples)),
		zap.Int("transcripts", used),
		zap.Int("missing", missing),
		zap.Int("repetitive", repetitive),
		zap.Int("too_short", few))
	return examples, nil
}

// PortionFileName returns jsonl_dataset_{percent}_percent_{count}.jsonl
func PortionFileName(portion float64, count int) string {
	return fmt.Sprintf("jsonl_dataset_%d_percent_%d.jsonl", int(portion*100), count)
}

// PortionSize returns ceil(total * portion)
func PortionSize(total int, portion float64) int {
	return int(math.Ceil(float64(total) * portion))
}

// WritePortions writes one shuffled JSONL file per portion and returns their paths
func (b *DatasetBuilder) WritePortions(dir string, examples []Example, portions []float64) ([]string, error) {
	for _, p := range portions {
		if p <= 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("%w: dataset portion %v outside (0, 1]", ErrInvalidArgument, p)
		}
	}
	if err := EnsureDirs(dir); err != nil {
		return nil, fmt.Errorf("creating dataset directory: %w", err)
	}

	var written []string
	for _, portion := range portions {
		n := PortionSize(len(examples), portion)
		shuffled := make([]Example, len(examples))
		copy(shuffled, examples)
		b.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		path := filepath.Join(dir, PortionFileName(portion, n))
		if err := writeJSONL(path, shuffled[:n]); err != nil {
			return written, err
		}
		b.logger.Info("wrote dataset portion",
			zap.String("path", path),
			zap.Float64("portion", portion),
			zap.Int("records", n))
		written = append(written, path)
	}
	return written, nil
}

func writeJSONL(path string, examples []Example) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, ex := range examples {
		if err := enc.Encode(ex); err != nil {
			f.Close()
			return fmt.Errorf("encoding record for %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadJSONL loads dataset records from a JSONL file
func ReadJSONL(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	var examples []Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var ex Example
		if err := json.Unmarshal([]byte(raw), &ex); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrInvalidArgument, path, line, err)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return examples, nil
}
