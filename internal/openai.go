package internal

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateTranscription(ctx context.Context, file *os.File) (string, error)
	UploadFineTuneFile(ctx context.Context, file *os.File) (string, error)
	CreateFineTuneJob(ctx context.Context, baseModel, trainingFileID string) (FineTuneJob, error)
	ListFineTuneJobs(ctx context.Context) ([]FineTuneJob, error)
	GetFineTuneJob(ctx context.Context, jobID string) (FineTuneJob, error)
	ListFineTuneEvents(ctx context.Context, jobID string) ([]FineTuneEvent, error)
	CreateCompletion(ctx context.Context, req CompletionRequest) (string, error)
}

// FineTuneJob is the subset of a fine-tuning job the CLI shows
type FineTuneJob struct {
	ID             string
	Status         string
	BaseModel      string
	FineTunedModel string
	TrainingFile   string
	CreatedAt      time.Time
}

// FineTuneEvent is one entry of a job's event log
type FineTuneEvent struct {
	ID        string
	Level     string
	Message   string
	CreatedAt time.Time
}

// CompletionRequest holds the sampling parameters for a legacy completion
type CompletionRequest struct {
	Model            string
	Prompt           string
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// CreateTranscription implements the transcription method
func (c *OpenAIClient) CreateTranscription(ctx context.Context, file *os.File) (string, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// UploadFineTuneFile uploads a JSONL training file and returns its file ID
func (c *OpenAIClient) UploadFineTuneFile(ctx context.Context, file *os.File) (string, error) {
	resp, err := c.client.Files.New(ctx, openai.FileNewParams{
		File:    file,
		Purpose: openai.FilePurposeFineTune,
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateFineTuneJob starts a fine-tuning job on baseModel
func (c *OpenAIClient) CreateFineTuneJob(ctx context.Context, baseModel, trainingFileID string) (FineTuneJob, error) {
	job, err := c.client.FineTuning.Jobs.New(ctx, openai.FineTuningJobNewParams{
		Model:        openai.FineTuningJobNewParamsModel(baseModel),
		TrainingFile: trainingFileID,
	})
	if err != nil {
		return FineTuneJob{}, err
	}
	return toFineTuneJob(job), nil
}

// ListFineTuneJobs returns every fine-tuning job of the organization
func (c *OpenAIClient) ListFineTuneJobs(ctx context.Context) ([]FineTuneJob, error) {
	iter := c.client.FineTuning.Jobs.ListAutoPaging(ctx, openai.FineTuningJobListParams{})
	var jobs []FineTuneJob
	for iter.Next() {
		job := iter.Current()
		jobs = append(jobs, toFineTuneJob(&job))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetFineTuneJob fetches a single job
func (c *OpenAIClient) GetFineTuneJob(ctx context.Context, jobID string) (FineTuneJob, error) {
	job, err := c.client.FineTuning.Jobs.Get(ctx, jobID)
	if err != nil {
		return FineTuneJob{}, err
	}
	return toFineTuneJob(job), nil
}

// ListFineTuneEvents returns a job's events oldest first
func (c *OpenAIClient) ListFineTuneEvents(ctx context.Context, jobID string) ([]FineTuneEvent, error) {
	page, err := c.client.FineTuning.Jobs.ListEvents(ctx, jobID, openai.FineTuningJobListEventsParams{
		Limit: openai.Int(100),
	})
	if err != nil {
		return nil, err
	}
	events := make([]FineTuneEvent, 0, len(page.Data))
	for _, e := range page.Data {
		events = append(events, FineTuneEvent{
			ID:        e.ID,
			Level:     string(e.Level),
			Message:   e.Message,
			CreatedAt: time.Unix(e.CreatedAt, 0),
		})
	}
	// the API lists newest first
	slices.Reverse(events)
	return events, nil
}

// CreateCompletion runs a legacy completion, the only endpoint serving babbage fine-tunes
func (c *OpenAIClient) CreateCompletion(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.Completions.New(ctx, openai.CompletionNewParams{
		Model:            openai.CompletionNewParamsModel(req.Model),
		Prompt:           openai.CompletionNewParamsPromptUnion{OfString: openai.String(req.Prompt)},
		MaxTokens:        openai.Int(int64(req.MaxTokens)),
		PresencePenalty:  openai.Float(req.PresencePenalty),
		FrequencyPenalty: openai.Float(req.FrequencyPenalty),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Text, nil
}

func toFineTuneJob(job *openai.FineTuningJob) FineTuneJob {
	return FineTuneJob{
		ID:             job.ID,
		Status:         string(job.Status),
		BaseModel:      job.Model,
		FineTunedModel: job.FineTunedModel,
		TrainingFile:   job.TrainingFile,
		CreatedAt:      time.Unix(job.CreatedAt, 0),
	}
}

// AI handles OpenAI API interactions for transcription, fine-tuning and sampling
type AI struct {
	client            OpenAIClientInterface
	whisperLimit      int64
	whisperTimeout    time.Duration
	completionTimeout time.Duration
	apiKey            string
	clientOnce        sync.Once
}

// NewAI creates a new AI processor
func NewAI(client OpenAIClientInterface, whisperLimit int64, whisperTimeout, completionTimeout time.Duration) *AI {
	return &AI{
		client:            client,
		whisperLimit:      whisperLimit,
		whisperTimeout:    whisperTimeout,
		completionTimeout: completionTimeout,
	}
}

// NewAIWithKey creates a new AI processor with lazy client initialization
func NewAIWithKey(apiKey string, whisperLimit int64, whisperTimeout, completionTimeout time.Duration) *AI {
	return &AI{
		whisperLimit:      whisperLimit,
		whisperTimeout:    whisperTimeout,
		completionTimeout: completionTimeout,
		apiKey:            apiKey,
	}
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	if ai.client != nil {
		return nil
	}

	if ai.apiKey == "" {
		return ValidateOpenAIAPIKey("")
	}

	ai.clientOnce.Do(func() {
		ai.client = NewOpenAIClient(ai.apiKey)
	})

	return nil
}

// Transcribe sends one audio file to Whisper
func (ai *AI) Transcribe(ctx context.Context, audioFile string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}

	info, err := os.Stat(audioFile)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, audioFile)
	}
	if ai.whisperLimit > 0 && info.Size() > ai.whisperLimit {
		return "", fmt.Errorf("%w: %s is %d bytes, above the Whisper limit of %d", ErrInvalidArgument, audioFile, info.Size(), ai.whisperLimit)
	}

	file, err := os.Open(audioFile)
	if err != nil {
		return "", fmt.Errorf("opening audio: %w", err)
	}
	defer file.Close()

	if ai.whisperTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.whisperTimeout)
		defer cancel()
	}

	text, err := ai.client.CreateTranscription(ctx, file)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", audioFile, err)
	}
	return text, nil
}

// UploadDataset uploads a JSONL file for fine-tuning
func (ai *AI) UploadDataset(ctx context.Context, path string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening dataset: %w", err)
	}
	defer file.Close()

	id, err := ai.client.UploadFineTuneFile(ctx, file)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", path, err)
	}
	return id, nil
}

// StartFineTune creates a fine-tuning job
func (ai *AI) StartFineTune(ctx context.Context, baseModel, fileID string) (FineTuneJob, error) {
	if err := ai.ensureClient(); err != nil {
		return FineTuneJob{}, err
	}
	job, err := ai.client.CreateFineTuneJob(ctx, baseModel, fileID)
	if err != nil {
		return FineTuneJob{}, fmt.Errorf("creating fine-tune job: %w", err)
	}
	return job, nil
}

// FineTuneJobs lists fine-tuning jobs
func (ai *AI) FineTuneJobs(ctx context.Context) ([]FineTuneJob, error) {
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}
	jobs, err := ai.client.ListFineTuneJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fine-tune jobs: %w", err)
	}
	return jobs, nil
}

// FineTuneStatus returns a job and its events
func (ai *AI) FineTuneStatus(ctx context.Context, jobID string) (FineTuneJob, []FineTuneEvent, error) {
	if err := ai.ensureClient(); err != nil {
		return FineTuneJob{}, nil, err
	}
	job, err := ai.client.GetFineTuneJob(ctx, jobID)
	if err != nil {
		return FineTuneJob{}, nil, fmt.Errorf("fetching fine-tune job %s: %w", jobID, err)
	}
	events, err := ai.client.ListFineTuneEvents(ctx, jobID)
	if err != nil {
		return job, nil, fmt.Errorf("listing events of %s: %w", jobID, err)
	}
	return job, events, nil
}

// Complete samples one completion
func (ai *AI) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}

	if ai.completionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.completionTimeout)
		defer cancel()
	}

	text, err := ai.client.CreateCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("creating completion: %w", err)
	}
	return text, nil
}
