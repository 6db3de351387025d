package internal_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// fakeOpenAI is an in-memory OpenAIClientInterface
type fakeOpenAI struct {
	transcript  string
	uploaded    string
	jobs        []internal.FineTuneJob
	events      []internal.FineTuneEvent
	completions []string
	requests    []internal.CompletionRequest
	err         error
}

func (f *fakeOpenAI) CreateTranscription(_ context.Context, file *os.File) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

func (f *fakeOpenAI) UploadFineTuneFile(_ context.Context, file *os.File) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.uploaded = string(data)
	return "file-123", f.err
}

func (f *fakeOpenAI) CreateFineTuneJob(_ context.Context, baseModel, trainingFileID string) (internal.FineTuneJob, error) {
	job := internal.FineTuneJob{ID: "ftjob-1", Status: "queued", BaseModel: baseModel, TrainingFile: trainingFileID}
	f.jobs = append(f.jobs, job)
	return job, f.err
}

func (f *fakeOpenAI) ListFineTuneJobs(context.Context) ([]internal.FineTuneJob, error) {
	return f.jobs, f.err
}

func (f *fakeOpenAI) GetFineTuneJob(_ context.Context, jobID string) (internal.FineTuneJob, error) {
	for _, j := range f.jobs {
		if j.ID == jobID {
			return j, nil
		}
	}
	return internal.FineTuneJob{}, errors.New("no such job")
}

func (f *fakeOpenAI) ListFineTuneEvents(context.Context, string) ([]internal.FineTuneEvent, error) {
	return f.events, f.err
}

func (f *fakeOpenAI) CreateCompletion(_ context.Context, req internal.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if len(f.completions) == 0 {
		return "", errors.New("no completions left")
	}
	next := f.completions[0]
	f.completions = f.completions[1:]
	return next, nil
}

func TestAITranscribe(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.mp3")
	large := filepath.Join(dir, "large.mp3")
	writeFile(t, small, "1234")
	writeFile(t, large, strings.Repeat("x", 64))

	ai := internal.NewAI(&fakeOpenAI{transcript: "你好"}, 32, time.Minute, time.Minute)

	got, err := ai.Transcribe(context.Background(), small)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if got != "你好" {
		t.Fatalf("Transcribe = %q", got)
	}

	if _, err := ai.Transcribe(context.Background(), large); !errors.Is(err, internal.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument above the size limit, got %v", err)
	}
	if _, err := ai.Transcribe(context.Background(), filepath.Join(dir, "missing.mp3")); !errors.Is(err, internal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing file, got %v", err)
	}
}

func TestAIWithoutKey(t *testing.T) {
	ai := internal.NewAIWithKey("", internal.WhisperLimit, time.Minute, time.Minute)
	if _, err := ai.FineTuneJobs(context.Background()); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected a missing API key error, got %v", err)
	}
}

func TestAIFineTuneStatus(t *testing.T) {
	created := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeOpenAI{
		jobs: []internal.FineTuneJob{{ID: "ftjob-9", Status: "succeeded", FineTunedModel: "babbage-002:ft-x"}},
		events: []internal.FineTuneEvent{
			{ID: "e1", Level: "info", Message: "Job started", CreatedAt: created},
		},
	}
	ai := internal.NewAI(client, internal.WhisperLimit, 0, 0)

	job, events, err := ai.FineTuneStatus(context.Background(), "ftjob-9")
	if err != nil {
		t.Fatalf("FineTuneStatus returned error: %v", err)
	}
	if job.FineTunedModel != "babbage-002:ft-x" || len(events) != 1 {
		t.Fatalf("unexpected status %+v %+v", job, events)
	}

	if _, _, err := ai.FineTuneStatus(context.Background(), "ftjob-0"); err == nil {
		t.Fatalf("expected an error for an unknown job")
	}
}
