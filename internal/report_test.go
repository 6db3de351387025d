package internal_test

import (
	"strings"
	"testing"
	"time"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

func TestWriteVideoReports(t *testing.T) {
	dir := t.TempDir()
	videos := []internal.VideoInfo{
		{ID: "tAP1eZYEuKA", Title: "早安直播", PublishedAt: "2023-04-30", SourceURL: internal.VideoURL("tAP1eZYEuKA"), AudioDir: "/audio/tAP1eZYEuKA"},
		{ID: "dQw4w9WgXcQ", Title: "failed", SourceURL: internal.VideoURL("dQw4w9WgXcQ")},
	}

	mdPath, csvPath, err := internal.WriteVideoReports(dir, videos)
	if err != nil {
		t.Fatalf("WriteVideoReports returned error: %v", err)
	}

	md := readFile(t, mdPath)
	for _, want := range []string{"| Title |", "Audio Dir", "Published at", "早安直播", "https://www.youtube.com/watch?v=tAP1eZYEuKA"} {
		if !strings.Contains(strings.ToLower(md), strings.ToLower(want)) {
			t.Fatalf("markdown report missing %q:\n%s", want, md)
		}
	}

	lines := strings.Split(strings.TrimSpace(readFile(t, csvPath)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2 rows:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if !strings.EqualFold(lines[0], "Title,Audio Dir,Published at,ID,Source URL") {
		t.Fatalf("csv header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "failed,,") {
		t.Fatalf("failed export should have an empty audio dir, got %q", lines[2])
	}
}

func TestIntegrityTable(t *testing.T) {
	out := internal.IntegrityTable([]internal.Report{
		{Stage: internal.StageAudioCreation, Success: 5, Failure: 1, Total: 6},
		{Stage: internal.StageTranscriptQuality},
	})
	for _, want := range []string{"audio_creation", "83.33%", "transcript_quality", "n/a"} {
		if !strings.Contains(out, want) {
			t.Fatalf("integrity table missing %q:\n%s", want, out)
		}
	}
}

func TestPlanAndJobsTables(t *testing.T) {
	plan := internal.PlanTable([]internal.PlanRow{
		{Kind: "full", Path: "/a/full.mp3", Exists: true},
		{Kind: "5m audio", Path: "/a/1_5_mins_chuck.mp3"},
	})
	if !strings.Contains(plan, "/a/full.mp3") || !strings.Contains(plan, "yes") || !strings.Contains(plan, "no") {
		t.Fatalf("unexpected plan table:\n%s", plan)
	}

	jobs := internal.FineTuneJobsTable([]internal.FineTuneJob{
		{ID: "ftjob-1", Status: "running", CreatedAt: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "ftjob-2", Status: "succeeded", FineTunedModel: "babbage-002:ft-x"},
	})
	for _, want := range []string{"ftjob-1", "running", "babbage-002:ft-x", "2023-05-01 12:00"} {
		if !strings.Contains(jobs, want) {
			t.Fatalf("jobs table missing %q:\n%s", want, jobs)
		}
	}
}
