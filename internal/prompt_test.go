package internal_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

func TestSeedManager(t *testing.T) {
	configDir := t.TempDir()
	seedFile := filepath.Join(t.TempDir(), "seeds.txt")
	writeFile(t, seedFile, "第一句\n\n第二句\n")
	writeFile(t, filepath.Join(configDir, "seed_prompts.txt"), "config one\nconfig two\n")

	tests := []struct {
		name    string
		setting string
		want    []string
	}{
		{"inline", "早安早安/!開了!/!欸我跟你們說", []string{"早安早安", "開了!", "欸我跟你們說"}},
		{"file", seedFile, []string{"第一句", "第二句"}},
		{"config default", "", []string{"config one", "config two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := internal.NewSeedManager(configDir, tt.setting).Seeds()
			if err != nil {
				t.Fatalf("Seeds returned error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Seeds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeedManagerFallsBackToEmbeddedSeeds(t *testing.T) {
	got, err := internal.NewSeedManager(t.TempDir(), "").Seeds()
	if err != nil {
		t.Fatalf("Seeds returned error: %v", err)
	}
	want := []string{"早安早安", "開了!", "欸我跟你們說"}
	if !slices.Equal(got, want) {
		t.Fatalf("Seeds = %v, want %v", got, want)
	}
}

func TestSeedManagerRejectsEmptySeeds(t *testing.T) {
	if _, err := internal.NewSeedManager(t.TempDir(), " /! ").Seeds(); !errors.Is(err, internal.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestIsLikelyFilePath(t *testing.T) {
	tests := map[string]bool{
		"seeds.txt":          true,
		"notes.md":           true,
		"./seeds":            true,
		`C:\seeds`:           true,
		"早安/!開了":             false,
		"line one\nline two": false,
		"just a sentence":    false,
	}
	for in, want := range tests {
		if got := internal.IsLikelyFilePath(in); got != want {
			t.Fatalf("IsLikelyFilePath(%q) = %v, want %v", in, got, want)
		}
	}
}
