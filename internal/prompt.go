package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const seedPromptsFile = "seed_prompts.txt"

// SeedManager resolves the seed sentences that start a generated conversation
type SeedManager struct {
	seedFile   string
	seedString string
	configDir  string
}

// NewSeedManager creates a seed manager from the seeds setting (file path, inline sentences or empty)
func NewSeedManager(configDir, seedSetting string) *SeedManager {
	sm := &SeedManager{
		configDir: configDir,
	}

	if seedSetting != "" {
		if IsLikelyFilePath(seedSetting) && FileExists(seedSetting) {
			sm.seedFile = seedSetting
		} else {
			sm.seedString = seedSetting
		}
	}

	return sm
}

// Seeds returns the seed sentences in order
func (sm *SeedManager) Seeds() ([]string, error) {
	if sm.seedString != "" {
		return splitSeeds(sm.seedString, PromptSeparator)
	}

	seedFile := sm.seedFile
	if seedFile == "" {
		seedFile = filepath.Join(sm.configDir, seedPromptsFile)
	}

	content, err := os.ReadFile(seedFile)
	if err != nil {
		if os.IsNotExist(err) && sm.seedFile == "" {
			content, err = defaultFS.ReadFile(seedPromptsFile)
		}
		if err != nil {
			return nil, fmt.Errorf("reading seed prompts: %w", err)
		}
	}
	return splitSeeds(string(content), "\n")
}

func splitSeeds(s, sep string) ([]string, error) {
	var seeds []string
	for part := range strings.SplitSeq(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			seeds = append(seeds, part)
		}
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: no seed sentences", ErrInvalidArgument)
	}
	return seeds, nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, PromptSeparator) || strings.Contains(s, "\n") {
		return false
	}
	if strings.ContainsAny(s, `/\`) {
		return true
	}
	return strings.HasSuffix(s, ".txt") || strings.HasSuffix(s, ".md")
}
