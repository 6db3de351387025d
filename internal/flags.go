package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddThresholdFlag adds the repetition threshold flag
func AddThresholdFlag(cmd *cobra.Command) {
	cmd.Flags().Float64P("threshold", "t", 0, "Repetition threshold in [0, 1] (default from config)")
}

// AddSeedFlags adds flags related to generation seeds
func AddSeedFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("seeds", "s", "", `Seed sentences (file path or sentences separated by "/!")`)
}

// HandleThresholdFlag returns the --threshold value, or the configured one when unset
func HandleThresholdFlag(cmd *cobra.Command, config *Config) (float64, error) {
	flag := cmd.Flags().Lookup("threshold")
	if flag == nil || !flag.Changed {
		return config.RepetitionThreshold, nil
	}
	threshold, err := cmd.Flags().GetFloat64("threshold")
	if err != nil {
		return 0, fmt.Errorf("failed to get threshold flag: %w", err)
	}
	if threshold < 0 || threshold > 1 {
		return 0, fmt.Errorf("%w: threshold %v outside [0, 1]", ErrInvalidArgument, threshold)
	}
	return threshold, nil
}

// HandleSeedFlag processes the --seeds flag to set custom seeds
func HandleSeedFlag(cmd *cobra.Command, app *App) error {
	seedFlag := cmd.Flags().Lookup("seeds")
	if seedFlag == nil || !seedFlag.Changed {
		return nil
	}

	seeds, err := cmd.Flags().GetString("seeds")
	if err != nil {
		return fmt.Errorf("failed to get seeds flag: %w", err)
	}
	if seeds == "" {
		return nil
	}

	app.SetSeedManager(NewSeedManager(app.config.ConfigDir, seeds))

	if IsLikelyFilePath(seeds) && FileExists(seeds) {
		app.ui.Verbose("Using seed file: %s\n", seeds)
	} else {
		app.ui.Verbose("Using inline seeds\n")
	}
	return nil
}

// HandleVerboseFlag processes the --verbose flag to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	config.Verbose = config.Verbose || verbose
	return nil
}

// ValidateOpenAIRequirements checks what every OpenAI backed command needs
func ValidateOpenAIRequirements(config *Config) error {
	return ValidateOpenAIAPIKey(config.OpenAIAPIKey)
}
