package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

var (
	config *internal.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lngai",
	Short: "Build a fine-tuning dataset from a YouTube channel's audio",
	Long: `lngai turns a YouTube channel's uploads into a language model fine-tuning dataset.

The pipeline downloads each upload's audio, cuts it into one minute, five minute
and one hour chunks, transcribes the five minute chunks with Whisper, drops
repetitive transcripts and writes prompt/completion pairs as JSONL files that
can be uploaded to OpenAI for fine-tuning.`,
	Example: `  # Download and cut the newest 10 uploads of the configured channel
  lngai fetch

  # Transcribe every chunk that has no transcript yet (costs money)
  lngai transcribe

  # Check every stage and build the datasets
  lngai check
  lngai dataset

  # Fine-tune and try the result
  lngai finetune start ~/.local/share/lngai/jsonl_dataset/jsonl_dataset_100_percent_4200.jsonl
  lngai finetune test babbage-002:ft-personal-2023 -n 20`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			config = internal.LoadConfig(xdg.ConfigHome, xdg.DataHome, xdg.CacheHome, path)
		}
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		config.Quiet = quiet
		if err := config.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		l, err := internal.NewCLILogger(config)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// newApp builds the application for the current command
func newApp(options ...internal.AppOption) (*internal.App, error) {
	app, err := internal.NewApp(config, logger, options...)
	if err != nil {
		return nil, err
	}
	logger.Debug("starting", zap.String("run_id", app.RunID()), zap.String("version", version))
	return app, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config = internal.InitConfig()

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	if err := internal.EnsureDefaultSeeds(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default seed prompts: %v\n", err)
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cleaning up and shutting down...")

		cancel()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		// raw downloads are left partial on interrupt
		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.RawRoot); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		select {
		case <-cleanupDone:
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		_ = logger.Sync()
		os.Exit(130)
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress bars and status messages")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/lngai/config.toml)")
}
