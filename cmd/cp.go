package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// cpCmd copies an episode's transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [episode dir, video ID or URL]",
	Short: "Copy an episode's stitched transcript to the clipboard",
	Example: `  # Copy the transcript of a fetched and transcribed episode
  lngai cp ~/.local/share/lngai/audio_files/tAP1eZYEuKA
  lngai cp tAP1eZYEuKA`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		dir, err := app.ResolveEpisodeDir(args[0])
		if err != nil {
			return err
		}
		transcript, err := app.EpisodeTranscript(cmd.Context(), dir)
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(transcript); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Println("Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cpCmd)
}
