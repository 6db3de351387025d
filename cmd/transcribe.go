package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe every episode's chunks with Whisper (costs money)",
	Long: `Transcribe the one minute preview and every five minute chunk of each episode
under the audio root with OpenAI Whisper.

Chunks that already have a transcript are skipped, so an interrupted run can be
resumed. Failed chunks are logged and counted; the run continues.`,
	Example: `  # Transcribe everything that is missing
  lngai transcribe

  # Only the one minute previews, to sample quality cheaply
  lngai transcribe --preview-only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(config); err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		previewOnly, _ := cmd.Flags().GetBool("preview-only")
		stats, err := app.Transcribe(cmd.Context(), previewOnly)
		if err != nil {
			return err
		}

		if !config.Quiet {
			fmt.Printf("Transcribed %d, skipped %d, failed %d\n", stats.Transcribed, stats.Skipped, stats.Failed)
		}
		if stats.Failed > 0 {
			return fmt.Errorf("%d chunks failed to transcribe; rerun to retry", stats.Failed)
		}
		return nil
	},
}

func init() {
	transcribeCmd.Flags().Bool("preview-only", false, "Only transcribe the one minute previews")
	rootCmd.AddCommand(transcribeCmd)
}
