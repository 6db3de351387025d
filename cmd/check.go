package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

var allStages = []string{
	string(internal.StageAudioCreation),
	string(internal.StageTranscriptCreation),
	string(internal.StageTranscriptQuality),
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every expected audio and transcript artifact exists",
	Long: `Walk every episode under the audio root and count, per stage, how many
expected artifacts are present.

Stages:
  audio_creation       full.mp3, the preview and every hour and five minute chunk
  transcript_creation  the preview transcript and every five minute transcript
  transcript_quality   existing five minute transcripts that are not repetitive

Missing artifacts are logged; the check itself only fails when the audio root
cannot be read.`,
	Example: `  # Run every stage
  lngai check

  # Only transcript quality, with a stricter threshold
  lngai check --stage transcript_quality --threshold 0.05`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, _ := cmd.Flags().GetStringSlice("stage")
		stages := make([]internal.Stage, 0, len(names))
		for _, name := range names {
			stage, err := internal.ParseStage(name)
			if err != nil {
				return err
			}
			stages = append(stages, stage)
		}

		threshold, err := internal.HandleThresholdFlag(cmd, config)
		if err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		reports, err := app.Check(cmd.Context(), stages, threshold)
		if err != nil {
			return err
		}

		fmt.Println(internal.IntegrityTable(reports))
		return nil
	},
}

func init() {
	checkCmd.Flags().StringSlice("stage", allStages, "Stages to check")
	internal.AddThresholdFlag(checkCmd)
	rootCmd.AddCommand(checkCmd)
}
