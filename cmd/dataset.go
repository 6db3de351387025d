package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// datasetCmd represents the dataset command
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Build JSONL fine-tuning datasets from the transcripts",
	Long: `Read every episode's five minute transcripts, skip the repetitive ones and
slide a window over the remaining tokens: each prompt is the previous
prompt_window tokens joined with "/!", the completion is the next token.

One shuffled file is written per portion as
jsonl_dataset_{percent}_percent_{count}.jsonl under the dataset root.`,
	Example: `  # Default portions (0.5% up to 100%)
  lngai dataset

  # Only the full dataset and a 10% sample
  lngai dataset --portions 0.1,1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, err := internal.HandleThresholdFlag(cmd, config)
		if err != nil {
			return err
		}
		portions, _ := cmd.Flags().GetFloat64Slice("portions")

		app, err := newApp()
		if err != nil {
			return err
		}

		paths, err := app.BuildDataset(cmd.Context(), threshold, portions)
		if err != nil {
			return err
		}

		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	internal.AddThresholdFlag(datasetCmd)
	datasetCmd.Flags().Float64Slice("portions", internal.DefaultPortions, "Dataset portions in (0, 1]")
	rootCmd.AddCommand(datasetCmd)
}
