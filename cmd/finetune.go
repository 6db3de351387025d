package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// finetuneCmd groups the OpenAI fine-tuning commands
var finetuneCmd = &cobra.Command{
	Use:   "finetune",
	Short: "Start, inspect and try OpenAI fine-tuning jobs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return internal.ValidateOpenAIRequirements(config)
	},
}

var finetuneStartCmd = &cobra.Command{
	Use:   "start [dataset.jsonl]",
	Short: "Upload a dataset and create a fine-tuning job (costs money)",
	Example: `  # Fine-tune the configured base model on the 10% dataset
  lngai finetune start ~/.local/share/lngai/jsonl_dataset/jsonl_dataset_10_percent_420.jsonl

  # Another base model
  lngai finetune start dataset.jsonl --model davinci-002`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		if model == "" {
			model = config.FineTuneBaseModel
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		job, err := app.FineTuner().Start(cmd.Context(), args[0], model)
		if errors.Is(err, internal.ErrDeclined) {
			fmt.Println("Fine-tuning cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Created job %s (%s)\n", job.ID, job.Status)
		fmt.Printf("Follow it with: lngai finetune events %s\n", job.ID)
		return nil
	},
}

var finetuneModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List fine-tuning jobs and their models",
	Example: `  # Show every fine-tuned model
  lngai finetune models`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		jobs, err := app.FineTuner().Models(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(internal.FineTuneJobsTable(jobs))
		return nil
	},
}

var finetuneEventsCmd = &cobra.Command{
	Use:   "events [job ID]",
	Short: "Show a fine-tuning job's status and events",
	Example: `  # Follow a job
  lngai finetune events ftjob-abc123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		job, events, err := app.FineTuner().Events(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Job %s: %s\n", job.ID, job.Status)
		if job.FineTunedModel != "" {
			fmt.Printf("Model: %s\n", job.FineTunedModel)
		}
		for _, e := range events {
			fmt.Printf("%s [%s] %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Level, e.Message)
		}
		return nil
	},
}

var finetuneTestCmd = &cobra.Command{
	Use:   "test [model]",
	Short: "Generate a chat history from a fine-tuned model (costs money)",
	Long: `Generate sentences one at a time. Each prompt is the previous sentences,
starting with the seed sentences, joined with "/!". The seeds and generated
sentences are written to generated_root.`,
	Example: `  # 20 sentences from the default seeds
  lngai finetune test babbage-002:ft-personal-2023 -n 20

  # Inline seeds
  lngai finetune test babbage-002:ft-personal-2023 --seeds "早安早安/!開了!/!欸我跟你們說"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("sentences")

		app, err := newApp()
		if err != nil {
			return err
		}
		if err := internal.HandleSeedFlag(cmd, app); err != nil {
			return err
		}
		seeds, err := app.Seeds()
		if err != nil {
			return err
		}

		path, err := app.FineTuner().Test(cmd.Context(), args[0], n, seeds, config.GeneratedRoot)
		if errors.Is(err, internal.ErrDeclined) {
			fmt.Println("Test cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	finetuneStartCmd.Flags().StringP("model", "m", "", "Base model (default from config)")
	finetuneTestCmd.Flags().IntP("sentences", "n", 10, "Number of sentences to generate")
	internal.AddSeedFlags(finetuneTestCmd)

	finetuneCmd.AddCommand(finetuneStartCmd, finetuneModelsCmd, finetuneEventsCmd, finetuneTestCmd)
	rootCmd.AddCommand(finetuneCmd)
}
