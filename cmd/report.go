package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List every fetched video from the catalog",
	Long: `Render every video recorded by fetch, newest first, and rewrite
audio_infos.md and audio_infos.csv in the output directory.`,
	Example: `  # Show the catalog and refresh the reports under the audio root
  lngai report

  # Write the reports somewhere else
  lngai report --output ./reports`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("output")
		if outDir == "" {
			outDir = config.AudioRoot
		}
		if err := internal.EnsureDirs(outDir); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		markdown, err := app.CatalogReport(cmd.Context(), outDir)
		if err != nil {
			return err
		}

		if config.Quiet {
			return nil
		}
		rendered, err := internal.RenderMarkdown(markdown)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("output", "o", "", "Directory for audio_infos.md and audio_infos.csv (default: audio root)")
	rootCmd.AddCommand(reportCmd)
}
