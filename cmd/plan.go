package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan [episode dir, video ID or URL]",
	Short: "Show every artifact an episode should have and whether it exists",
	Example: `  # Inspect one episode
  lngai plan tAP1eZYEuKA
  lngai plan ~/.local/share/lngai/audio_files/tAP1eZYEuKA`,
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
		rows, err := app.PlanEpisode(cmd.Context(), dir)
		if err != nil {
			return err
		}

		fmt.Println(internal.PlanTable(rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
