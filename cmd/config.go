package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the settings after the config file and LNGAI_* environment variables
have been applied, in config file syntax. The OpenAI API key is never printed.`,
	Example: `  # Show the effective configuration
  lngai config

  # Only the file it was read from
  lngai config --path`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if onlyPath, _ := cmd.Flags().GetBool("path"); onlyPath {
			fmt.Println(config.ConfigFile)
			return nil
		}
		data, err := config.TOML()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.Flags().Bool("path", false, "Print the config file path only")
	rootCmd.AddCommand(configCmd)
}
