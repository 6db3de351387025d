package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  lngai paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Config file: %s\n", config.ConfigFile)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Audio root: %s\n", config.AudioRoot)
		fmt.Printf("Raw downloads: %s\n", config.RawRoot)
		fmt.Printf("Datasets: %s\n", config.DatasetRoot)
		fmt.Printf("Generated files: %s\n", config.GeneratedRoot)
		fmt.Printf("Catalog: %s\n", config.CatalogPath())
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
