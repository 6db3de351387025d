package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [video IDs or URLs...]",
	Short: "Download uploads and cut them into preview, hour and five minute chunks",
	Long: `Download the newest uploads of a YouTube channel (or the given videos),
convert them to mp3 and export each into {audio_root}/{video_id}/:

  full.mp3, one_minute_preview.mp3,
  {i}_hour_chuck.mp3 and {i}_5_mins_chuck.mp3 for every chunk

Episodes that already have a full.mp3 are not downloaded again and existing
chunks are kept. The fetched videos are recorded in the catalog and listed in
audio_infos.md and audio_infos.csv under the audio root.`,
	Example: `  # Newest 10 uploads of the configured channel
  lngai fetch

  # Another channel, newest 3 uploads
  lngai fetch --channel UCKngQgSGHd3Hp3nkPs15YSA --limit 3

  # Specific videos
  lngai fetch tAP1eZYEuKA "https://youtu.be/dQw4w9WgXcQ"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetString("channel")
		if channel == "" {
			channel = config.ChannelID
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit == 0 {
			limit = config.FetchLimit
		}
		if limit < 0 {
			return fmt.Errorf("%w: --limit must be positive", internal.ErrInvalidArgument)
		}

		ids := make([]string, 0, len(args))
		for _, arg := range args {
			_, id, err := internal.ParseArg(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		if err := internal.EnsureYtdlp(cmd.Context()); err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		videos, err := app.Fetch(cmd.Context(), channel, limit, ids)
		if err != nil {
			return err
		}

		failed := 0
		for _, v := range videos {
			if v.AudioDir == "" {
				failed++
			}
		}

		if !config.Quiet {
			rendered, err := internal.RenderMarkdown(internal.VideoMarkdownTable(videos))
			if err != nil {
				return err
			}
			fmt.Print(rendered)
			fmt.Printf("Exported %d of %d videos into %s\n", len(videos)-failed, len(videos), config.AudioRoot)
		}
		if failed > 0 {
			return fmt.Errorf("%d videos failed to download or export", failed)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringP("channel", "c", "", "YouTube channel ID (default from config)")
	fetchCmd.Flags().IntP("limit", "n", 0, "Number of newest uploads to fetch (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
