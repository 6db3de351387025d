package internal

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Fetcher downloads a channel's latest uploads and exports them into episode directories
type Fetcher struct {
	source    VideoSource
	exporter  *Exporter
	catalog   *Catalog
	logger    *zap.Logger
	ui        UIManager
	audioRoot string
	now       func() time.Time
}

// NewFetcher creates the fetch stage; catalog may be nil
func NewFetcher(source VideoSource, exporter *Exporter, catalog *Catalog, logger *zap.Logger, ui UIManager, audioRoot string) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:    source,
		exporter:  exporter,
		catalog:   catalog,
		logger:    logger.With(zap.String("component", "fetch")),
		ui:        ui,
		audioRoot: audioRoot,
		now:       time.Now,
	}
}

// Run fetches the newest limit uploads of channelID. Videos that fail to download or
// export are reported with an empty AudioDir and the run continues.
func (f *Fetcher) Run(ctx context.Context, channelID string, limit int) ([]VideoInfo, error) {
	videos, err := f.source.ChannelUploads(ctx, channelID, limit)
	if err != nil {
		return nil, err
	}
	f.ui.Printf("Found %d videos on channel %s\n", len(videos), channelID)
	return f.process(ctx, videos)
}

// RunVideos fetches the given video IDs instead of listing a channel
func (f *Fetcher) RunVideos(ctx context.Context, videoIDs []string) ([]VideoInfo, error) {
	videos := make([]VideoInfo, 0, len(videoIDs))
	for _, id := range videoIDs {
		video, err := f.source.Video(ctx, id)
		if err != nil {
			f.logger.Warn("metadata unavailable", zap.String("video_id", id), zap.Error(err))
			video = VideoInfo{ID: id, SourceURL: VideoURL(id)}
		}
		videos = append(videos, video)
	}
	return f.process(ctx, videos)
}

func (f *Fetcher) process(ctx context.Context, videos []VideoInfo) ([]VideoInfo, error) {
	bar := f.ui.NewProgressBar(len(videos), "Fetching audio")
	for i := range videos {
		if err := ctx.Err(); err != nil {
			bar.Finish()
			return videos, err
		}
		bar.Set(i)
		bar.Describe(videos[i].Title)

		videos[i].AudioDir = f.fetchOne(ctx, videos[i])

		if f.catalog != nil {
			if err := f.catalog.Upsert(ctx, videos[i], f.now()); err != nil {
				f.logger.Error("catalog update failed", zap.String("video_id", videos[i].ID), zap.Error(err))
			}
		}
	}
	bar.Set(len(videos))
	bar.Finish()

	return videos, nil
}

// fetchOne returns the episode directory, or "" when the video could not be exported
func (f *Fetcher) fetchOne(ctx context.Context, video VideoInfo) string {
	episodeDir := filepath.Join(f.audioRoot, video.ID)
	logger := f.logger.With(zap.String("video_id", video.ID))

	var raw string
	if !FileExists(FullAudioPath(episodeDir)) {
		var err error
		raw, err = f.source.DownloadAudio(ctx, video)
		if err != nil {
			logger.Error("download failed", zap.Error(err))
			return ""
		}
	}

	written, err := f.exporter.Export(ctx, raw, episodeDir)
	if err != nil {
		logger.Error("export failed", zap.String("episode", episodeDir), zap.Error(err))
		return ""
	}
	logger.Debug("export finished", zap.Int("written", written))

	if raw != "" {
		if err := os.Remove(raw); err != nil {
			logger.Warn("failed to remove raw audio", zap.String("path", raw), zap.Error(err))
		}
	}
	return episodeDir
}
