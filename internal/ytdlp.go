package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

// VideoSource lists channel uploads and downloads their audio
type VideoSource interface {
	ChannelUploads(ctx context.Context, channelID string, limit int) ([]VideoInfo, error)
	Video(ctx context.Context, videoID string) (VideoInfo, error)
	DownloadAudio(ctx context.Context, video VideoInfo) (string, error)
}

// YouTube handles channel listing and audio downloads through yt-dlp
type YouTube struct {
	rawDir string
	logger *zap.Logger
}

// NewYouTube creates a downloader that stores raw audio in rawDir
func NewYouTube(rawDir string, logger *zap.Logger) *YouTube {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTube{
		rawDir: rawDir,
		logger: logger.With(zap.String("component", "youtube")),
	}
}

// playlistDump is the part of yt-dlp's flat playlist JSON we read
type playlistDump struct {
	Title   string          `json:"title"`
	Entries []playlistEntry `json:"entries"`
}

type playlistEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	UploadDate string `json:"upload_date"`
	Timestamp  int64  `json:"timestamp"`
}

// videoDump is the part of yt-dlp's single video JSON we read
type videoDump struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	UploadDate string `json:"upload_date"`
	Timestamp  int64  `json:"timestamp"`
}

// ChannelURL returns the uploads page of a channel ID
func ChannelURL(channelID string) string {
	return "https://www.youtube.com/channel/" + channelID + "/videos"
}

// VideoURL returns the watch page of a video ID
func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ChannelUploads lists the newest limit uploads of a channel
func (yt *YouTube) ChannelUploads(ctx context.Context, channelID string, limit int) ([]VideoInfo, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel ID is required", ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: fetch limit must be positive, got %d", ErrInvalidArgument, limit)
	}

	dl := ytdlp.New().
		FlatPlaylist().
		DumpSingleJSON().
		PlaylistItems(fmt.Sprintf("1:%d", limit))

	result, err := dl.Run(ctx, ChannelURL(channelID))
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = result.Stderr
		}
		return nil, fmt.Errorf("listing channel %s: %w\nOutput: %s", channelID, err, stderr)
	}

	videos, err := parseChannelDump([]byte(result.Stdout), limit)
	if err != nil {
		return nil, fmt.Errorf("parsing channel listing: %w", err)
	}

	// flat listings usually omit the upload date
	for i := range videos {
		if videos[i].PublishedAt != "" {
			continue
		}
		meta, err := yt.Video(ctx, videos[i].ID)
		if err != nil {
			yt.logger.Warn("upload date unavailable", zap.String("video_id", videos[i].ID), zap.Error(err))
			continue
		}
		videos[i].PublishedAt = meta.PublishedAt
	}
	return videos, nil
}

func parseChannelDump(data []byte, limit int) ([]VideoInfo, error) {
	var dump playlistDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, err
	}

	videos := make([]VideoInfo, 0, min(len(dump.Entries), limit))
	for _, e := range dump.Entries {
		if e.ID == "" {
			continue
		}
		videos = append(videos, VideoInfo{
			ID:          e.ID,
			Title:       strings.TrimSpace(e.Title),
			PublishedAt: formatUploadDate(e.UploadDate, e.Timestamp),
			SourceURL:   VideoURL(e.ID),
		})
		if len(videos) == limit {
			break
		}
	}
	return videos, nil
}

// Video fetches a single video's title and upload date
func (yt *YouTube) Video(ctx context.Context, videoID string) (VideoInfo, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, VideoURL(videoID))
	if err != nil {
		return VideoInfo{}, fmt.Errorf("extracting video metadata: %w", err)
	}
	var meta videoDump
	if err := json.Unmarshal([]byte(result.Stdout), &meta); err != nil {
		return VideoInfo{}, fmt.Errorf("parsing video metadata: %w", err)
	}
	if meta.ID == "" {
		meta.ID = videoID
	}
	return VideoInfo{
		ID:          meta.ID,
		Title:       strings.TrimSpace(meta.Title),
		PublishedAt: formatUploadDate(meta.UploadDate, meta.Timestamp),
		SourceURL:   VideoURL(meta.ID),
	}, nil
}

// formatUploadDate turns yt-dlp's YYYYMMDD (or a unix timestamp) into YYYY-MM-DD
func formatUploadDate(uploadDate string, timestamp int64) string {
	if t, err := time.Parse("20060102", uploadDate); err == nil {
		return t.Format(time.DateOnly)
	}
	if timestamp > 0 {
		return time.Unix(timestamp, 0).UTC().Format(time.DateOnly)
	}
	return ""
}

// DownloadAudio fetches the best audio stream as mp3 into the raw directory
func (yt *YouTube) DownloadAudio(ctx context.Context, video VideoInfo) (string, error) {
	if err := EnsureDirs(yt.rawDir); err != nil {
		return "", fmt.Errorf("creating raw directory: %w", err)
	}

	dl := ytdlp.New().
		Format("bestaudio").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("5").
		NoPlaylist().
		Output(filepath.Join(yt.rawDir, "%(id)s.%(ext)s"))

	yt.logger.Info("downloading audio", zap.String("video_id", video.ID), zap.String("url", video.SourceURL))
	result, err := dl.Run(ctx, video.SourceURL)
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = result.Stderr
		}
		return "", fmt.Errorf("yt-dlp failed: %w\nOutput: %s", err, stderr)
	}

	outputFile := filepath.Join(yt.rawDir, video.ID+audioExt)
	if !FileExists(outputFile) {
		return "", fmt.Errorf("%w: expected download at %s", ErrNotFound, outputFile)
	}
	return outputFile, nil
}
