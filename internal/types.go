package internal

import (
	"fmt"
	"time"
)

// Episode asset names shared by every pipeline stage
const (
	FullAudioName    = "full"
	PreviewName      = "one_minute_preview"
	TranscriptSubdir = "whisper"

	audioExt      = ".mp3"
	transcriptExt = ".txt"
)

// PreviewDuration is the length of the one minute preview export
const PreviewDuration = time.Minute

// ChunkKeyword identifies the granularity of a chunk
type ChunkKeyword int

const (
	FiveMinutes ChunkKeyword = iota + 1
	Hour
)

// String returns the configuration name of the keyword
func (k ChunkKeyword) String() string {
	switch k {
	case FiveMinutes:
		return "5m"
	case Hour:
		return "1h"
	default:
		return fmt.Sprintf("ChunkKeyword(%d)", int(k))
	}
}

// Suffix returns the filename fragment for the keyword
func (k ChunkKeyword) Suffix() (string, error) {
	switch k {
	case FiveMinutes:
		return "_5_mins_chuck", nil
	case Hour:
		return "_hour_chuck", nil
	default:
		return "", fmt.Errorf("%w: unsupported chunk keyword %s", ErrInvalidArgument, k)
	}
}

// ParseChunkKeyword maps user input ("5m", "1h", ...) to a keyword
func ParseChunkKeyword(s string) (ChunkKeyword, error) {
	switch s {
	case "5m", "five_minutes", "5min":
		return FiveMinutes, nil
	case "1h", "hour", "60m":
		return Hour, nil
	default:
		return 0, fmt.Errorf("%w: unsupported chunk %q (supported: 5m, 1h)", ErrInvalidArgument, s)
	}
}

// ChunkSpec pairs a keyword with its fixed duration
type ChunkSpec struct {
	Keyword  ChunkKeyword
	Duration time.Duration
}

var (
	FiveMinuteChunks = ChunkSpec{Keyword: FiveMinutes, Duration: 5 * time.Minute}
	HourChunks       = ChunkSpec{Keyword: Hour, Duration: time.Hour}
)

// SpecFor returns the chunk spec for a keyword
func SpecFor(k ChunkKeyword) (ChunkSpec, error) {
	switch k {
	case FiveMinutes:
		return FiveMinuteChunks, nil
	case Hour:
		return HourChunks, nil
	default:
		return ChunkSpec{}, fmt.Errorf("%w: unsupported chunk keyword %s", ErrInvalidArgument, k)
	}
}

// AssetKind selects between audio and transcript paths
type AssetKind int

const (
	AudioAsset AssetKind = iota + 1
	TranscriptAsset
)

// String returns a human-readable representation of the asset kind
func (a AssetKind) String() string {
	switch a {
	case AudioAsset:
		return "audio"
	case TranscriptAsset:
		return "transcript"
	default:
		return fmt.Sprintf("AssetKind(%d)", int(a))
	}
}

// ParseAssetKind maps "audio" or "transcript" to an asset kind
func ParseAssetKind(s string) (AssetKind, error) {
	switch s {
	case "audio":
		return AudioAsset, nil
	case "transcript":
		return TranscriptAsset, nil
	default:
		return 0, fmt.Errorf("%w: unsupported asset kind %q (supported: audio, transcript)", ErrInvalidArgument, s)
	}
}

// VideoInfo describes one upload of the source channel
type VideoInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
	SourceURL   string `json:"source_url"`
	AudioDir    string `json:"audio_dir"`
}
