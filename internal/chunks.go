package internal

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// ChunkRange is the [Start, End) slice of an episode covered by one chunk, in milliseconds
type ChunkRange struct {
	Index int
	Start int64
	End   int64
}

// Len returns the chunk length in milliseconds
func (r ChunkRange) Len() int64 {
	return r.End - r.Start
}

// validate rejects keywords outside the closed set and durations that do not match them
func (s ChunkSpec) validate() error {
	want, err := SpecFor(s.Keyword)
	if err != nil {
		return err
	}
	if s.Duration != want.Duration {
		return fmt.Errorf("%w: %s chunks must be %s, got %s", ErrInvalidArgument, s.Keyword, want.Duration, s.Duration)
	}
	return nil
}

// ChunkCount returns ceil(totalMs / chunk duration), or 0 for non-positive totals
func ChunkCount(totalMs int64, spec ChunkSpec) (int, error) {
	if err := spec.validate(); err != nil {
		return 0, err
	}
	if totalMs <= 0 {
		return 0, nil
	}
	chunkMs := spec.Duration.Milliseconds()
	return int((totalMs-1)/chunkMs + 1), nil
}

// ChunkRanges returns the millisecond range of every planned chunk; the last one may be short
func ChunkRanges(totalMs int64, spec ChunkSpec) ([]ChunkRange, error) {
	count, err := ChunkCount(totalMs, spec)
	if err != nil {
		return nil, err
	}
	chunkMs := spec.Duration.Milliseconds()
	ranges := make([]ChunkRange, 0, count)
	for i := 1; i <= count; i++ {
		start := int64(i-1) * chunkMs
		end := start + min(chunkMs, totalMs-start)
		ranges = append(ranges, ChunkRange{Index: i, Start: start, End: end})
	}
	return ranges, nil
}

// ChunkPath returns the canonical path of chunk i for the given asset kind
func ChunkPath(episodeDir string, spec ChunkSpec, kind AssetKind, i int) (string, error) {
	suffix, err := spec.Keyword.Suffix()
	if err != nil {
		return "", err
	}
	name := strconv.Itoa(i) + suffix
	switch kind {
	case AudioAsset:
		return filepath.Join(episodeDir, name+audioExt), nil
	case TranscriptAsset:
		return filepath.Join(episodeDir, TranscriptSubdir, name+transcriptExt), nil
	default:
		return "", fmt.Errorf("%w: unsupported asset kind %s", ErrInvalidArgument, kind)
	}
}

// Plan lists, in index order, every chunk path an episode of the given duration should have.
// It only depends on its arguments, so download, transcribe and check stages
// derive identical paths without sharing state.
func Plan(episodeDir string, totalMs int64, spec ChunkSpec, kind AssetKind) ([]string, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if _, err := assetExt(kind); err != nil {
		return nil, err
	}

	count, err := ChunkCount(totalMs, spec)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		path, err := ChunkPath(episodeDir, spec, kind, i)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func assetExt(kind AssetKind) (string, error) {
	switch kind {
	case AudioAsset:
		return audioExt, nil
	case TranscriptAsset:
		return transcriptExt, nil
	default:
		return "", fmt.Errorf("%w: unsupported asset kind %s", ErrInvalidArgument, kind)
	}
}

// FullAudioPath returns {episode}/full.mp3
func FullAudioPath(episodeDir string) string {
	return filepath.Join(episodeDir, FullAudioName+audioExt)
}

// PreviewAudioPath returns {episode}/one_minute_preview.mp3
func PreviewAudioPath(episodeDir string) string {
	return filepath.Join(episodeDir, PreviewName+audioExt)
}

// PreviewTranscriptPath returns {episode}/whisper/one_minute_preview.txt
func PreviewTranscriptPath(episodeDir string) string {
	return filepath.Join(episodeDir, TranscriptSubdir, PreviewName+transcriptExt)
}
