package internal_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// fakeSource serves a fixed channel listing and writes placeholder downloads
type fakeSource struct {
	rawDir     string
	videos     []internal.VideoInfo
	failID     string
	downloads  []string
	listErr    error
	metadataOK bool
}

func (s *fakeSource) ChannelUploads(_ context.Context, _ string, limit int) ([]internal.VideoInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.videos[:min(limit, len(s.videos))], nil
}

func (s *fakeSource) Video(_ context.Context, id string) (internal.VideoInfo, error) {
	if !s.metadataOK {
		return internal.VideoInfo{}, errors.New("metadata unavailable")
	}
	return internal.VideoInfo{ID: id, Title: "title " + id, PublishedAt: "2023-01-01", SourceURL: internal.VideoURL(id)}, nil
}

func (s *fakeSource) DownloadAudio(_ context.Context, v internal.VideoInfo) (string, error) {
	s.downloads = append(s.downloads, v.ID)
	if v.ID == s.failID {
		return "", errors.New("yt-dlp failed")
	}
	if err := internal.EnsureDirs(s.rawDir); err != nil {
		return "", err
	}
	path := filepath.Join(s.rawDir, v.ID+".mp3")
	return path, os.WriteFile(path, []byte("raw"), 0644)
}

type fetchFixture struct {
	root    string
	source  *fakeSource
	cutter  *fileCutter
	catalog *internal.Catalog
	fetcher *internal.Fetcher
}

func newFetchFixture(t *testing.T, videos []internal.VideoInfo) *fetchFixture {
	t.Helper()
	root := t.TempDir()
	audioRoot := filepath.Join(root, "audio")

	source := &fakeSource{rawDir: filepath.Join(root, "raw"), videos: videos}
	cutter := newFileCutter()
	prober := fakeProber{}
	for _, v := range videos {
		prober[internal.FullAudioPath(filepath.Join(audioRoot, v.ID))] = 400_000
	}
	catalog, err := internal.OpenCatalog(filepath.Join(root, "catalog.db"))
	if err != nil {
		t.Fatalf("OpenCatalog returned error: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })

	exporter := internal.NewExporter(cutter, prober, nil)
	return &fetchFixture{
		root:    audioRoot,
		source:  source,
		cutter:  cutter,
		catalog: catalog,
		fetcher: internal.NewFetcher(source, exporter, catalog, nil, silentUI{}, audioRoot),
	}
}

func TestFetcherRun(t *testing.T) {
	videos := []internal.VideoInfo{
		{ID: "aaaaaaaaaaa", Title: "one", PublishedAt: "2023-02-01", SourceURL: internal.VideoURL("aaaaaaaaaaa")},
		{ID: "bbbbbbbbbbb", Title: "two", PublishedAt: "2023-01-01", SourceURL: internal.VideoURL("bbbbbbbbbbb")},
		{ID: "ccccccccccc", Title: "three", PublishedAt: "2022-12-01", SourceURL: internal.VideoURL("ccccccccccc")},
	}
	fx := newFetchFixture(t, videos)
	fx.source.failID = "bbbbbbbbbbb"

	got, err := fx.fetcher.Run(context.Background(), internal.DefaultChannelID, 2)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Run returned %d videos, want the newest 2", len(got))
	}
	if got[0].AudioDir != filepath.Join(fx.root, "aaaaaaaaaaa") {
		t.Fatalf("AudioDir = %q", got[0].AudioDir)
	}
	if got[1].AudioDir != "" {
		t.Fatalf("failed download should have an empty AudioDir, got %q", got[1].AudioDir)
	}

	// the exported episode satisfies the audio stage
	if !internal.FileExists(filepath.Join(fx.root, "aaaaaaaaaaa", "2_5_mins_chuck.mp3")) {
		t.Fatalf("expected the second five minute chunk to be exported")
	}
	// the raw download is removed after export
	if internal.FileExists(filepath.Join(fx.source.rawDir, "aaaaaaaaaaa.mp3")) {
		t.Fatalf("raw download should be removed after export")
	}

	entries, err := fx.catalog.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("catalog has %d entries, want 2", len(entries))
	}
}

func TestFetcherSkipsDownloadWhenFullAudioExists(t *testing.T) {
	videos := []internal.VideoInfo{{ID: "aaaaaaaaaaa", Title: "one"}}
	fx := newFetchFixture(t, videos)
	writeFile(t, internal.FullAudioPath(filepath.Join(fx.root, "aaaaaaaaaaa")), "full")

	got, err := fx.fetcher.Run(context.Background(), internal.DefaultChannelID, 10)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(fx.source.downloads) != 0 {
		t.Fatalf("expected no downloads, got %v", fx.source.downloads)
	}
	if got[0].AudioDir == "" {
		t.Fatalf("existing episode should still be exported")
	}
}

func TestFetcherRunVideosFallsBackWithoutMetadata(t *testing.T) {
	fx := newFetchFixture(t, []internal.VideoInfo{{ID: "aaaaaaaaaaa"}})

	got, err := fx.fetcher.RunVideos(context.Background(), []string{"aaaaaaaaaaa"})
	if err != nil {
		t.Fatalf("RunVideos returned error: %v", err)
	}
	if len(got) != 1 || got[0].SourceURL != internal.VideoURL("aaaaaaaaaaa") || got[0].AudioDir == "" {
		t.Fatalf("unexpected result %+v", got)
	}

	entry, err := fx.catalog.Get(context.Background(), "aaaaaaaaaaa")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if entry.AudioDir != got[0].AudioDir {
		t.Fatalf("catalog AudioDir = %q, want %q", entry.AudioDir, got[0].AudioDir)
	}
}

func TestFetcherListingError(t *testing.T) {
	fx := newFetchFixture(t, nil)
	fx.source.listErr = errors.New("channel not found")
	if _, err := fx.fetcher.Run(context.Background(), "UCnope", 3); err == nil {
		t.Fatalf("expected the listing error to be returned")
	}
}
