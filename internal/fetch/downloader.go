package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// Published mirror of the game's master database snapshot.
	DefaultMasterURL = "https://github.com/SimpleSandman/UmaMusumeMetaMasterMDB/raw/master/master/master.mdb"
	DefaultMetaURL   = "https://github.com/SimpleSandman/UmaMusumeMetaMasterMDB/raw/master/meta"

	defaultTimeout = 2 * time.Minute
)

// Downloader fetches the snapshot into a local data directory.
type Downloader struct {
	masterURL string
	metaURL   string
	dataDir   string
	client    *http.Client
}

// New creates a downloader writing into dataDir. Empty URLs fall back
// to the public mirror.
func New(dataDir, masterURL, metaURL string) *Downloader {
	if masterURL == "" {
		masterURL = DefaultMasterURL
	}
	if metaURL == "" {
		metaURL = DefaultMetaURL
	}
	return &Downloader{
		masterURL: masterURL,
		metaURL:   metaURL,
		dataDir:   dataDir,
		client:    &http.Client{Timeout: defaultTimeout},
	}
}

// SnapshotPath returns where the downloaded snapshot lands.
func (d *Downloader) SnapshotPath() string {
	return filepath.Join(d.dataDir, "master.mdb")
}

// Download fetches the snapshot and its companion meta file. The meta
// file is best-effort; only the snapshot itself is required.
func (d *Downloader) Download(ctx context.Context) error {
	if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := d.downloadFile(ctx, d.masterURL, d.SnapshotPath()); err != nil {
		return fmt.Errorf("failed to download snapshot: %w", err)
	}

	if err := d.downloadFile(ctx, d.metaURL, filepath.Join(d.dataDir, "meta")); err != nil {
		log.Warn().Err(err).Msg("Meta file download failed; snapshot itself is in place")
	}

	log.Info().Str("path", d.SnapshotPath()).Msg("Snapshot download complete")
	return nil
}

// downloadFile streams the URL to a temp file in the destination
// directory and renames it into place, so a partial download never
// replaces a good snapshot.
func (d *Downloader) downloadFile(ctx context.Context, url, dest string) error {
	log.Info().Str("url", url).Msg("Downloading")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}

	log.Info().Str("dest", dest).Int64("bytes", written).Msg("Download finished")
	return nil
}
