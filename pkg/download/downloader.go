// Package download fetches remote files into the persistent cache and
// extracts archive entries, telling an unreachable server apart from a
// failed download.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/archive"
	"github.com/glorpus-work/osploader/pkg/cache"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/fsutil"
	"github.com/glorpus-work/osploader/pkg/ospath"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "osploader/1.0"
	// DefaultProbeURL is the known-good host used for connectivity checks.
	DefaultProbeURL = "http://www.opensourcephysics.org"

	copyBufferSize = 64 * 1024
)

// Downloader fetches files and archive entries to local targets.
type Downloader struct {
	client    *http.Client
	userAgent string
	probeURL  string
	opener    Opener
	cache     cache.Manager
	extractor *archive.Extractor
	group     singleflight.Group

	mu            sync.Mutex
	connected     bool
	lastFailedURL string
}

// NewDownloader creates a Downloader that stores remote archives in cm.
func NewDownloader(cm cache.Manager, opts Options) *Downloader {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.ProbeURL == "" {
		opts.ProbeURL = DefaultProbeURL
	}
	client := &http.Client{Timeout: opts.Timeout}
	if opts.Opener == nil {
		opts.Opener = NewStreamOpener(client, opts.UserAgent)
	}
	return &Downloader{
		client:    client,
		userAgent: opts.UserAgent,
		probeURL:  opts.ProbeURL,
		opener:    opts.Opener,
		cache:     cm,
		extractor: archive.NewExtractor(),
	}
}

// Fetch copies the bytes at urlPath into target and returns target.
// An existing target is returned untouched unless overwrite is set.
// Concurrent fetches of the same target share one transfer.
func (d *Downloader) Fetch(ctx context.Context, urlPath, target string, overwrite bool) (string, error) {
	if !overwrite && fsutil.Exists(target) {
		return target, nil
	}
	uri := ospath.ToURIForm(urlPath)

	v, err, _ := d.group.Do(target, func() (interface{}, error) {
		if !overwrite && fsutil.Exists(target) {
			return target, nil
		}
		if err := d.fetchOne(ctx, uri, target); err != nil {
			return nil, d.failure(ctx, uri, err)
		}
		if IsRemote(uri) {
			d.mu.Lock()
			d.connected = true
			d.mu.Unlock()
		}
		logger.Debug("Downloaded", logger.Fields{"url": uri, "target": target})
		return target, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (d *Downloader) fetchOne(ctx context.Context, uri, target string) error {
	rc, err := d.opener.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	tmpPath, err := writeToTemp(rc, target)
	if err != nil {
		return err
	}
	if err := finalizeFile(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// failure classifies a failed fetch. The probe runs when connectivity was
// never confirmed or when the same URL failed on the previous attempt.
func (d *Downloader) failure(ctx context.Context, uri string, cause error) error {
	d.mu.Lock()
	probe := IsRemote(uri) && (!d.connected || d.lastFailedURL == uri)
	d.lastFailedURL = uri
	d.mu.Unlock()

	if probe {
		available := d.IsURLAvailable(ctx, d.probeURL)
		d.mu.Lock()
		d.connected = available
		d.mu.Unlock()
		if !available {
			logger.Warn("Server unavailable", logger.Fields{"url": uri, "probe": d.probeURL})
			return fmt.Errorf("%w: %s: %v", errors.ErrServerUnavailable, uri, cause)
		}
	}
	logger.Debug("Download failed", logger.Fields{"url": uri, "error": cause})
	if errors.Is(cause, errors.ErrDownloadFailed) {
		return fmt.Errorf("%s: %w", uri, cause)
	}
	return fmt.Errorf("%w: %s: %v", errors.ErrDownloadFailed, uri, cause)
}

// FetchToCache downloads urlPath to its cache address. An empty name keeps
// the URL's file name.
func (d *Downloader) FetchToCache(ctx context.Context, urlPath, name string) (string, error) {
	return d.Fetch(ctx, urlPath, d.cache.AddressFor(urlPath, name), false)
}

// ExtractEntry writes the entry named by source ("base!/entry") to target.
// A remote archive is downloaded to the cache first. An existing target is
// kept unless overwrite is set.
func (d *Downloader) ExtractEntry(ctx context.Context, source, target string, overwrite bool) (string, error) {
	base, entry, ok := ospath.SplitArchivePath(source)
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrNotArchive, source)
	}
	if !overwrite && fsutil.Exists(target) {
		return target, nil
	}

	local, err := d.localArchive(ctx, base)
	if err != nil {
		return "", err
	}
	if err := d.extractor.ExtractFile(ctx, local, entry, target, true); err != nil {
		return "", err
	}
	if err := os.Chmod(target, fsutil.FileModeSecure); err != nil {
		return "", errors.Wrap(err, "could not set permissions")
	}
	return target, nil
}

// ExtractAll writes every file entry of the archive at zipURL below
// targetDir. A remote archive is streamed once into a temporary file that is
// removed afterwards; it is not added to the cache. Cancellation through
// cancel is checked between entries; the files written before it stay in
// place and the error wraps ErrCanceled.
func (d *Downloader) ExtractAll(ctx context.Context, zipURL, targetDir string, overwrite bool, cancel *archive.CancelFlag) ([]string, error) {
	local := localPath(zipURL)
	if IsRemote(zipURL) {
		tmpPath, err := d.fetchTemp(ctx, zipURL)
		if err != nil {
			return nil, err
		}
		defer func() { _ = os.Remove(tmpPath) }()
		local = tmpPath
	} else if !fsutil.Exists(local) {
		return nil, fmt.Errorf("%w: archive %s does not exist", errors.ErrNotFound, local)
	}
	return d.extractor.ExtractAll(ctx, local, targetDir, archive.ExtractOptions{
		Overwrite: overwrite,
		Cancel:    cancel,
	})
}

// fetchTemp copies a remote file into a temporary file and returns its path.
func (d *Downloader) fetchTemp(ctx context.Context, urlPath string) (string, error) {
	uri := ospath.ToURIForm(urlPath)
	rc, err := d.opener.Open(ctx, uri)
	if err != nil {
		return "", d.failure(ctx, uri, err)
	}
	defer func() { _ = rc.Close() }()

	tmpPath, err := writeToTemp(rc, filepath.Join(os.TempDir(), ospath.Name(uri)))
	if err != nil {
		return "", d.failure(ctx, uri, err)
	}
	d.mu.Lock()
	d.connected = true
	d.mu.Unlock()
	return tmpPath, nil
}

// Contents lists the file entries of the archive at zipURL, downloading a
// remote archive into the cache first.
func (d *Downloader) Contents(ctx context.Context, zipURL string) ([]string, error) {
	local, err := d.localArchive(ctx, zipURL)
	if err != nil {
		return nil, err
	}
	return d.extractor.Contents(ctx, local)
}

// localArchive returns a local path for an archive, downloading remote ones into the cache.
func (d *Downloader) localArchive(ctx context.Context, base string) (string, error) {
	if IsRemote(base) {
		return d.FetchToCache(ctx, base, ospath.Name(base))
	}
	local := localPath(base)
	if !fsutil.Exists(local) {
		return "", fmt.Errorf("%w: archive %s does not exist", errors.ErrNotFound, local)
	}
	return local, nil
}

// IsURLAvailable reports whether a GET of rawURL answers 200 OK.
// It blocks for at most the configured HTTP timeout.
func (d *Downloader) IsURLAvailable(ctx context.Context, rawURL string) bool {
	resp, err := doRequest(ctx, d.client, d.userAgent, rawURL)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

func writeToTemp(r io.Reader, absPath string) (string, error) {
	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return "", errors.Wrap(err, "could not create download dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(absPath), "dl-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(tmp, r, buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "could not write file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return errors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(absPath, fsutil.FileModeSecure); err != nil {
		return errors.Wrap(err, "could not set permissions")
	}
	return nil
}
