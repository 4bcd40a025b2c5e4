package resolver

import (
	"context"
	"io"
	"strings"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/cache"
	"github.com/glorpus-work/osploader/pkg/download"
	"github.com/glorpus-work/osploader/pkg/ospath"
)

// RegisterSearchPath adds base at the front of the search paths.
func (r *Resolver) RegisterSearchPath(base string) {
	r.searchPaths.Add(base)
}

// UnregisterSearchPath removes base from the search paths.
func (r *Resolver) UnregisterSearchPath(base string) {
	r.searchPaths.Remove(base)
}

// SearchPaths returns the search paths, most recently registered first.
func (r *Resolver) SearchPaths() []string {
	return r.searchPaths.List()
}

// SetResourceCacheEnabled turns the in-memory resource cache on or off.
func (r *Resolver) SetResourceCacheEnabled(enabled bool) {
	r.resources.SetEnabled(enabled)
}

// ClearResourceCache forgets every cached resource.
func (r *Resolver) ClearResourceCache() {
	r.resources.Clear()
}

// InvalidateArchive drops the pooled index of an archive that changed on disk.
func (r *Resolver) InvalidateArchive(base string) {
	r.pool.Invalidate(base)
}

// Cache returns the persistent cache manager.
func (r *Resolver) Cache() cache.Manager {
	return r.cache
}

// SetCacheRoot moves the persistent cache to dir.
func (r *Resolver) SetCacheRoot(ctx context.Context, dir string) (*cache.MigrationResult, error) {
	return r.cache.SetRoot(ctx, dir)
}

// CacheRoot returns the persistent cache directory, or "" if none is set.
func (r *Resolver) CacheRoot() string {
	return r.cache.Root()
}

// ClearCache removes the cached host directories and optionally the search records.
func (r *Resolver) ClearCache(alsoSearch bool) (*cache.ClearResult, error) {
	return r.cache.Clear(alsoSearch)
}

// Download copies the resource at urlPath to target. An empty target
// selects the cache address of urlPath. An existing target is returned
// untouched unless overwrite is set.
func (r *Resolver) Download(ctx context.Context, urlPath, target string, overwrite bool) (string, error) {
	if target == "" {
		target = r.cache.AddressFor(urlPath, "")
	}
	return r.downloader.Fetch(ctx, urlPath, target, overwrite)
}

// DownloadToCache copies the resource at urlPath to its cache address under name.
func (r *Resolver) DownloadToCache(ctx context.Context, urlPath, name string) (string, error) {
	return r.downloader.Fetch(ctx, urlPath, r.cache.AddressFor(urlPath, name), false)
}

// ExtractZip extracts every file of the archive at urlPath below targetDir.
// The cancel flag is reset first; setting it during extraction stops
// before the next entry.
func (r *Resolver) ExtractZip(ctx context.Context, urlPath, targetDir string, overwrite bool) ([]string, error) {
	r.cancel.Set(false)
	return r.downloader.ExtractAll(ctx, urlPath, targetDir, overwrite, &r.cancel)
}

// ExtractEntry writes one archive entry ("base!/entry") to target.
func (r *Resolver) ExtractEntry(ctx context.Context, source, target string, overwrite bool) (string, error) {
	return r.downloader.ExtractEntry(ctx, source, target, overwrite)
}

// Contents lists the file entries of the archive at zipURL in sorted order.
func (r *Resolver) Contents(ctx context.Context, zipURL string) ([]string, error) {
	return r.downloader.Contents(ctx, zipURL)
}

// SetCanceled sets or clears the cooperative cancel flag.
func (r *Resolver) SetCanceled(canceled bool) {
	r.cancel.Set(canceled)
}

// Canceled reports whether cancellation was requested.
func (r *Resolver) Canceled() bool {
	return r.cancel.IsSet()
}

// AddExtractExtension registers an archive entry extension, such as ".pdf",
// whose matches are extracted to disk. A missing leading dot is added.
func (r *Resolver) AddExtractExtension(ext string) {
	if ext == "" {
		return
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractExts[ext] = struct{}{}
}

// IsURLAvailable reports whether rawURL answers with 200 OK.
func (r *Resolver) IsURLAvailable(ctx context.Context, rawURL string) bool {
	return r.downloader.IsURLAvailable(ctx, rawURL)
}

// OpenStream resolves name and opens its content.
func (r *Resolver) OpenStream(ctx context.Context, name string, opts Options) (io.ReadCloser, error) {
	res, err := r.Resolve(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	return res.Open(ctx)
}

// ReadString resolves name and returns its content as text.
func (r *Resolver) ReadString(ctx context.Context, name string, opts Options) (string, error) {
	res, err := r.Resolve(ctx, name, opts)
	if err != nil {
		return "", err
	}
	return res.Text(ctx)
}

// streamOpener feeds downloads: archive entries go through the resolver,
// everything else is opened directly.
type streamOpener struct {
	r *Resolver
}

func (o streamOpener) Open(ctx context.Context, uriPath string) (io.ReadCloser, error) {
	if !strings.Contains(uriPath, ospath.ArchiveSeparator) {
		return o.r.urls.Open(ctx, uriPath)
	}
	res, err := o.r.Resolve(ctx, uriPath, Options{SkipFiles: true})
	if err != nil {
		return nil, err
	}
	logger.Debug("Downloading archive entry", logger.Fields{"source": res.Path()})
	return res.Open(ctx)
}

var _ download.Opener = streamOpener{}
