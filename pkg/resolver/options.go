package resolver

import (
	"io/fs"
	"time"

	"github.com/glorpus-work/osploader/pkg/cache"
)

// Options adjust a single Resolve call.
type Options struct {
	// BasePath is joined with the name before lookup. A relative base is
	// also tried below the host bases and every search path.
	BasePath string
	// SkipFiles disables the local file strategy and ignores cached file resources.
	SkipFiles bool
	// Scope replaces the resolver's default scope for this call.
	Scope *Scope
	// AllowArchiveURLs lets a URL naming a zip, jar or trz archive resolve
	// as a plain URL resource.
	AllowArchiveURLs bool
}

// Scope is a filesystem searched by the scoped strategy, such as embedded
// application assets or a directory the application ships with.
type Scope struct {
	// FS holds the scoped files.
	FS fs.FS
	// Package is the directory used for package-relative lookups.
	Package string
	// Location is the absolute prefix reported in resource paths.
	Location string
}

// Config holds the construction settings of a Resolver.
type Config struct {
	// CacheRoot is the persistent cache directory. Empty leaves the cache
	// unset and addresses fall back to the temp directory.
	CacheRoot string
	// CacheManager replaces the manager built from CacheRoot.
	CacheManager cache.Manager
	// ResourceCache enables the in-memory resource cache.
	ResourceCache bool
	// MaxSearchPaths caps the search path registry. Zero selects the default.
	MaxSearchPaths int
	// SearchPaths are registered in order, so the last one is tried first.
	SearchPaths []string
	// ExtractExtensions name archive entry types that are extracted next to
	// their archive and returned as files.
	ExtractExtensions []string
	// DocumentBase and CodeBase resolve relative URLs for hosted documents.
	DocumentBase string
	CodeBase     string
	// LaunchArchive is searched last by the archive strategy.
	LaunchArchive string
	// Scope is used when a call supplies none.
	Scope *Scope

	// UserAgent, ProbeURL and HTTPTimeout configure network access.
	UserAgent   string
	ProbeURL    string
	HTTPTimeout time.Duration

	// URLOpener replaces the default http and file opener.
	URLOpener URLOpener
	// ArchiveFetcher replaces the downloader for remote archives.
	ArchiveFetcher ArchiveFetcher
}
