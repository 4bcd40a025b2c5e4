//go:generate mockgen -destination=./mocks/cache.go . Manager

package cache

import "context"

// Manager defines the persistent cache operations used by downloads and resolution.
type Manager interface {
	// Root returns the current cache root, or "" if none is set.
	Root() string
	// SetRoot migrates the cache to dir.
	SetRoot(ctx context.Context, dir string) (*MigrationResult, error)
	// AddressFor derives the cache location of urlPath. An empty name keeps the URL's file name.
	AddressFor(urlPath, name string) string
	// SearchCacheDir returns the search record directory, creating it if needed.
	SearchCacheDir() (string, error)
	// SearchCacheFile derives the search record location of urlPath.
	SearchCacheFile(urlPath string) string
	// IsCachePath reports whether path lies in a host directory of the cache.
	IsCachePath(path string) bool
	// Clear removes every host directory and optionally the search records.
	Clear(alsoSearch bool) (*ClearResult, error)
	// ClearHost removes one host directory.
	ClearHost(hostDir string) (int64, error)
	// GetInfo summarises the cache contents.
	GetInfo() (*Info, error)
}

// MigrationResult lists what SetRoot moved.
type MigrationResult struct {
	From   string
	To     string
	Copied []string
	Failed []string
}

// ClearResult contains information about what was cleared.
type ClearResult struct {
	TotalFreed  int64
	HostsFreed  int64
	SearchFreed int64
	Hosts       int
}

// HostInfo describes one host directory.
type HostInfo struct {
	Name  string
	Size  int64
	Files int
}

// Info represents cache information.
type Info struct {
	Directory   string
	TotalSize   int64
	TotalFiles  int
	Hosts       []HostInfo
	SearchSize  int64
	SearchFiles int
}
