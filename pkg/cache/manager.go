// Package cache manages the persistent on-disk cache of downloaded files.
//
// Files live at {root}/osp-{host}/{path}/{file}, where dots in the host and
// path are replaced with underscores, and search metadata records live below
// {root}/Search using the same layout.
package cache

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/fsutil"
	"github.com/glorpus-work/osploader/pkg/ospath"
	"github.com/glorpus-work/osploader/pkg/platform"
)

// DefaultManager implements the Manager interface for a single cache root.
type DefaultManager struct {
	mu   sync.RWMutex
	root string
}

// NewManager creates a cache manager for root. An empty root leaves the cache unset;
// addresses then fall back to the system temp directory.
func NewManager(root string) *DefaultManager {
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &DefaultManager{root: root}
}

// NewDefaultManager creates a cache manager rooted at DefaultRoot.
func NewDefaultManager() *DefaultManager {
	return NewManager(DefaultRoot())
}

var defaultRoot = sync.OnceValue(func() string {
	return defaultRootFor(platform.Detect(), fsutil.GetHomeDir)
})

// DefaultRoot returns the platform default cache root. It is computed once.
func DefaultRoot() string {
	return defaultRoot()
}

func defaultRootFor(family platform.Family, home func() (string, error)) string {
	subpath, ok := platform.DefaultCacheSubpath(family)
	if !ok {
		return os.TempDir()
	}
	dir, err := home()
	if err != nil || dir == "" {
		return os.TempDir()
	}
	return filepath.Join(dir, filepath.FromSlash(subpath))
}

// Root returns the cache root directory.
func (cm *DefaultManager) Root() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.root
}

// effectiveRoot is the root used for addresses: the cache root or the temp directory.
func (cm *DefaultManager) effectiveRoot() string {
	if root := cm.Root(); root != "" {
		return root
	}
	return os.TempDir()
}

// SetRoot moves the cache to dir.
//
// A dir inside the current root, or one that cannot be created or written,
// is rejected with ErrMigrationRejected and the root stays unchanged.
// Otherwise every host directory and the search directory are copied into
// dir, each one is deleted from the old root only after its copy succeeded,
// and the old root itself is removed once empty. The root always switches
// to dir after a copy phase; failed copies are reported as
// ErrMigrationIncomplete and their sources stay in the old root.
func (cm *DefaultManager) SetRoot(ctx context.Context, dir string) (*MigrationResult, error) {
	if dir == "" {
		return nil, errors.ErrCacheDirectory
	}
	candidate, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrMigrationRejected, dir, err)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	old := cm.root
	result := &MigrationResult{From: old, To: candidate}
	if old == candidate {
		return result, nil
	}
	if old != "" && fsutil.IsWithin(old, candidate) {
		return nil, fmt.Errorf("%w: %s is inside the current cache %s", errors.ErrMigrationRejected, candidate, old)
	}
	if err := os.MkdirAll(candidate, CacheDirPerm); err != nil {
		return nil, fmt.Errorf("%w: cannot create %s: %v", errors.ErrMigrationRejected, candidate, err)
	}
	if !fsutil.IsWritableDir(candidate) {
		return nil, fmt.Errorf("%w: %s is not writable", errors.ErrMigrationRejected, candidate)
	}

	if old != "" && fsutil.IsDir(old) {
		if err := migrate(ctx, old, candidate, result); err != nil {
			return nil, err
		}
		if fsutil.IsEmptyDir(old) {
			_ = os.Remove(old)
		}
	}
	cm.root = candidate
	logger.Debug("Cache root changed", logger.Fields{"from": old, "to": candidate, "copied": len(result.Copied)})

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%w: could not copy %s", errors.ErrMigrationIncomplete, strings.Join(result.Failed, ", "))
	}
	return result, nil
}

// migrate copies the cache directories of old into candidate in parallel and
// deletes each source only after its copy succeeded.
func migrate(ctx context.Context, old, candidate string, result *MigrationResult) error {
	names, err := cacheDirs(old, true)
	if err != nil {
		return fmt.Errorf("%w: cannot list %s: %v", errors.ErrMigrationRejected, old, err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(migrationWorkers)
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src := filepath.Join(old, name)
			copyErr := fsutil.CopyAll(src, filepath.Join(candidate, name))
			if copyErr == nil {
				if err := os.RemoveAll(src); err != nil {
					logger.Warn("Could not remove migrated cache directory", logger.Fields{"dir": src, "error": err})
				}
			} else {
				logger.Warn("Could not copy cache directory", logger.Fields{"dir": src, "error": copyErr})
			}

			mu.Lock()
			defer mu.Unlock()
			if copyErr == nil {
				result.Copied = append(result.Copied, name)
			} else {
				result.Failed = append(result.Failed, name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	sort.Strings(result.Copied)
	sort.Strings(result.Failed)
	return nil
}

// cacheDirs lists the host directories of root, plus the search directory if requested and present.
func cacheDirs(root string, withSearch bool) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), HostPrefix) || (withSearch && e.Name() == SearchDir) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// AddressFor returns the cache location of the file at urlPath. A source
// that already lies inside the cache maps to itself.
func (cm *DefaultManager) AddressFor(urlPath, name string) string {
	return addressIn(cm.effectiveRoot(), urlPath, name)
}

// SearchCacheDir returns the search record directory, creating it if needed.
// Without a configured root the platform default root is used.
func (cm *DefaultManager) SearchCacheDir() (string, error) {
	root := cm.Root()
	if root == "" {
		root = DefaultRoot()
	}
	dir := filepath.Join(root, SearchDir)
	if err := os.MkdirAll(dir, CacheDirPerm); err != nil {
		return "", errors.Wrapf(err, "failed to create search cache %s", dir)
	}
	return dir, nil
}

// SearchCacheFile returns the search record location for urlPath:
// {basename}_{ext}.xml with "&", "?" and "=" replaced by "_".
func (cm *DefaultManager) SearchCacheFile(urlPath string) string {
	root := cm.Root()
	if root == "" {
		root = DefaultRoot()
	}
	filename := ospath.Name(urlPath)
	basename := ospath.StripExtension(filename)
	if ext := ospath.Extension(filename); ext != "" {
		basename += "_" + ext
	}
	basename = strings.NewReplacer("&", "_", "?", "_", "=", "_").Replace(basename)
	return addressIn(filepath.Join(root, SearchDir), urlPath, basename+".xml")
}

// IsCachePath reports whether path lies in a host directory of the cache.
func (cm *DefaultManager) IsCachePath(path string) bool {
	root, err := filepath.Abs(cm.effectiveRoot())
	if err != nil {
		return false
	}
	return strings.Contains(ospath.ForwardSlash(path), ospath.ForwardSlash(root)+"/"+HostPrefix)
}

// addressIn derives {root}/osp-{host}/{path}/{file} for urlPath.
func addressIn(root, urlPath, name string) string {
	cachePath := ospath.ForwardSlash(root)
	if abs, err := filepath.Abs(root); err == nil {
		cachePath = ospath.ForwardSlash(abs)
	}

	var host, path, filename string
	uri := ospath.ToURIForm(urlPath)
	if u, err := url.Parse(uri); err == nil {
		host = strings.ReplaceAll(u.Hostname(), ".", "_")
		path = ospath.ToPlainForm(rawPath(uri, u.Scheme))

		if n := strings.Index(path, cachePath); n >= 0 {
			path = path[n+len(cachePath):]
		}
		if n := strings.LastIndex(path, ":"); n >= 0 {
			path = path[n+1:]
		}
		path = strings.TrimLeft(path, "/")

		pathname := ospath.Name(path)
		if pathname != "" {
			path = ospath.DirectoryPath(path)
		}
		path = strings.ReplaceAll(strings.ReplaceAll(path, ".", "_"), "!", "")
		filename = pathname
		if name != "" {
			filename = name
		}
	}

	if host == "" {
		host = LocalHost
	}
	parts := []string{root}
	if !strings.HasPrefix(path, HostPrefix) {
		parts = append(parts, HostPrefix+host)
	}
	if path != "" {
		parts = append(parts, filepath.FromSlash(path))
	}
	if filename != "" {
		parts = append(parts, filename)
	}
	return filepath.Join(parts...)
}

// rawPath returns the path of uri as written, without the scheme, the
// authority, the query or the fragment. Nothing is escaped or decoded.
func rawPath(uri, scheme string) string {
	rest := uri
	if scheme != "" {
		rest = rest[len(scheme)+1:]
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		n := strings.IndexByte(rest, '/')
		if n < 0 {
			return ""
		}
		rest = rest[n:]
	}
	if n := strings.IndexAny(rest, "?#"); n >= 0 {
		rest = rest[:n]
	}
	return rest
}

// Clear removes every host directory and, if alsoSearch is set, the search directory.
// Failures are logged as warnings and reported as ErrCacheClear after all
// deletions were attempted.
func (cm *DefaultManager) Clear(alsoSearch bool) (*ClearResult, error) {
	root := cm.Root()
	result := &ClearResult{}
	if root == "" {
		return result, nil
	}

	names, err := cacheDirs(root, alsoSearch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCacheClear, err)
	}

	var failed []string
	for _, name := range names {
		size, err := removeDir(filepath.Join(root, name))
		if err != nil {
			logger.Warn("Unable to clear cache directory", logger.Fields{"dir": name, "error": err})
			failed = append(failed, name)
			continue
		}
		if name == SearchDir {
			result.SearchFreed += size
		} else {
			result.HostsFreed += size
			result.Hosts++
		}
		result.TotalFreed += size
	}
	if len(failed) > 0 {
		return result, fmt.Errorf("%w: %s", errors.ErrCacheClear, strings.Join(failed, ", "))
	}
	return result, nil
}

// ClearHost removes a single host directory given by name or path.
// Directories that are not host directories are refused.
func (cm *DefaultManager) ClearHost(hostDir string) (int64, error) {
	if !filepath.IsAbs(hostDir) {
		hostDir = filepath.Join(cm.effectiveRoot(), hostDir)
	}
	if !strings.HasPrefix(filepath.Base(hostDir), HostPrefix) {
		return 0, fmt.Errorf("%w: %s is not a host directory", errors.ErrCacheClear, hostDir)
	}
	if !fsutil.Exists(hostDir) {
		return 0, nil
	}
	size, err := removeDir(hostDir)
	if err != nil {
		logger.Warn("Unable to clear cache host", logger.Fields{"dir": hostDir, "error": err})
		return 0, fmt.Errorf("%w: %v", errors.ErrCacheClear, err)
	}
	return size, nil
}

// removeDir removes dir and returns the bytes freed.
func removeDir(dir string) (int64, error) {
	_, size, err := fsutil.DirStats(dir)
	if err != nil {
		return 0, errors.Wrapf(err, "error walking directory %s", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Wrapf(err, "failed to remove directory %s", dir)
	}
	return size, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	root := cm.Root()
	info := &Info{Directory: root}
	if root == "" {
		return info, nil
	}

	names, err := cacheDirs(root, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCacheInfo, err)
	}
	for _, name := range names {
		files, size, err := fsutil.DirStats(filepath.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrCacheInfo, err)
		}
		if name == SearchDir {
			info.SearchSize = size
			info.SearchFiles = files
		} else {
			info.Hosts = append(info.Hosts, HostInfo{Name: name, Size: size, Files: files})
		}
		info.TotalSize += size
		info.TotalFiles += files
	}
	return info, nil
}
