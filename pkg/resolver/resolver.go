// Package resolver turns names into readable resources. A name may be a
// local file, an http(s) URL, an entry inside a zip, jar or trz archive
// (possibly remote) or a path inside an application scope.
//
// Lookups try the strategies file, URL, archive entry and scope in that
// order, first for the name itself and then for the name below each search
// path, most recently registered first.
package resolver

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/archive"
	"github.com/glorpus-work/osploader/pkg/cache"
	"github.com/glorpus-work/osploader/pkg/download"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/ospath"
	"github.com/glorpus-work/osploader/pkg/resource"
	"github.com/glorpus-work/osploader/pkg/searchpath"
)

// Resolver owns every piece of resolution state: search paths, the
// resource cache, the archive pool and the persistent cache.
// Create one per application; all methods are safe for concurrent use.
type Resolver struct {
	searchPaths *searchpath.Registry
	resources   *resource.Cache
	pool        *archive.Pool
	extractor   *archive.Extractor
	cache       cache.Manager
	downloader  *download.Downloader
	fetcher     ArchiveFetcher
	urls        URLOpener
	style       ospath.Style
	cancel      archive.CancelFlag

	documentBase  string
	codeBase      string
	launchArchive string
	defaultScope  *Scope

	mu          sync.Mutex
	xsetArchive string
	extractExts map[string]struct{}
}

// New creates a Resolver from cfg.
func New(cfg Config) *Resolver {
	maxPaths := cfg.MaxSearchPaths
	if maxPaths == 0 {
		maxPaths = searchpath.DefaultMax
	}
	cm := cfg.CacheManager
	if cm == nil {
		cm = cache.NewManager(cfg.CacheRoot)
	}

	r := &Resolver{
		searchPaths:   searchpath.New(maxPaths),
		resources:     resource.NewCache(cfg.ResourceCache),
		pool:          archive.NewPool(),
		extractor:     archive.NewExtractor(),
		cache:         cm,
		style:         ospath.HostStyle(),
		documentBase:  stripQuery(cfg.DocumentBase),
		codeBase:      cfg.CodeBase,
		launchArchive: cfg.LaunchArchive,
		defaultScope:  cfg.Scope,
		extractExts:   make(map[string]struct{}),
	}

	r.urls = cfg.URLOpener
	if r.urls == nil {
		r.urls = download.NewStreamOpener(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.UserAgent)
	}
	r.downloader = download.NewDownloader(cm, download.Options{
		Opener:    streamOpener{r},
		UserAgent: cfg.UserAgent,
		ProbeURL:  cfg.ProbeURL,
		Timeout:   cfg.HTTPTimeout,
	})
	r.fetcher = cfg.ArchiveFetcher
	if r.fetcher == nil {
		r.fetcher = r.downloader
	}

	for _, p := range cfg.SearchPaths {
		r.searchPaths.Add(p)
	}
	for _, ext := range cfg.ExtractExtensions {
		r.AddExtractExtension(ext)
	}
	return r
}

// Resolve locates name and returns a resource that is known to have content.
// A miss returns an error wrapping ErrNotFound whose NotFoundError lists
// every composed path that was tried.
func (r *Resolver) Resolve(ctx context.Context, name string, opts Options) (*resource.Resource, error) {
	name = cleanName(name)
	if name == "" {
		return nil, &errors.NotFoundError{Name: name}
	}
	l := &lookup{r: r, ctx: ctx, opts: opts, failed: make(map[string]struct{})}

	var res *resource.Resource
	var label string
	if opts.BasePath != "" {
		res, label = l.resolveWithBase(name), r.style.Join(opts.BasePath, name)
	} else {
		res, label = l.resolveName(name), name
	}
	if res != nil {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nf := &errors.NotFoundError{Name: label, Searched: l.searched}
	logger.Debug(nf.Error())
	return nil, nf
}

func (l *lookup) resolveName(name string) *resource.Resource {
	if res := l.try(name); res != nil {
		return res
	}
	for _, base := range l.r.searchPaths.List() {
		if res := l.try(l.r.style.Join(base, name)); res != nil {
			return res
		}
	}
	return nil
}

// resolveWithBase looks below the base path and, for a relative base, below
// the host bases and each search path as well.
func (l *lookup) resolveWithBase(name string) *resource.Resource {
	r := l.r
	base := l.opts.BasePath
	if res := l.try(r.style.Join(base, name)); res != nil {
		return res
	}
	if ospath.IsAbsolute(base) {
		return nil
	}
	if r.documentBase != "" {
		docDir := ospath.DirectoryPath(r.documentBase) + "/"
		if res := l.try(r.style.Join(r.style.Join(docDir, base), name)); res != nil {
			return res
		}
		if r.codeBase != "" && r.codeBase != docDir {
			if res := l.try(r.style.Join(r.style.Join(r.codeBase, base), name)); res != nil {
				return res
			}
		}
	}
	for _, sp := range r.searchPaths.List() {
		if res := l.try(r.style.Join(r.style.Join(sp, base), name)); res != nil {
			return res
		}
	}
	return nil
}

// lookup is the state of one Resolve call. Composed paths that failed are
// not tried again within the same call.
type lookup struct {
	r        *Resolver
	ctx      context.Context
	opts     Options
	failed   map[string]struct{}
	searched []string
}

func (l *lookup) try(path string) *resource.Resource {
	if _, seen := l.failed[path]; seen {
		return nil
	}
	if l.ctx.Err() != nil {
		return nil
	}
	if res := l.find(path); res != nil {
		return res
	}
	l.failed[path] = struct{}{}
	l.searched = append(l.searched, path)
	return nil
}

// find runs the cache check and the strategies for one composed path.
func (l *lookup) find(path string) *resource.Resource {
	path = ospath.CollapseDotSegments(path)
	if res, ok := l.r.resources.Get(path); ok && (!l.opts.SkipFiles || res.File() == "") {
		logger.Debug("Found in cache: " + path)
		return res
	}

	var res *resource.Resource
	if !l.opts.SkipFiles {
		res = l.fileResource(path)
	}
	if res == nil {
		res = l.urlResource(path)
	}
	if res == nil {
		res = l.archiveResource(path)
	}
	if res == nil {
		res = l.scopedResource(path)
	}
	if res != nil {
		l.r.resources.Put(path, res)
	}
	return res
}

// cleanName strips surrounding double quotes and a leading "./".
func cleanName(name string) string {
	name = strings.TrimPrefix(name, `"`)
	name = strings.TrimSuffix(name, `"`)
	return strings.TrimPrefix(name, "./")
}

func stripQuery(u string) string {
	if n := strings.Index(u, "?"); n >= 0 {
		return u[:n]
	}
	return u
}

// setXsetArchive records the archive of the most recently resolved xset.
func (r *Resolver) setXsetArchive(base string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.xsetArchive = base
}

func (r *Resolver) currentXsetArchive() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.xsetArchive
}

// extractExtensions returns the registered extensions in sorted order.
func (r *Resolver) extractExtensions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	exts := make([]string, 0, len(r.extractExts))
	for ext := range r.extractExts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
