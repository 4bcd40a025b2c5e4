package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/singleflight"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/errors"
)

// Entry locates one file inside an archive.
type Entry struct {
	Name           string
	Offset         int64
	CompressedSize int64
	Size           int64
	Method         uint16
}

// Handle is an immutable index of an archive's file entries built in one pass
// over its central directory.
type Handle struct {
	path    string
	entries map[string]Entry
	names   []string
}

// OpenHandle indexes the archive at path.
func OpenHandle(path string) (*Handle, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() { _ = rc.Close() }()

	h := &Handle{
		path:    path,
		entries: make(map[string]Entry, len(rc.File)),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		offset, err := f.DataOffset()
		if err != nil {
			return nil, fmt.Errorf("failed to locate entry %s in %s: %w", f.Name, path, err)
		}
		h.entries[f.Name] = Entry{
			Name:           f.Name,
			Offset:         offset,
			CompressedSize: int64(f.CompressedSize64),
			Size:           int64(f.UncompressedSize64),
			Method:         f.Method,
		}
		h.names = append(h.names, f.Name)
	}
	sort.Strings(h.names)
	return h, nil
}

// Path returns the archive file the handle indexes.
func (h *Handle) Path() string {
	return h.path
}

// Names returns the sorted file entry names.
func (h *Handle) Names() []string {
	return append([]string(nil), h.names...)
}

// Find looks up an entry by its exact name. Absence is not an error.
func (h *Handle) Find(name string) (Entry, bool) {
	entry, ok := h.entries[name]
	return entry, ok
}

// Open returns a stream over the uncompressed bytes of entry.
func (h *Handle) Open(entry Entry) (io.ReadCloser, error) {
	f, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", h.path, err)
	}
	section := io.NewSectionReader(f, entry.Offset, entry.CompressedSize)

	switch entry.Method {
	case zip.Store:
		return &entryReader{Reader: section, closers: []io.Closer{f}}, nil
	case zip.Deflate:
		fr := flate.NewReader(section)
		return &entryReader{Reader: fr, closers: []io.Closer{fr, f}}, nil
	default:
		_ = f.Close()
		return h.openWithReader(entry.Name)
	}
}

// openWithReader handles compression methods other than store and deflate
// through the registered zip decompressors.
func (h *Handle) openWithReader(name string) (io.ReadCloser, error) {
	rc, err := zip.OpenReader(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", h.path, err)
	}
	for _, f := range rc.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("failed to open entry %s: %w", name, err)
		}
		return &entryReader{Reader: r, closers: []io.Closer{r, rc}}, nil
	}
	_ = rc.Close()
	return nil, fmt.Errorf("%w: %s", errors.ErrEntryNotFound, name)
}

type entryReader struct {
	io.Reader
	closers []io.Closer
}

func (r *entryReader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Pool keeps at most one handle per archive base path.
// Handles are only replaced through Put or dropped through Invalidate;
// a changed archive file is not detected automatically.
type Pool struct {
	mu      sync.RWMutex
	handles map[string]*Handle
	group   singleflight.Group
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{handles: make(map[string]*Handle)}
}

func poolKey(base string) string {
	return filepath.Clean(base)
}

// Get returns the handle registered for base.
func (p *Pool) Get(base string) (*Handle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.handles[poolKey(base)]
	return h, ok
}

// GetOrCreate returns the handle for base, indexing the archive on first use.
// Concurrent callers for the same base share one indexing pass.
func (p *Pool) GetOrCreate(ctx context.Context, base string) (*Handle, error) {
	if h, ok := p.Get(base); ok {
		return h, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := poolKey(base)
	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		if h, ok := p.Get(key); ok {
			return h, nil
		}
		h, err := OpenHandle(key)
		if err != nil {
			return nil, err
		}
		p.Put(h)
		logger.Debug("Indexed archive", logger.Fields{"archive": key, "entries": len(h.names)})
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// Put registers h under its path, replacing any previous handle.
func (p *Pool) Put(h *Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handles[poolKey(h.path)] = h
}

// Invalidate drops the handle for base so the next lookup re-indexes the archive.
func (p *Pool) Invalidate(base string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handles, poolKey(base))
}

// Len returns the number of live handles.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handles)
}
