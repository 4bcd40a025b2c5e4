// Package archive reads zip-format archives (zip, jar, trz): one-shot and
// whole-archive extraction, content listing, and a pool of indexed handles
// for repeated entry lookups.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mholt/archives"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/fsutil"
)

// ExtractOptions controls ExtractAll.
type ExtractOptions struct {
	// Overwrite replaces files that already exist in the destination.
	Overwrite bool
	// Cancel is checked before each entry. Nil means not cancellable.
	Cancel *CancelFlag
	// OnEntry is called after an entry has been written or found in place.
	OnEntry func(path string)
}

// Extractor handles archive extraction and listing.
type Extractor struct{}

// NewExtractor creates a new Extractor instance.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func openFS(ctx context.Context, archivePath string) (fs.FS, func(), error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive file %s: %w", archivePath, err)
	}
	closeFn := func() {}
	if closer, ok := fsys.(io.Closer); ok {
		closeFn = func() { _ = closer.Close() }
	}
	return fsys, closeFn, nil
}

// ExtractAll writes every file entry of the archive below destDir, keeping
// its relative path. Entries are visited in the order they are stored in the
// archive. Existing files are left alone unless opts.Overwrite is set but
// still count as extracted.
//
// When opts.Cancel is set between entries the extraction stops before the
// next entry, the files written so far stay in place and the returned error
// wraps ErrCanceled.
func (e *Extractor) ExtractAll(ctx context.Context, archivePath, destDir string, opts ExtractOptions) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file %s: %w", archivePath, err)
	}
	defer func() { _ = f.Close() }()

	if err := fsutil.EnsureDir(destDir); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	var written []string
	handler := func(_ context.Context, info archives.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		if opts.Cancel.IsSet() {
			return errors.ErrCanceled
		}

		targetPath, err := targetFor(destDir, info.NameInArchive)
		if err != nil {
			return err
		}
		if opts.Overwrite || !fsutil.Exists(targetPath) {
			if err := writeEntry(info.Open, info.NameInArchive, targetPath); err != nil {
				return err
			}
		}
		written = append(written, targetPath)
		if opts.OnEntry != nil {
			opts.OnEntry(targetPath)
		}
		return nil
	}

	if err := (archives.Zip{}).Extract(ctx, f, handler); err != nil {
		logger.Debug("Extraction stopped", logger.Fields{"archive": archivePath, "written": len(written), "error": err})
		return written, err
	}
	logger.Debug("Extracted archive", logger.Fields{"archive": archivePath, "dest": destDir, "files": len(written)})
	return written, nil
}

// ExtractFile extracts the entry with exactly the given name to destPath.
// An existing destPath is kept unless overwrite is set.
func (e *Extractor) ExtractFile(ctx context.Context, archivePath, entry, destPath string, overwrite bool) error {
	if !overwrite && fsutil.Exists(destPath) {
		return nil
	}
	if !fs.ValidPath(entry) {
		return fmt.Errorf("%w: %s", errors.ErrEntryNotFound, entry)
	}

	fsys, closeFS, err := openFS(ctx, archivePath)
	if err != nil {
		return err
	}
	defer closeFS()

	info, err := fs.Stat(fsys, entry)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s in %s", errors.ErrEntryNotFound, entry, archivePath)
	}
	return writeEntry(func() (fs.File, error) { return fsys.Open(entry) }, entry, destPath)
}

// Contents lists the file entries of an archive in sorted order.
func (e *Extractor) Contents(ctx context.Context, archivePath string) ([]string, error) {
	fsys, closeFS, err := openFS(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	defer closeFS()

	var names []string
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive %s: %w", archivePath, err)
	}
	sort.Strings(names)
	return names, nil
}

// targetFor maps an archive path to a location below destDir and refuses
// names that would escape it.
func targetFor(destDir, path string) (string, error) {
	local := filepath.FromSlash(path)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: entry %s escapes destination", errors.ErrInvalidPath, path)
	}
	return filepath.Join(destDir, local), nil
}

// writeEntry copies one entry into a temporary sibling of targetPath and
// renames it into place, so an interrupted write never leaves a partial file.
func writeEntry(open func() (fs.File, error), path, targetPath string) error {
	srcFile, err := open()
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(targetPath), "."+filepath.Base(targetPath)+".part-*")
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, srcFile); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to copy file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, fsutil.FileModeDefault); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions for %s: %w", targetPath, err)
	}
	if err := os.Rename(tmpName, targetPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", targetPath, err)
	}
	return nil
}
