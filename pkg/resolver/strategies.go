package resolver

import (
	"context"
	"io"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/archive"
	"github.com/glorpus-work/osploader/pkg/download"
	"github.com/glorpus-work/osploader/pkg/fsutil"
	"github.com/glorpus-work/osploader/pkg/ospath"
	"github.com/glorpus-work/osploader/pkg/resource"
)

// fileResource opens path as a local file. Paths mentioning an archive are
// always left to the archive strategy.
func (l *lookup) fileResource(p string) *resource.Resource {
	if ospath.MentionsArchive(p) {
		return nil
	}
	res, err := resource.NewFile(l.ctx, filepath.FromSlash(p))
	if err != nil {
		return nil
	}
	if strings.HasSuffix(p, "xset") {
		l.r.setXsetArchive("")
	}
	logger.Debug("File: " + res.Path())
	return res
}

// urlResource opens path as a URL. Relative paths are resolved against the
// document base and then the code base when those are configured.
func (l *lookup) urlResource(p string) *resource.Resource {
	r := l.r
	if !l.opts.AllowArchiveURLs && ospath.MentionsArchive(p) {
		return nil
	}

	var res *resource.Resource
	switch {
	case ospath.HasProtocol(p):
		res = l.openURL(ospath.ToURIForm(p))
	case r.documentBase != "" && !strings.HasPrefix(p, "/"):
		if u, ok := resolveReference(r.documentBase, p); ok {
			res = l.openURL(u)
		}
		if res == nil && r.codeBase != "" && r.codeBase != ospath.DirectoryPath(r.documentBase)+"/" {
			if u, ok := resolveReference(r.codeBase, p); ok {
				res = l.openURL(u)
			}
		}
	}
	if res == nil {
		return nil
	}
	if strings.HasSuffix(p, ospath.XsetExtension) {
		r.setXsetArchive("")
	}
	logger.Debug("URL: " + res.Path())
	return res
}

func (l *lookup) openURL(u string) *resource.Resource {
	open := func(ctx context.Context) (io.ReadCloser, error) {
		return l.r.urls.Open(ctx, u)
	}
	res, err := resource.New(l.ctx, u, resource.KindURL, open)
	if err != nil {
		return nil
	}
	return res
}

func resolveReference(base, ref string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return b.ResolveReference(r).String(), true
}

// archiveResource resolves path as an archive entry. A remote archive is
// downloaded into the cache first. Entries missing from the named archive
// are looked up in the archive of the current xset and then in the launch
// archive.
func (l *lookup) archiveResource(p string) *resource.Resource {
	r := l.r
	p = ospath.ToPlainForm(p)
	base, entry, ok := ospath.SplitArchivePath(p)
	if !ok {
		base, entry = "", p
	}

	if ok {
		if download.IsRemote(base) {
			local, err := r.fetcher.FetchToCache(l.ctx, base, ospath.Name(base))
			if err != nil {
				return nil
			}
			base = local
		}
		base = ospath.ForwardSlash(filepath.Clean(filepath.FromSlash(base)))
		p = ospath.ArchiveEntryPath(base, entry)
	}

	handle, found, hit := l.findEntry(base, entry)
	if !hit {
		if xset := r.currentXsetArchive(); xset != "" {
			handle, found, hit = l.findEntry(xset, entry)
		}
	}
	if !hit && r.launchArchive != "" {
		handle, found, hit = l.findEntry(r.launchArchive, entry)
	}
	if !hit {
		return nil
	}

	archivePath := handle.Path()
	for _, ext := range r.extractExtensions() {
		if strings.HasSuffix(found.Name, ext) {
			return l.extractedResource(archivePath, entry)
		}
	}

	location := ospath.ArchiveEntryPath(ospath.ForwardSlash(archivePath), found.Name)
	open := func(context.Context) (io.ReadCloser, error) {
		return handle.Open(found)
	}
	res, err := resource.New(l.ctx, location, resource.KindArchive, open)
	if err != nil || !strings.Contains(res.Path(), ospath.ForwardSlash(p)) {
		return nil
	}
	if strings.HasSuffix(entry, "xset") {
		r.setXsetArchive(archivePath)
	}
	logger.Debug("Zip: " + res.Path())
	return res
}

// findEntry looks entry up in the pooled handle of the local archive base.
func (l *lookup) findEntry(base, entry string) (*archive.Handle, archive.Entry, bool) {
	if base == "" || !ospath.IsArchiveName(base) {
		return nil, archive.Entry{}, false
	}
	local := filepath.FromSlash(ospath.ToPlainForm(base))
	if !fsutil.Exists(local) {
		return nil, archive.Entry{}, false
	}
	h, err := l.r.pool.GetOrCreate(l.ctx, local)
	if err != nil {
		return nil, archive.Entry{}, false
	}
	found, ok := h.Find(entry)
	if !ok {
		return nil, archive.Entry{}, false
	}
	return h, found, true
}

// extractedResource extracts entry next to the archive once and returns it as a file.
func (l *lookup) extractedResource(archivePath, entry string) *resource.Resource {
	target := entry
	if parent := filepath.Dir(archivePath); parent != "" && !strings.HasPrefix(entry, "/") && !ospath.HasProtocol(entry) {
		target = ospath.ResolvePath(entry, ospath.ForwardSlash(parent))
	}
	target = filepath.FromSlash(target)
	if !fsutil.Exists(target) {
		if err := l.r.extractor.ExtractFile(l.ctx, archivePath, entry, target, false); err != nil {
			logger.Debug("Extraction failed", logger.Fields{"archive": archivePath, "entry": entry, "error": err})
			return nil
		}
	}
	return l.fileResource(ospath.ForwardSlash(target))
}

// scopedResource looks path up in the call's scope, first at the scope
// root and then below the scope package. Only the first match is
// considered; it is rejected when it lies in a runtime library directory
// or when its location does not contain the requested name.
func (l *lookup) scopedResource(p string) *resource.Resource {
	scope := l.opts.Scope
	if scope == nil {
		scope = l.r.defaultScope
	}
	if scope == nil || scope.FS == nil || ospath.HasProtocol(p) {
		return nil
	}

	original := p
	name := p
	if i := strings.Index(name, ".jar"+ospath.ArchiveSeparator); i >= 0 {
		name = name[i+len(".jar"+ospath.ArchiveSeparator):]
	}

	candidates := []string{strings.TrimPrefix(name, "/")}
	if scope.Package != "" {
		candidates = append(candidates, path.Join(scope.Package, name))
	}

	for _, candidate := range candidates {
		if !fs.ValidPath(candidate) {
			continue
		}
		open := func(context.Context) (io.ReadCloser, error) {
			return scope.FS.Open(candidate)
		}
		location := candidate
		if scope.Location != "" {
			location = strings.TrimSuffix(ospath.ForwardSlash(scope.Location), "/") + "/" + candidate
		}
		res, err := resource.New(l.ctx, location, resource.KindScoped, open)
		if err != nil {
			continue
		}

		loc := res.Path()
		if strings.Contains(loc, "/jre") && strings.Contains(loc, "/lib") {
			return nil
		}
		if !strings.Contains(ospath.ToPlainForm(loc), original) && !strings.Contains(loc, original) {
			return nil
		}
		if strings.HasSuffix(name, "xset") {
			l.r.setXsetArchive("")
		}
		logger.Debug("Scoped resource: " + loc)
		return res
	}
	return nil
}
