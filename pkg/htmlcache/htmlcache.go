// Package htmlcache reads HTML pages through a resolver and copies them,
// together with their images and stylesheet, into the persistent cache.
package htmlcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/cache"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/fsutil"
	"github.com/glorpus-work/osploader/pkg/ospath"
	"github.com/glorpus-work/osploader/pkg/resolver"
	"github.com/glorpus-work/osploader/pkg/resource"
)

const (
	doctypePrefix = "<!DOCTYPE html"
	imagesDir     = "images"
)

// Source is the part of a resolver that page copies need.
type Source interface {
	Resolve(ctx context.Context, name string, opts resolver.Options) (*resource.Resource, error)
	Download(ctx context.Context, urlPath, target string, overwrite bool) (string, error)
	Cache() cache.Manager
}

var pageOptions = resolver.Options{AllowArchiveURLs: true}

// GetHTMLCode returns the text of the page at path. Only documents that
// start with an HTML5 doctype are accepted.
func GetHTMLCode(ctx context.Context, src Source, path string) (string, error) {
	res, err := src.Resolve(ctx, path, pageOptions)
	if err != nil {
		return "", err
	}
	code, err := res.Text(ctx)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(strings.TrimSpace(code), doctypePrefix) {
		return "", fmt.Errorf("%w: %s", errors.ErrNotHTML, path)
	}
	return code, nil
}

// TitleFromHTML returns the trimmed text of the first title element.
func TitleFromHTML(code string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(code))
	if err != nil {
		return "", false
	}
	title := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Title
	})
	if title == nil {
		return "", false
	}
	var sb strings.Builder
	for c := title.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String()), true
}

// StylesheetFromHTML returns the href of the first stylesheet link in the page head.
func StylesheetFromHTML(code string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(code))
	if err != nil {
		return "", false
	}
	head := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Head
	})
	if head == nil {
		return "", false
	}
	link := findFirst(head, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Link {
			return false
		}
		for _, rel := range strings.Fields(attr(n, "rel")) {
			if strings.EqualFold(rel, "stylesheet") {
				return attr(n, "href") != ""
			}
		}
		return false
	})
	if link == nil {
		return "", false
	}
	return attr(link, "href"), true
}

// imageSources lists the distinct src attributes of img elements in document order.
func imageSources(code string) []string {
	z := html.NewTokenizer(strings.NewReader(code))
	seen := make(map[string]struct{})
	var sources []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sources
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Img {
				continue
			}
			for _, a := range tok.Attr {
				if a.Key != "src" || a.Val == "" {
					continue
				}
				if _, ok := seen[a.Val]; !ok {
					seen[a.Val] = struct{}{}
					sources = append(sources, a.Val)
				}
			}
		}
	}
}

// CopyToCache copies the page at htmlPath into its cache address. Images
// are downloaded into an images directory beside the page and a relative
// stylesheet next to it; the page's references are rewritten to the
// copies. Existing copies are not replaced, and a page that already lives
// in the cache is returned as is.
func CopyToCache(ctx context.Context, src Source, htmlPath string) (string, error) {
	cm := src.Cache()
	res, err := src.Resolve(ctx, htmlPath, pageOptions)
	if err != nil {
		return "", err
	}
	if res.File() != "" && cm.IsCachePath(htmlPath) {
		return res.File(), nil
	}
	code, err := res.Text(ctx)
	if err != nil {
		return "", err
	}

	basePath := ospath.DirectoryPath(htmlPath)
	target := cm.AddressFor(htmlPath, "")
	targetDir := filepath.Dir(target)
	if err := fsutil.EnsureDir(targetDir); err != nil {
		return "", fmt.Errorf("failed to create cache directory %s: %w", targetDir, err)
	}

	for _, ref := range imageSources(code) {
		imageTarget, err := src.Download(ctx, ospath.ResolvePath(ref, basePath), filepath.Join(targetDir, imagesDir, ospath.Name(ref)), false)
		if err != nil {
			logger.Debug("Image not copied", logger.Fields{"page": htmlPath, "image": ref, "error": err})
			continue
		}
		rel, err := filepath.Rel(targetDir, imageTarget)
		if err != nil {
			continue
		}
		if rel = filepath.ToSlash(rel); rel != ref {
			code = strings.ReplaceAll(code, `src="`+ref+`"`, `src="`+rel+`"`)
		}
	}

	if css, ok := StylesheetFromHTML(code); ok && !strings.HasPrefix(css, "http:") && !strings.HasPrefix(css, "https:") {
		cssName := ospath.Name(css)
		if _, err := src.Download(ctx, ospath.ResolvePath(css, basePath), filepath.Join(targetDir, cssName), false); err != nil {
			logger.Debug("Stylesheet not copied", logger.Fields{"page": htmlPath, "stylesheet": css, "error": err})
		} else if cssName != css {
			code = strings.ReplaceAll(code, css, cssName)
		}
	}

	if err := os.WriteFile(target, []byte(code), fsutil.FileModeDefault); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	logger.Debug("Copied page to cache", logger.Fields{"page": htmlPath, "target": target})
	return target, nil
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
