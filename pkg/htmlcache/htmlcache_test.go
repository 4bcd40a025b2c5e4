package htmlcache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/htmlcache"
	"github.com/glorpus-work/osploader/pkg/resolver"
	"github.com/glorpus-work/osploader/test/testutil"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>
    Falling Ball
  </title>
  <link rel="icon" href="favicon.ico">
  <link rel="stylesheet" type="text/css" href="css/style.css">
</head>
<body>
  <img src="img/ball.png" alt="ball">
  <p>Drop it.</p>
  <img src="img/missing.png">
  <img src="img/ball.png">
</body>
</html>
`

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"page.html":     page,
		"plain.html":    "<html><body>old</body></html>",
		"css/style.css": "body { color: black; }",
		"img/ball.png":  "png bytes",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestTitleFromHTML(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
		found    bool
	}{
		{name: "trimmed title", code: page, expected: "Falling Ball", found: true},
		{name: "empty title", code: "<title></title>", expected: "", found: true},
		{name: "no title", code: "<html><body>x</body></html>"},
		{name: "empty code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := htmlcache.TitleFromHTML(tt.code)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, title)
		})
	}
}

func TestStylesheetFromHTML(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
		found    bool
	}{
		{name: "first stylesheet in head", code: page, expected: "css/style.css", found: true},
		{
			name:     "second stylesheet ignored",
			code:     `<head><link rel="stylesheet" href="a.css"><link rel="stylesheet" href="b.css"></head>`,
			expected: "a.css",
			found:    true,
		},
		{name: "no stylesheet link", code: `<head><link rel="icon" href="x.ico"></head>`},
		{name: "no head", code: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			css, ok := htmlcache.StylesheetFromHTML(tt.code)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, css)
		})
	}
}

func TestGetHTMLCode(t *testing.T) {
	srv := testutil.NewFileServer(t, writeSite(t))
	r := resolver.New(resolver.Config{CacheRoot: t.TempDir()})
	ctx := context.Background()

	code, err := htmlcache.GetHTMLCode(ctx, r, srv.URL+"/page.html")
	require.NoError(t, err)
	assert.Equal(t, page, code)

	_, err = htmlcache.GetHTMLCode(ctx, r, srv.URL+"/plain.html")
	require.ErrorIs(t, err, errors.ErrNotHTML)

	_, err = htmlcache.GetHTMLCode(ctx, r, srv.URL+"/missing.html")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestCopyToCache(t *testing.T) {
	srv := testutil.NewFileServer(t, writeSite(t))
	r := resolver.New(resolver.Config{CacheRoot: t.TempDir()})
	ctx := context.Background()

	target, err := htmlcache.CopyToCache(ctx, r, srv.URL+"/page.html")
	require.NoError(t, err)
	assert.Equal(t, r.Cache().AddressFor(srv.URL+"/page.html", ""), target)

	dir := filepath.Dir(target)
	assert.FileExists(t, filepath.Join(dir, "images", "ball.png"))
	assert.FileExists(t, filepath.Join(dir, "style.css"))
	assert.NoFileExists(t, filepath.Join(dir, "images", "missing.png"))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	code := string(data)
	assert.Contains(t, code, `<img src="images/ball.png" alt="ball">`)
	assert.Contains(t, code, `<img src="images/ball.png">`)
	assert.Contains(t, code, `<img src="img/missing.png">`)
	assert.Contains(t, code, `href="style.css"`)
	assert.Contains(t, code, "<p>Drop it.</p>")
	assert.Equal(t, 1, srv.Requests("/img/ball.png"))

	again, err := htmlcache.CopyToCache(ctx, r, target)
	require.NoError(t, err)
	assert.Equal(t, target, again, "a cached page is returned as is")
}

func TestCopyToCache_Missing(t *testing.T) {
	srv := testutil.NewFileServer(t, writeSite(t))
	r := resolver.New(resolver.Config{CacheRoot: t.TempDir()})

	_, err := htmlcache.CopyToCache(context.Background(), r, srv.URL+"/missing.html")
	require.ErrorIs(t, err, errors.ErrNotFound)
}
