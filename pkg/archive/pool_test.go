package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/osploader/test/testutil"
)

func readEntry(t *testing.T, h *Handle, name string) string {
	t.Helper()
	entry, ok := h.Find(name)
	require.True(t, ok, name)
	rc, err := h.Open(entry)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestOpenHandle(t *testing.T) {
	tempDir := t.TempDir()
	big := strings.Repeat("compressible ", 500)
	archivePath := testutil.WriteZip(t, filepath.Join(tempDir, "lib.jar"),
		testutil.ZipEntry{Name: "org/"},
		testutil.ZipEntry{Name: "org/a.txt", Content: big},
		testutil.ZipEntry{Name: "org/b.txt", Content: "stored", Store: true},
		testutil.ZipEntry{Name: "lib.xset", Content: "<xset/>"},
	)

	h, err := OpenHandle(archivePath)
	require.NoError(t, err)
	assert.Equal(t, archivePath, h.Path())
	assert.Equal(t, []string{"lib.xset", "org/a.txt", "org/b.txt"}, h.Names())

	assert.Equal(t, big, readEntry(t, h, "org/a.txt"))
	assert.Equal(t, "stored", readEntry(t, h, "org/b.txt"))
	assert.Equal(t, "<xset/>", readEntry(t, h, "lib.xset"))

	entry, ok := h.Find("org/a.txt")
	require.True(t, ok)
	assert.Equal(t, int64(len(big)), entry.Size)
	assert.Less(t, entry.CompressedSize, entry.Size)

	_, ok = h.Find("org/")
	assert.False(t, ok, "directories are not indexed")
	_, ok = h.Find("missing.txt")
	assert.False(t, ok)
}

func TestOpenHandle_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))
	_, err := OpenHandle(path)
	assert.Error(t, err)
}

func TestPool_GetOrCreate(t *testing.T) {
	tempDir := t.TempDir()
	archivePath := testutil.WriteZip(t, filepath.Join(tempDir, "a.zip"),
		testutil.ZipEntry{Name: "one.txt", Content: "1"},
	)
	ctx := context.Background()
	pool := NewPool()

	h1, err := pool.GetOrCreate(ctx, archivePath)
	require.NoError(t, err)
	h2, err := pool.GetOrCreate(ctx, filepath.Join(tempDir, ".", "a.zip"))
	require.NoError(t, err)
	assert.Same(t, h1, h2, "one handle per base path")
	assert.Equal(t, 1, pool.Len())

	// replaced archive is only seen after Invalidate
	testutil.WriteZip(t, archivePath, testutil.ZipEntry{Name: "two.txt", Content: "2"})
	h3, err := pool.GetOrCreate(ctx, archivePath)
	require.NoError(t, err)
	_, ok := h3.Find("two.txt")
	assert.False(t, ok)

	pool.Invalidate(archivePath)
	assert.Equal(t, 0, pool.Len())
	h4, err := pool.GetOrCreate(ctx, archivePath)
	require.NoError(t, err)
	_, ok = h4.Find("two.txt")
	assert.True(t, ok)
}

func TestPool_PutReplaces(t *testing.T) {
	tempDir := t.TempDir()
	archivePath := testutil.WriteZip(t, filepath.Join(tempDir, "a.zip"),
		testutil.ZipEntry{Name: "one.txt", Content: "1"},
	)
	pool := NewPool()
	first, err := OpenHandle(archivePath)
	require.NoError(t, err)
	second, err := OpenHandle(archivePath)
	require.NoError(t, err)

	pool.Put(first)
	pool.Put(second)
	got, ok := pool.Get(archivePath)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, pool.Len())
}

func TestPool_ConcurrentGetOrCreate(t *testing.T) {
	tempDir := t.TempDir()
	archivePath := testutil.WriteZip(t, filepath.Join(tempDir, "a.zip"),
		testutil.ZipEntry{Name: "one.txt", Content: "1"},
	)
	pool := NewPool()

	var wg sync.WaitGroup
	handles := make([]*Handle, 20)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := pool.GetOrCreate(context.Background(), archivePath)
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
}

func TestPool_MissingArchive(t *testing.T) {
	pool := NewPool()
	_, err := pool.GetOrCreate(context.Background(), filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)
	assert.Equal(t, 0, pool.Len())
}
