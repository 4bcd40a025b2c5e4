package resource

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/osploader/pkg/errors"
)

func staticOpener(content []byte) OpenFunc {
	return func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		open    OpenFunc
		wantErr error
	}{
		{name: "non-empty stream", open: staticOpener([]byte("x"))},
		{name: "empty stream", open: staticOpener(nil), wantErr: errors.ErrEmptyResource},
		{
			name: "open failure",
			open: func(context.Context) (io.ReadCloser, error) {
				return nil, os.ErrNotExist
			},
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(ctx, "mem://a", KindURL, tt.open)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, tt.wantErr))
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "mem://a", res.Path())
			assert.Equal(t, KindURL, res.Kind())
			assert.Empty(t, res.File())
		})
	}
}

func TestNew_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ctx, "mem://a", KindURL, staticOpener([]byte("x")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	full := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(full, []byte("hello"), 0o644))
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	res, err := NewFile(ctx, full)
	require.NoError(t, err)
	assert.Equal(t, full, res.File())
	assert.Equal(t, KindFile, res.Kind())
	assert.True(t, strings.HasSuffix(res.Path(), "/data.txt"))
	assert.True(t, strings.HasPrefix(res.URL(), "file:"))

	_, err = NewFile(ctx, empty)
	assert.ErrorIs(t, err, errors.ErrEmptyResource)

	_, err = NewFile(ctx, filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestResource_BytesAndText(t *testing.T) {
	ctx := context.Background()

	var opens int
	var mu sync.Mutex
	open := func(context.Context) (io.ReadCloser, error) {
		mu.Lock()
		opens++
		mu.Unlock()
		return io.NopCloser(strings.NewReader("line one\nline two")), nil
	}

	res, err := New(ctx, "mem://text", KindURL, open)
	require.NoError(t, err)

	text, err := res.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)

	data, err := res.Bytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(data))

	// one probe plus one full read
	assert.Equal(t, 2, opens)
}

func TestResource_FailedReadIsNotKept(t *testing.T) {
	res, err := New(context.Background(), "mem://retry", KindURL, staticOpener([]byte("payload")))
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = res.Bytes(canceled)
	require.ErrorIs(t, err, context.Canceled)
	_, err = res.Image(canceled)
	require.ErrorIs(t, err, context.Canceled)

	data, err := res.Bytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	text, err := res.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "payload", text)
}

func TestResource_ImageRetriesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, png.Encode(&buf, img))

	var mu sync.Mutex
	fail := true
	open := func(context.Context) (io.ReadCloser, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, os.ErrDeadlineExceeded
		}
		return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
	}
	res := &Resource{path: "mem://img.png", kind: KindURL, open: open}

	_, err := res.Image(context.Background())
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)

	mu.Lock()
	fail = false
	mu.Unlock()

	decoded, err := res.Image(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())
}

func TestResource_TextStripsBOM(t *testing.T) {
	ctx := context.Background()

	utf8BOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("abc")...)
	res, err := New(ctx, "mem://bom8", KindURL, staticOpener(utf8BOM))
	require.NoError(t, err)
	text, err := res.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", text)

	utf16LE := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	res, err = New(ctx, "mem://bom16", KindURL, staticOpener(utf16LE))
	require.NoError(t, err)
	text, err = res.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestResource_Image(t *testing.T) {
	ctx := context.Background()

	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	res, err := New(ctx, "mem://img.png", KindArchive, staticOpener(buf.Bytes()))
	require.NoError(t, err)

	decoded, err := res.Image(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())
	assert.Equal(t, 3, decoded.Bounds().Dy())

	contentType, err := res.ContentType(ctx)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	notImage, err := New(ctx, "mem://a.txt", KindURL, staticOpener([]byte("plain")))
	require.NoError(t, err)
	_, err = notImage.Image(ctx)
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "url", KindURL.String())
	assert.Equal(t, "archive", KindArchive.String())
	assert.Equal(t, "scoped", KindScoped.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
