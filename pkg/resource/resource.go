// Package resource defines the immutable handle returned for a resolved
// name and the in-memory cache that maps normalised paths to handles.
package resource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/ospath"
)

// Kind records which strategy produced a Resource.
type Kind int

const (
	KindFile Kind = iota
	KindURL
	KindArchive
	KindScoped
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindURL:
		return "url"
	case KindArchive:
		return "archive"
	case KindScoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// OpenFunc opens a fresh stream over the resource's bytes.
type OpenFunc func(ctx context.Context) (io.ReadCloser, error)

// Resource is a located, readable resource. It is never constructed unless
// its stream produced at least one byte.
type Resource struct {
	path string
	file string
	kind Kind
	open OpenFunc

	dataMu sync.Mutex
	data   []byte

	imageMu sync.Mutex
	img     image.Image
}

// New probes open for a first byte and wraps it in a Resource.
// A stream that opens but yields nothing is reported as ErrEmptyResource.
func New(ctx context.Context, path string, kind Kind, open OpenFunc) (*Resource, error) {
	if err := probe(ctx, open); err != nil {
		return nil, errors.Wrapf(err, "probe %s", path)
	}
	return &Resource{path: path, kind: kind, open: open}, nil
}

// NewFile wraps a readable local file.
func NewFile(ctx context.Context, path string) (*Resource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidPath, path)
	}
	open := func(context.Context) (io.ReadCloser, error) {
		return os.Open(abs)
	}
	res, err := New(ctx, ospath.ForwardSlash(abs), KindFile, open)
	if err != nil {
		return nil, err
	}
	res.file = abs
	return res, nil
}

func probe(ctx context.Context, open OpenFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rc, err := open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	var one [1]byte
	if _, err := io.ReadFull(rc, one[:]); err != nil {
		if err == io.EOF {
			return errors.ErrEmptyResource
		}
		return err
	}
	return nil
}

// Path returns the absolute location, forward-slashed.
func (r *Resource) Path() string {
	return r.path
}

// File returns the backing local file, or "" when the resource is not a plain file.
func (r *Resource) File() string {
	return r.file
}

// Kind returns the strategy that located the resource.
func (r *Resource) Kind() Kind {
	return r.kind
}

// URL returns the location in URI form.
func (r *Resource) URL() string {
	return ospath.ToURIForm(r.path)
}

func (r *Resource) String() string {
	return r.path
}

// Open returns a new stream over the resource's bytes. The caller closes it.
func (r *Resource) Open(ctx context.Context) (io.ReadCloser, error) {
	return r.open(ctx)
}

// Bytes reads the whole resource and keeps the content after the first
// successful read. Failed reads are not remembered.
func (r *Resource) Bytes(ctx context.Context) ([]byte, error) {
	r.dataMu.Lock()
	defer r.dataMu.Unlock()
	if r.data != nil {
		return r.data, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", r.path)
	}
	r.data = data
	return data, nil
}

// Text returns the content as a string. A UTF-8 or UTF-16 byte order mark
// selects the decoding; content without one is taken as UTF-8.
func (r *Resource) Text(ctx context.Context) (string, error) {
	data, err := r.Bytes(ctx)
	if err != nil {
		return "", err
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", errors.Wrapf(err, "decode %s", r.path)
	}
	return string(decoded), nil
}

// ContentType sniffs the MIME type from the resource's content.
func (r *Resource) ContentType(ctx context.Context) (string, error) {
	data, err := r.Bytes(ctx)
	if err != nil {
		return "", err
	}
	return mimetype.Detect(data).String(), nil
}

// Image decodes the content as a PNG, JPEG or GIF image. The first
// successfully decoded image is kept.
func (r *Resource) Image(ctx context.Context) (image.Image, error) {
	r.imageMu.Lock()
	defer r.imageMu.Unlock()
	if r.img != nil {
		return r.img, nil
	}

	data, err := r.Bytes(ctx)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", r.path)
	}
	r.img = img
	return img, nil
}
