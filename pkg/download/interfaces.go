//go:generate mockgen -destination=./mocks/download.go . Opener

package download

import (
	"context"
	"io"
	"time"
)

// Opener opens a byte stream for a path in URI form.
// The resolver supplies one so downloads read through the same strategies
// as resolution; StreamOpener is used when none is given.
type Opener interface {
	Open(ctx context.Context, uriPath string) (io.ReadCloser, error)
}

// Options control the behavior of the Downloader.
type Options struct {
	// Opener supplies source streams. Nil selects a StreamOpener.
	Opener Opener
	// UserAgent is sent with every HTTP request.
	UserAgent string
	// ProbeURL is the known-good address used to tell "server unavailable"
	// apart from a failed download.
	ProbeURL string
	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration
}
