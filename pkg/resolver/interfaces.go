//go:generate mockgen -destination=./mocks/resolver.go . URLOpener,ArchiveFetcher

package resolver

import (
	"context"
	"io"
)

// URLOpener opens the stream behind a URL in URI form (http, https or file).
type URLOpener interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// ArchiveFetcher makes a remote archive available locally, normally by
// downloading it into the persistent cache, and returns the local path.
type ArchiveFetcher interface {
	FetchToCache(ctx context.Context, urlPath, name string) (string, error)
}
