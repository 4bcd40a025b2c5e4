package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/osploader/pkg/archive"
	"github.com/glorpus-work/osploader/pkg/errors"
	"github.com/glorpus-work/osploader/pkg/ospath"
)

// StreamOpener opens HTTP(S) URLs, entries of local archives ("base!/entry")
// and local files.
type StreamOpener struct {
	client    *http.Client
	userAgent string
}

// NewStreamOpener creates an opener that sends userAgent with HTTP requests.
func NewStreamOpener(client *http.Client, userAgent string) *StreamOpener {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &StreamOpener{client: client, userAgent: userAgent}
}

// Open implements Opener.
func (o *StreamOpener) Open(ctx context.Context, uriPath string) (io.ReadCloser, error) {
	if IsRemote(uriPath) {
		resp, err := doRequest(ctx, o.client, o.userAgent, uriPath)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}

	plain := localPath(uriPath)
	if strings.Contains(plain, ospath.ArchiveSeparator) {
		base, entry, ok := ospath.SplitArchivePath(plain)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrNotArchive, plain)
		}
		h, err := archive.OpenHandle(base)
		if err != nil {
			return nil, err
		}
		e, found := h.Find(entry)
		if !found {
			return nil, fmt.Errorf("%w: %s in %s", errors.ErrEntryNotFound, entry, base)
		}
		return h.Open(e)
	}

	f, err := os.Open(plain)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", plain)
	}
	return f, nil
}

// localPath converts a file URI or plain path to a cleaned local path.
func localPath(uriPath string) string {
	return filepath.Clean(filepath.FromSlash(ospath.ToPlainForm(uriPath)))
}

// IsRemote reports whether path is an http or https URL.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:")
}

func doRequest(ctx context.Context, client *http.Client, userAgent, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, errors.ErrDownloadFailed)
	}
	return resp, nil
}
