package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/glorpus-work/osploader/internal/logger"
	"github.com/glorpus-work/osploader/pkg/errors"
)

// Operation renders cache administration results as human-readable messages.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clear clears the host directories and, if search is set, the search records.
func (op *Operation) Clear(search bool) (string, error) {
	logger.Debug("Clearing cache", logger.Fields{"search": search})

	result, err := op.manager.Clear(search)
	if err != nil {
		return "", fmt.Errorf("failed to clear cache: %w", err)
	}

	var msg string
	if result.TotalFreed > 0 {
		msg = fmt.Sprintf("Successfully cleared cache. Freed %s of disk space.", formatBytes(result.TotalFreed))
		if result.HostsFreed > 0 {
			msg += fmt.Sprintf("\n- Hosts: %s (%d directories)", formatBytes(result.HostsFreed), result.Hosts)
		}
		if result.SearchFreed > 0 {
			msg += fmt.Sprintf("\n- Search: %s", formatBytes(result.SearchFreed))
		}
	} else {
		msg = "No files were removed from the cache."
	}
	return msg, nil
}

// GetInfo returns a summary of the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	directory := info.Directory
	if directory == "" {
		directory = "(not set)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `Cache Information:
  Directory:    %s
  Total Size:   %s (%d files)
  Search:       %s (%d files)
  Hosts:        %d`,
		directory,
		formatBytes(info.TotalSize),
		info.TotalFiles,
		formatBytes(info.SearchSize),
		info.SearchFiles,
		len(info.Hosts),
	)
	for _, host := range info.Hosts {
		fmt.Fprintf(&sb, "\n    %-28s %s (%d files)", host.Name, formatBytes(host.Size), host.Files)
	}
	return sb.String(), nil
}

// GetDirectory returns the cache directory path.
func (op *Operation) GetDirectory() string {
	return op.manager.Root()
}

// SetDirectory moves the cache to dir and describes the migration.
func (op *Operation) SetDirectory(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		return "", errors.ErrCacheDirectory
	}

	logger.Debug("Setting cache directory", logger.Fields{"directory": dir})
	result, err := op.manager.SetRoot(ctx, dir)
	if result == nil {
		return "", err
	}

	msg := fmt.Sprintf("Cache directory is now %s.", result.To)
	if len(result.Copied) > 0 {
		msg += fmt.Sprintf("\n- Moved: %s", strings.Join(result.Copied, ", "))
	}
	if len(result.Failed) > 0 {
		msg += fmt.Sprintf("\n- Left in %s: %s", result.From, strings.Join(result.Failed, ", "))
	}
	return msg, err
}

// Address returns the cache location of urlPath.
func (op *Operation) Address(urlPath, name string) string {
	return op.manager.AddressFor(urlPath, name)
}

func formatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}
