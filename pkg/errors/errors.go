package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to replace config file")
	ErrConfigFileChmod   = fmt.Errorf("failed to set config file permissions")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrConfigFileExists  = fmt.Errorf("config file already exists")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")

	// Path errors.
	ErrInvalidPath = fmt.Errorf("invalid path")

	// Resolution errors.
	ErrNotFound      = fmt.Errorf("resource not found")
	ErrEmptyResource = fmt.Errorf("resource is empty")
	ErrEntryNotFound = fmt.Errorf("archive entry not found")
	ErrNotArchive    = fmt.Errorf("path does not name an archive entry")
	ErrNotHTML       = fmt.Errorf("resource is not an HTML document")

	// Download errors.
	ErrDownloadFailed    = fmt.Errorf("download failed")
	ErrServerUnavailable = fmt.Errorf("server unavailable")
	ErrCanceled          = fmt.Errorf("operation canceled")

	// Cache errors.
	ErrCacheDirectory      = fmt.Errorf("cache directory cannot be empty")
	ErrCacheClear          = fmt.Errorf("failed to clear cache")
	ErrCacheInfo           = fmt.Errorf("failed to get cache info")
	ErrMigrationRejected   = fmt.Errorf("cache migration rejected")
	ErrMigrationIncomplete = fmt.Errorf("cache migration incomplete")
)

// NotFoundError reports a resolution miss together with every composed path
// that was tried.
type NotFoundError struct {
	Name     string
	Searched []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s [searched %s]", e.Name, strings.Join(e.Searched, ";"))
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
