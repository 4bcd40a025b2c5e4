// Package ospath converts between the plain and URI forms of resource paths
// and classifies paths that point into zip, jar and trz archives.
//
// All functions are pure string manipulation. Paths always use forward
// slashes once they have passed through any function in this package.
package ospath

import (
	"strings"

	"github.com/glorpus-work/osploader/pkg/platform"
)

// Archive markers and the descriptor extension associated with an archive.
const (
	ArchiveSeparator = "!/"
	XsetExtension    = ".xset"
	protocolMarker   = ":/"
)

// archiveExtensions are checked in this fixed order by SplitArchivePath.
var archiveExtensions = []string{".zip", ".jar", ".trz"}

// Style selects the file protocol form used for local paths.
type Style int

const (
	// StyleUnix prefixes local paths with "file://".
	StyleUnix Style = iota
	// StyleWindows prefixes local paths with "file:/".
	StyleWindows
	// StyleMac behaves like StyleUnix but normalises joined "file:/" paths to "file:///".
	StyleMac
)

// StyleFor returns the protocol style used on a platform family.
func StyleFor(f platform.Family) Style {
	switch {
	case f.IsWindows():
		return StyleWindows
	case f.IsMac():
		return StyleMac
	default:
		return StyleUnix
	}
}

var hostStyle = StyleFor(platform.Detect())

// HostStyle returns the style of the running host.
func HostStyle() Style {
	return hostStyle
}

func (s Style) fileProtocol() string {
	if s == StyleWindows {
		return "file:/"
	}
	return "file://"
}

// ForwardSlash replaces every backslash with a forward slash.
func ForwardSlash(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// Name returns the part of path after the last slash.
func Name(path string) string {
	path = ForwardSlash(path)
	return path[strings.LastIndex(path, "/")+1:]
}

// DirectoryPath returns the part of path before the last slash, or "" if there is none.
func DirectoryPath(path string) string {
	path = ForwardSlash(path)
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Extension returns the extension of the last path element without the dot.
// Hidden-file style names (".profile") and trailing dots have no extension.
func Extension(path string) string {
	path = ForwardSlash(path)
	i := strings.LastIndex(path, ".")
	if i > 0 && i < len(path)-1 && i > strings.LastIndex(path, "/") {
		return path[i+1:]
	}
	return ""
}

// StripExtension removes the extension, including its dot, from path.
func StripExtension(path string) string {
	ext := Extension(path)
	if ext == "" {
		return path
	}
	return path[:len(path)-len(ext)-1]
}

// HasProtocol reports whether path carries a protocol marker such as "http:/" or "file:/".
func HasProtocol(path string) bool {
	return strings.Contains(path, protocolMarker)
}

// IsAbsolute reports whether path starts at a root or carries a protocol.
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, "/") || HasProtocol(path)
}

// MentionsArchive reports whether path contains a zip, jar or trz extension anywhere.
// Such paths are never opened as plain files.
func MentionsArchive(path string) bool {
	for _, ext := range archiveExtensions {
		if strings.Contains(path, ext) {
			return true
		}
	}
	return false
}

// IsArchiveName reports whether path ends in a zip, jar or trz extension.
func IsArchiveName(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ToPlainForm strips a leading "jar:" and then "file:" protocol, drops the
// slash before a drive letter and decodes "%20" to a space.
// "%26" is left encoded even though callers may have produced it.
func ToPlainForm(uriPath string) string {
	path := strings.TrimPrefix(uriPath, "jar:")
	path = strings.TrimPrefix(path, "file:")
	if strings.HasPrefix(path, "/") && strings.Contains(path, ":") {
		path = path[1:]
	}
	return strings.ReplaceAll(path, "%20", " ")
}

// ToURIForm converts path to URI form using the host style.
func ToURIForm(path string) string {
	return hostStyle.ToURIForm(path)
}

// ToURIForm trims path, forward-slashes it, appends "/" to extensionless
// paths, escapes spaces and prefixes a file protocol unless path already
// starts with http:, https:, jar: or file:/.
func (s Style) ToURIForm(path string) string {
	path = ForwardSlash(strings.TrimSpace(path))
	if path == "" {
		return path
	}
	if Extension(path) == "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	path = strings.ReplaceAll(path, " ", "%20")
	for _, prefix := range []string{"http:", "https:", "jar:", "file:/"} {
		if strings.HasPrefix(path, prefix) {
			return path
		}
	}
	return s.fileProtocol() + path
}

// CollapseDotSegments removes every embedded "/./" segment.
func CollapseDotSegments(path string) string {
	for strings.Contains(path, "/./") {
		path = strings.ReplaceAll(path, "/./", "/")
	}
	return path
}

// ResolvePath resolves relative against base. Absolute relatives are
// returned unchanged and leading "../" segments consume base elements.
func ResolvePath(relative, base string) string {
	base = strings.TrimSuffix(ForwardSlash(base), "/")
	relative = ForwardSlash(relative)
	if IsAbsolute(relative) {
		return relative
	}
	for strings.HasPrefix(relative, "../") && base != "" {
		if !strings.Contains(base, "/") {
			base = "/" + base
		}
		relative = relative[3:]
		base = base[:strings.LastIndex(base, "/")]
	}
	relative = strings.TrimPrefix(relative, "./")
	if relative == "." {
		relative = ""
	}
	if base == "" {
		return relative
	}
	return base + "/" + relative
}

// Join combines a base path and a name using the host style.
func Join(base, name string) string {
	return hostStyle.Join(base, name)
}

// Join combines a base path and a name. A base ending in an archive
// extension gets a "!" so the result addresses an entry of that archive.
func (s Style) Join(base, name string) string {
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(base, ext) {
			base += "!"
			break
		}
	}
	path := ResolvePath(name, base)
	if s == StyleMac && strings.HasPrefix(path, "file:/") && !strings.HasPrefix(path, "file:///") {
		path = "file:///" + strings.TrimLeft(path[len("file:/"):], "/")
	}
	return path
}

// SplitArchivePath splits path into an archive base and an entry name.
//
// The first of ".zip!/", ".jar!/" and ".trz!/" found (case-insensitively,
// in that order) separates the two. A path that ends in an archive extension
// names the archive's descriptor entry "{name}.xset", and a path ending in
// ".xset" names itself inside the sibling ".zip". Any other path is not an
// archive path and ok is false.
func SplitArchivePath(path string) (base, entry string, ok bool) {
	lower := strings.ToLower(path)
	for _, ext := range archiveExtensions {
		if n := strings.Index(lower, ext+ArchiveSeparator); n >= 0 {
			return path[:n+len(ext)], path[n+len(ext)+len(ArchiveSeparator):], true
		}
	}
	if IsArchiveName(path) {
		return path, StripExtension(Name(path)) + XsetExtension, true
	}
	if strings.HasSuffix(lower, XsetExtension) {
		return path[:len(path)-len("xset")] + "zip", path, true
	}
	return "", "", false
}

// ArchiveEntryPath builds the "base!/entry" form of an archive entry.
func ArchiveEntryPath(base, entry string) string {
	return base + ArchiveSeparator + entry
}
