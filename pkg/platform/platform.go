package platform

import (
	"runtime"
	"strings"

	"github.com/hashicorp/go-version"
)

// Family groups operating systems by their default cache layout.
type Family int

const (
	FamilyOther Family = iota
	FamilyMac
	FamilyLinux
	FamilyWindows
	FamilyWindowsXP
)

var familyNames = map[Family]string{
	FamilyOther:     "other",
	FamilyMac:       "mac",
	FamilyLinux:     "linux",
	FamilyWindows:   "windows",
	FamilyWindowsXP: "windows-xp",
}

// cacheSubpaths maps each family to its default cache directory below the home directory.
// Families without an entry fall back to the system temp directory.
var cacheSubpaths = map[Family]string{
	FamilyMac:       MacCacheSubpath,
	FamilyLinux:     LinuxCacheSubpath,
	FamilyWindows:   WindowsCacheSubpath,
	FamilyWindowsXP: WindowsXPCacheSubpath,
}

// String returns the family name.
func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return familyNames[FamilyOther]
}

// IsWindows reports whether the family belongs to any Windows variant.
func (f Family) IsWindows() bool {
	return f == FamilyWindows || f == FamilyWindowsXP
}

// IsMac reports whether the family is the macOS family.
func (f Family) IsMac() bool {
	return f == FamilyMac
}

// Classify maps a GOOS value and an OS version string to a Family.
// On Windows the version may be a product name containing "xp" or an NT
// version number; anything below 6.0 is treated as the XP-era layout.
// An unparseable or empty version is treated as a modern Windows.
func Classify(goos, osVersion string) Family {
	switch strings.ToLower(goos) {
	case OSDarwin, OSIOS:
		return FamilyMac
	case OSLinux, OSAndroid:
		return FamilyLinux
	case OSWindows:
		if isLegacyWindows(osVersion) {
			return FamilyWindowsXP
		}
		return FamilyWindows
	default:
		return FamilyOther
	}
}

func isLegacyWindows(osVersion string) bool {
	osVersion = strings.TrimSpace(strings.ToLower(osVersion))
	if osVersion == "" {
		return false
	}
	if strings.Contains(osVersion, "xp") {
		return true
	}
	v, err := version.NewVersion(osVersion)
	if err != nil {
		return false
	}
	return v.LessThan(version.Must(version.NewVersion(windowsModernVersion)))
}

// Detect classifies the running host.
func Detect() Family {
	return Classify(runtime.GOOS, osVersion())
}

// DefaultCacheSubpath returns the cache directory for a family relative to
// the home directory, or false if the family has no home-relative default.
func DefaultCacheSubpath(f Family) (string, bool) {
	subpath, ok := cacheSubpaths[f]
	return subpath, ok
}
