package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		osVersion string
		expected  Family
	}{
		{name: "macOS", goos: "darwin", expected: FamilyMac},
		{name: "iOS shares mac layout", goos: "ios", expected: FamilyMac},
		{name: "linux", goos: "linux", expected: FamilyLinux},
		{name: "android", goos: "android", expected: FamilyLinux},
		{name: "windows 10", goos: "windows", osVersion: "10.0.19045", expected: FamilyWindows},
		{name: "windows vista", goos: "windows", osVersion: "6.0.6002", expected: FamilyWindows},
		{name: "windows xp by number", goos: "windows", osVersion: "5.1.2600", expected: FamilyWindowsXP},
		{name: "windows xp by name", goos: "windows", osVersion: "Windows XP", expected: FamilyWindowsXP},
		{name: "windows unknown version", goos: "windows", osVersion: "", expected: FamilyWindows},
		{name: "windows garbage version", goos: "windows", osVersion: "n/a", expected: FamilyWindows},
		{name: "upper case goos", goos: "LINUX", expected: FamilyLinux},
		{name: "freebsd", goos: "freebsd", expected: FamilyOther},
		{name: "plan9", goos: "plan9", expected: FamilyOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.goos, tt.osVersion))
		})
	}
}

func TestDefaultCacheSubpath(t *testing.T) {
	tests := []struct {
		family   Family
		expected string
		ok       bool
	}{
		{FamilyMac, "Library/Caches/OSP", true},
		{FamilyLinux, ".config/OSP/Cache", true},
		{FamilyWindows, "AppData/Local/OSP/Cache", true},
		{FamilyWindowsXP, "Local Settings/Application Data/OSP/Cache", true},
		{FamilyOther, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			subpath, ok := DefaultCacheSubpath(tt.family)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, subpath)
		})
	}
}

func TestDetect(t *testing.T) {
	family := Detect()
	switch runtime.GOOS {
	case OSLinux:
		assert.Equal(t, FamilyLinux, family)
	case OSDarwin:
		assert.Equal(t, FamilyMac, family)
	case OSWindows:
		assert.True(t, family.IsWindows())
	}
}

func TestFamilyString(t *testing.T) {
	assert.Equal(t, "windows-xp", FamilyWindowsXP.String())
	assert.Equal(t, "other", Family(99).String())
	assert.True(t, FamilyMac.IsMac())
	assert.False(t, FamilyLinux.IsWindows())
}
