// Package platform classifies the host operating system into the families
// that decide where the persistent resource cache lives by default.
package platform

// GOOS values the classifier distinguishes.
const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSDarwin represents the macOS operating system.
	OSDarwin = "darwin"
	// OSIOS represents Apple mobile targets, which share the macOS layout.
	OSIOS = "ios"
	// OSAndroid is Linux underneath.
	OSAndroid = "android"
)

// Default cache locations relative to the user's home directory.
const (
	WindowsXPCacheSubpath = "Local Settings/Application Data/OSP/Cache"
	WindowsCacheSubpath   = "AppData/Local/OSP/Cache"
	MacCacheSubpath       = "Library/Caches/OSP"
	LinuxCacheSubpath     = ".config/OSP/Cache"
)

// windowsModernVersion is the first Windows NT version that uses the
// AppData/Local profile layout.
const windowsModernVersion = "6.0"
