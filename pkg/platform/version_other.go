//go:build !windows

package platform

func osVersion() string {
	return ""
}
