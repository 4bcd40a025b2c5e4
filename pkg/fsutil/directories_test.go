package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		cleanup     func(t *testing.T, path string)
		expectError bool
	}{
		{
			name: "creates new directory",
			setup: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "newdir")
				return dir
			},
			cleanup:     func(t *testing.T, path string) {},
			expectError: false,
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "parent", "child", "nested")
				return dir
			},
			cleanup:     func(t *testing.T, path string) {},
			expectError: false,
		},
		{
			name: "succeeds when directory already exists",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				return dir
			},
			cleanup:     func(t *testing.T, path string) {},
			expectError: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			path := testCase.setup(t)
			if testCase.cleanup != nil {
				defer testCase.cleanup(t, path)
			}

			err := EnsureDir(path)

			if testCase.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.DirExists(t, path)

				// Verify permissions (only check on Unix-like systems)
				if runtime.GOOS != "windows" {
					info, err := os.Stat(path)
					require.NoError(t, err)
					assert.Equal(t, os.FileMode(DirModeDefault), info.Mode().Perm())
				}
			}
		})
	}
}

func TestEnsureFileDir(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		expectError bool
	}{
		{
			name: "creates parent directory for file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "parent", "file.txt")
			},
			expectError: false,
		},
		{
			name: "creates nested parent directories for file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nested", "parent", "file.txt")
			},
			expectError: false,
		},
		{
			name: "succeeds when parent directory exists",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				return filepath.Join(dir, "file.txt")
			},
			expectError: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			filePath := testCase.setup(t)
			dir := filepath.Dir(filePath)

			err := EnsureFileDir(filePath)

			if testCase.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.DirExists(t, dir)

				// Verify permissions (only check on Unix-like systems)
				if runtime.GOOS != "windows" {
					info, err := os.Stat(dir)
					require.NoError(t, err)
					assert.Equal(t, os.FileMode(DirModeDefault), info.Mode().Perm())
				}
			}
		})
	}
}

func TestEnsureDir_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission test on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("Skipping permission test as root")
	}

	// Create a directory we can't write to
	tempDir := t.TempDir()
	readonlyDir := filepath.Join(tempDir, "readonly")
	err := os.Mkdir(readonlyDir, 0o555) // Read and execute, no write
	require.NoError(t, err)

	// Try to create a subdirectory in the read-only directory
	targetDir := filepath.Join(readonlyDir, "shouldfail")
	err = EnsureDir(targetDir)

	// Verify we got a permission error
	assert.Error(t, err)
	assert.False(t, os.IsExist(err), "Should not be an 'already exists' error")
}

func TestEnsureFileDir_EmptyPath(t *testing.T) {
	tests := []struct {
		name        string
		filePath    string
		expectError bool
	}{
		{
			name:        "empty path",
			filePath:    "",
			expectError: false, // Empty path is handled gracefully
		},
		{
			name:        "root path",
			filePath:    "/",
			expectError: false, // Root path is valid
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureFileDir(tt.filePath)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsWithin(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{name: "root itself", candidate: root, want: true},
		{name: "direct child", candidate: filepath.Join(root, "child"), want: true},
		{name: "nested child", candidate: filepath.Join(root, "a", "b"), want: true},
		{name: "sibling", candidate: filepath.Join(filepath.Dir(root), "other"), want: false},
		{name: "sibling with shared prefix", candidate: root + "-copy", want: false},
		{name: "parent", candidate: filepath.Dir(root), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithin(root, tt.candidate))
		})
	}
}

func TestIsWritableDir(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, IsWritableDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")

	assert.False(t, IsWritableDir(filepath.Join(dir, "missing")))

	if runtime.GOOS != "windows" && os.Geteuid() != 0 {
		readonly := filepath.Join(dir, "readonly")
		require.NoError(t, os.Mkdir(readonly, 0o555))
		assert.False(t, IsWritableDir(readonly))
	}
}

func TestIsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, IsEmptyDir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644))
	assert.False(t, IsEmptyDir(dir))
	assert.False(t, IsEmptyDir(filepath.Join(dir, "missing")))
}

func TestDirStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("defgh"), 0o644))

	files, size, err := DirStats(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Equal(t, int64(8), size)

	files, size, err = DirStats(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, files)
	assert.Zero(t, size)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	assert.False(t, Exists(file))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.True(t, Exists(file))
	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
}
