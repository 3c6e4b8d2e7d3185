// Package filesystem backs shared.FileSystem with the os package.
package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem is the production shared.FileSystem: checkout checks, run roots and recipe scripts all go through it.
type OSFileSystem struct{}

func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// RemoveAll deletes a checkout tree.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Remove deletes a materialized recipe script.
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// Chmod marks recipe scripts executable.
func (OSFileSystem) Chmod(path string, permissions fs.FileMode) error {
	return os.Chmod(path, permissions)
}
