package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var _ Backend = (*FileBackend)(nil)

// FileBackend stores each value in its own file inside a directory.
// The file name is the escaped key with a ".json" extension.
type FileBackend struct {
	fs  afero.Fs
	dir string
}

// NewFileBackend creates a new FileBackend and the directory if it doesn't exist yet.
// Use afero.NewOsFs() for the real filesystem.
func NewFileBackend(fs afero.Fs, dir string) (*FileBackend, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("Couldn't create storage directory: %w", err)
	}
	return &FileBackend{
		fs:  fs,
		dir: dir,
	}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, url.PathEscape(key)+".json")
}

// Get implements the Backend interface.
func (b *FileBackend) Get(key string) ([]byte, bool, error) {
	data, err := afero.ReadFile(b.fs, b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	} else if err != nil {
		return nil, true, err
	}
	return data, true, nil
}

// Set implements the Backend interface.
// The value is written to a temporary file first and then renamed, so a failed write doesn't corrupt a previous value.
func (b *FileBackend) Set(key string, value []byte) error {
	target := b.path(key)
	tmp := target + ".tmp"
	if err := afero.WriteFile(b.fs, tmp, value, 0o644); err != nil {
		return err
	}
	return b.fs.Rename(tmp, target)
}

// Delete implements the Backend interface.
func (b *FileBackend) Delete(key string) error {
	err := b.fs.Remove(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
