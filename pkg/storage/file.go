package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
)

// FileStore keeps each index in its own file; the name is the path.
type FileStore struct{}

func NewFileStore() *FileStore {
	return &FileStore{}
}

// Put writes data to a temp file beside name and renames it into place, so
// readers never observe a half-written index. The parent directory must
// already exist.
func (s *FileStore) Put(_ context.Context, name string, data []byte) error {
	if name == "" {
		return apperrors.New(apperrors.ErrInvalidDestination, "empty output path")
	}
	dir := filepath.Dir(name)
	f, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "creating %s: %v", name, err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "writing %s: %v", name, err)
	}
	if err := f.Sync(); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "syncing %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "closing %s: %v", name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "setting mode on %s: %v", name, err)
	}
	if err := os.Rename(tmpPath, name); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "renaming into %s: %v", name, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Newf(apperrors.ErrNotFound, "index %q", name)
		}
		return nil, fmt.Errorf("reading index %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) Close() error {
	return nil
}
