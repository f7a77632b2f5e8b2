package cart

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var safeCartID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStore writes one JSON file per cart under dir. Writes go through a temp
// file and rename so a crash never leaves a half-written snapshot.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cart file store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(cartID string) (string, error) {
	if !safeCartID.MatchString(cartID) {
		return "", fmt.Errorf("invalid cart id %q", cartID)
	}
	return filepath.Join(s.dir, cartID+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, cartID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(cartID)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	return raw, err
}

func (s *FileStore) Save(ctx context.Context, cartID string, snapshot []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(cartID)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, cartID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(snapshot); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) Delete(ctx context.Context, cartID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(cartID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
