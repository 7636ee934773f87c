package rounding

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type fileRepo struct {
	mu  sync.Mutex
	dir string
}

// NewFileRepository stores each workspace as <dir>/<key>.json.
func NewFileRepository(dir string) WorkspaceRepository {
	return &fileRepo{dir: dir}
}

func (r *fileRepo) path(key string) string {
	return filepath.Join(r.dir, key+".json")
}

func (r *fileRepo) Load(_ context.Context, key string) ([]*Sheet, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace %s: %w", key, err)
	}
	return decodeWorkspace(data)
}

// Save writes to a temp file in the same directory and renames it over the
// previous blob, so readers never see a partial workspace.
func (r *fileRepo) Save(_ context.Context, key string, sheets []*Sheet) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := encodeWorkspace(sheets)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", r.dir, err)
	}
	tmp, err := os.CreateTemp(r.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write workspace %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close workspace %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return fmt.Errorf("replace workspace %s: %w", key, err)
	}
	return nil
}

func (r *fileRepo) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete workspace %s: %w", key, err)
	}
	return nil
}
