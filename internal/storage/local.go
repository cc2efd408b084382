// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore implements BlobStore on a flat local directory. Used in
// development when no S3 endpoint is configured, and in tests.
type LocalStore struct {
	dir string
}

// NewLocal creates a local blob store rooted at dir, creating the
// directory if needed.
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage mkdir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// path maps a filename to a path under the store directory. Filenames
// are opaque keys; anything trying to escape the directory is rejected.
func (l *LocalStore) path(filename string) (string, error) {
	if filename == "" || strings.Contains(filename, "..") {
		return "", fmt.Errorf("local storage: invalid filename %q", filename)
	}
	return filepath.Join(l.dir, filepath.FromSlash(filename)), nil
}

// Put writes a blob, creating parent directories for prefixed keys
// (e.g. "thumbs/abc.jpg").
func (l *LocalStore) Put(_ context.Context, filename string, data []byte) error {
	p, err := l.path(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("local storage mkdir for %s: %w", filename, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("local storage write %s: %w", filename, err)
	}
	return nil
}

// Read returns a blob's contents.
func (l *LocalStore) Read(_ context.Context, filename string) ([]byte, error) {
	p, err := l.path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("local storage read %s: %w", filename, err)
	}
	return data, nil
}

// Delete removes a blob. Missing files are not an error.
func (l *LocalStore) Delete(_ context.Context, filename string) error {
	p, err := l.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local storage delete %s: %w", filename, err)
	}
	return nil
}

// Exists reports whether a blob is present.
func (l *LocalStore) Exists(_ context.Context, filename string) (bool, error) {
	p, err := l.path(filename)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("local storage stat %s: %w", filename, err)
	}
	return true, nil
}
