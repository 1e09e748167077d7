// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var _ FileStorage = (*LocalStorage)(nil)

// LocalStorage writes files into a directory served under baseURL
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage returns a local storage rooted at dir
func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the storage root
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Upload(_ context.Context, b []byte, name, _ string) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return s.baseURL + "/" + name, nil
}

func (s *LocalStorage) Delete(_ context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
