package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// unsafeKeyChars matches characters not allowed in a key's file name.
var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// File stores each key as its own file under a directory.
type File struct {
	dir string
}

// NewFile creates dir (0700) if needed and returns a file-backed store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	_ = os.Chmod(dir, 0700)
	return &File{dir: dir}, nil
}

// path maps a key to its file; keys are sanitized so they cannot escape dir.
func (f *File) path(key string) string {
	name := unsafeKeyChars.ReplaceAllString(key, "_")
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return filepath.Join(f.dir, name+".json")
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Set writes to a temp file and renames it over the target.
func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := f.path(key)

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	_ = os.Chmod(tmpName, 0600)

	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}

func (f *File) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
