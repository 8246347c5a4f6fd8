package storage

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

var _ Slot = (*File)(nil)

// File is a Slot storing one file per key under a directory. It exists for
// single-node deployments without Redis; writes go through a temp file and
// rename so a crash never leaves a half-written value behind.
type File struct {
	dir string
}

// NewFile returns a Slot rooted at dir, creating the directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &File{dir: dir}, nil
}

// path maps a key to a filename. Keys are hex-encoded so separators and
// other unsafe characters cannot escape the directory.
func (f *File) path(key string) string {
	return filepath.Join(f.dir, hex.EncodeToString([]byte(key))+".json")
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read slot %q", key)
	}
	return data, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	dst := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".slot-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	name := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrapf(err, "write slot %q", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "close slot %q", key)
	}
	if err := os.Rename(name, dst); err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "rename slot %q", key)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "delete slot %q", key)
	}
	return nil
}
