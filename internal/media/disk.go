package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskBackend stores files in a local directory. Keys map to paths below
// Root and URLs are root-relative, so Root is expected to be served at "/".
type DiskBackend struct {
	Root string
}

// NewDiskBackend creates the upload directory below root if needed.
func NewDiskBackend(root string) (*DiskBackend, error) {
	if err := os.MkdirAll(filepath.Join(root, Prefix), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskBackend{Root: root}, nil
}

func (d *DiskBackend) path(key string) string {
	return filepath.Join(d.Root, filepath.FromSlash(key))
}

// Put writes the file via a temp file and rename so readers never see a
// partial upload.
func (d *DiskBackend) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := d.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Delete removes the file. A missing file is not an error.
func (d *DiskBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(d.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns the root-relative path for key.
func (d *DiskBackend) URL(key string) string {
	return "/" + strings.TrimLeft(key, "/")
}

// Exists reports whether key is present on disk.
func (d *DiskBackend) Exists(key string) bool {
	_, err := os.Stat(d.path(key))
	return err == nil
}
