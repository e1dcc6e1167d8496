// Package localfs stores export files in a directory on the device.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.FileSink = (*Sink)(nil)

// Sink writes export files into a directory.
type Sink struct {
	dir string
}

// DefaultDir returns ~/.pricecollect/exports.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pricecollect", "exports"), nil
}

// New creates a sink writing into dir. An empty dir uses DefaultDir.
func New(dir string) (*Sink, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// Dir returns the target directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Save writes data to dir/name and returns the full path.
// The file appears complete or not at all.
func (s *Sink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid export file name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	dest := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", err
	}
	return dest, nil
}
