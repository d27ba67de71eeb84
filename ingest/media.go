package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidMediaPath is returned for names that escape the media directory.
var ErrInvalidMediaPath = errors.New("invalid media path")

// MediaDir stores original image and audio uploads.
type MediaDir struct {
	root string
}

// NewMediaDir creates the directory if needed.
func NewMediaDir(root string) (*MediaDir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &MediaDir{root: root}, nil
}

// Root returns the directory path.
func (m *MediaDir) Root() string {
	return m.root
}

// Save writes data under a collision-free name and returns that name relative to the root.
func (m *MediaDir) Save(filename string, data []byte) (string, error) {
	rel := uuid.NewString() + "_" + baseName(filename)
	if err := os.WriteFile(filepath.Join(m.root, rel), data, 0o644); err != nil {
		return "", fmt.Errorf("save media %s: %w", filename, err)
	}
	return rel, nil
}

// baseName strips any directory part from a client-supplied name. Browsers and
// Windows clients may send either separator, so both are cut regardless of OS.
func baseName(filename string) string {
	name := filename[strings.LastIndexAny(filename, `/\`)+1:]
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

// Remove deletes a saved file. Missing files are not an error.
func (m *MediaDir) Remove(rel string) error {
	path, err := m.Path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media %s: %w", rel, err)
	}
	return nil
}

// Path resolves rel inside the root.
func (m *MediaDir) Path(rel string) (string, error) {
	if rel == "" || strings.ContainsAny(rel, `/\`) || rel == "." || rel == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaPath, rel)
	}
	return filepath.Join(m.root, rel), nil
}

// Open opens a saved file for reading.
func (m *MediaDir) Open(rel string) (*os.File, error) {
	path, err := m.Path(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}
