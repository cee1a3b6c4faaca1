// Package uploads stores captured camera frames on disk so operators can
// review what the matcher actually saw.
package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store writes captured images into a single flat directory.
type Store struct {
	dir string
}

// New creates the upload directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string {
	return s.dir
}

// SaveImage writes data as a new jpg file and returns its filename.
// The prefix records which workflow produced the image.
func (s *Store) SaveImage(data []byte, prefix string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}
	name := fmt.Sprintf("%s_%s_%s.jpg",
		sanitizePrefix(prefix),
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// List returns the filenames of all stored images.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Remove deletes a single stored image.
func (s *Store) Remove(name string) error {
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid image name %q", name)
	}
	return os.Remove(filepath.Join(s.dir, name))
}

func sanitizePrefix(prefix string) string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "capture"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, prefix)
}
