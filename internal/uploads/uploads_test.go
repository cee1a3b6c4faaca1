package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveImage(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	name, err := s.SaveImage([]byte("fake jpeg bytes"), "register")
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}
	if !strings.HasPrefix(name, "register_") {
		t.Errorf("Expected register_ prefix, got %q", name)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("Expected .jpg suffix, got %q", name)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	if err != nil {
		t.Fatalf("Failed to read saved image: %v", err)
	}
	if string(data) != "fake jpeg bytes" {
		t.Error("Saved content does not match")
	}
}

func TestSaveImageEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := s.SaveImage(nil, "register"); err == nil {
		t.Error("Expected error for empty data")
	}
}

func TestSaveImageSanitizesPrefix(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	name, err := s.SaveImage([]byte("x"), "../Weird Prefix")
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}
	if strings.ContainsAny(name, "/\\ ") {
		t.Errorf("Prefix not sanitized: %q", name)
	}

	name, err = s.SaveImage([]byte("x"), "")
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}
	if !strings.HasPrefix(name, "capture_") {
		t.Errorf("Expected capture_ fallback prefix, got %q", name)
	}
}

func TestListAndRemove(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("Expected empty store, got %d files", len(names))
	}

	saved, err := s.SaveImage([]byte("x"), "att")
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}

	names, err = s.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(names) != 1 || names[0] != saved {
		t.Fatalf("Expected [%s], got %v", saved, names)
	}

	if err := s.Remove(saved); err != nil {
		t.Fatalf("Failed to remove: %v", err)
	}
	names, _ = s.List()
	if len(names) != 0 {
		t.Errorf("Expected empty store after remove, got %v", names)
	}
}

func TestRemoveRejectsPathTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := s.Remove("../outside.jpg"); err == nil {
		t.Error("Expected error for path traversal")
	}
}
