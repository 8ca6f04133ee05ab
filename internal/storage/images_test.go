package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestClearMatchesOnlyOwnStop(t *testing.T) {
	dir := t.TempDir()
	s, err := NewImageStore(dir)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	writeImage(t, dir, "invoice_12_abc_img1.jpg")
	writeImage(t, dir, "invoice_12_abc_img2.jpg")
	writeImage(t, dir, "invoice_120_abc_img1.jpg") // different stop, shared prefix digits
	writeImage(t, dir, "invoice_9_zzz_img1.jpg")

	removed, err := s.Clear(12)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("Clear removed %d, want 2", removed)
	}

	left, err := s.List(120)
	if err != nil || len(left) != 1 {
		t.Fatalf("stop 120 images = %v (%v), want 1 survivor", left, err)
	}
	if got, _ := s.List(12); len(got) != 0 {
		t.Fatalf("stop 12 images after clear = %v, want none", got)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s, err := NewImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	for i := 0; i < 2; i++ {
		removed, err := s.Clear(44)
		if err != nil {
			t.Fatalf("Clear #%d: %v", i+1, err)
		}
		if removed != 0 {
			t.Fatalf("Clear #%d removed %d, want 0", i+1, removed)
		}
	}
}

func TestFileNaming(t *testing.T) {
	got := fileName(7, "d1f0", 3)
	if got != "invoice_7_d1f0_img3.jpg" {
		t.Fatalf("fileName = %q", got)
	}
	if pattern(7) != "invoice_7_*_img*.jpg" {
		t.Fatalf("pattern = %q", pattern(7))
	}
}
