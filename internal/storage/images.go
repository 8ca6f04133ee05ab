// Package storage keeps proof-of-delivery images on the local filesystem
// under a fixed naming convention: invoice_{stopID}_{uuid}_img{n}.jpg.
// Deletion is pattern-matched against that convention, so clearing a stop's
// images is idempotent.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type ImageStore struct {
	Dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{Dir: dir}, nil
}

// fileName builds the canonical proof-image name for a stop. batch keeps the
// files of one upload together; n is the image's position within it.
func fileName(stopID uint, batch string, n int) string {
	return fmt.Sprintf("invoice_%d_%s_img%d.jpg", stopID, batch, n)
}

// pattern matches every stored image belonging to the stop, across batches.
func pattern(stopID uint) string {
	return fmt.Sprintf("invoice_%d_*_img*.jpg", stopID)
}

// SaveBatch stores the uploaded files for a stop and returns the stored
// filenames. Files within a batch share a uuid segment.
func (s *ImageStore) SaveBatch(stopID uint, files []*multipart.FileHeader) ([]string, error) {
	batch := uuid.NewString()
	var saved []string
	for i, fh := range files {
		name := fileName(stopID, batch, i+1)
		if err := s.saveOne(fh, name); err != nil {
			return saved, err
		}
		saved = append(saved, name)
	}
	return saved, nil
}

func (s *ImageStore) saveOne(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Clear removes every image stored for the stop and returns how many files
// were deleted. Missing files are not an error.
func (s *ImageStore) Clear(stopID uint) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, pattern(stopID)))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// List returns the stored image filenames for a stop.
func (s *ImageStore) List(stopID uint) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, pattern(stopID)))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names, nil
}
