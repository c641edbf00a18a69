package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("Invalid inputs passed. Please check your data")
	ErrTooLarge        = errors.New("Invalid inputs passed. Please check your data")
)

// Only these image types are accepted; anything else is rejected before
// any bytes touch disk.
var mimeExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Store stages uploaded images on local disk under a fixed directory.
// It is deliberately not coupled to the transactional resource store;
// callers compensate with Remove when a request fails after staging.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, maxBytes: 500_000}
}

// Save validates and writes the uploaded image, returning the stored
// path (relative, usable as a static URL suffix and as a blob ref).
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	ext, ok := mimeExt[fh.Header.Get("Content-Type")]
	if !ok {
		return "", ErrUnsupportedType
	}
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := readAtMost(file, s.maxBytes)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare upload dir: %w", err)
	}
	dst := filepath.Join(s.dir, uuid.New().String()+"."+ext)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("store uploaded file: %w", err)
	}
	return dst, nil
}

// Remove deletes a previously stored file.
func (s *Store) Remove(path string) error {
	return os.Remove(path)
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, ErrTooLarge
	}
	return b, nil
}
