package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore writes files below root/subdir and serves them from
// publicBase + "/" + subdir.
type LocalStore struct {
	root       string
	subdir     string
	prefix     string
	publicBase string
	maxSize    int64
}

func NewLocalStore(root, publicBase, subdir, prefix string, maxSize int64) *LocalStore {
	return &LocalStore{
		root:       root,
		subdir:     subdir,
		prefix:     prefix,
		publicBase: strings.TrimRight(publicBase, "/"),
		maxSize:    maxSize,
	}
}

func (s *LocalStore) Store(ctx context.Context, fh *multipart.FileHeader) (File, error) {
	if err := ValidateImage(fh, s.maxSize); err != nil {
		return File{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.root, s.subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return File{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%s-%d-%s%s", s.prefix, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	absPath := filepath.Join(dir, name)

	dst, err := os.Create(absPath)
	if err != nil {
		return File{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(absPath)
		return File{}, fmt.Errorf("failed to write file: %w", err)
	}

	key := path.Join(s.subdir, name)
	return File{URL: s.publicBase + "/" + key, Key: key}, nil
}

func (s *LocalStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
