// Package storagetest provides multipart fixtures and an in-memory store.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"staybook/internal/storage"
)

var (
	PNG  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	JPEG = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 64)...)
	GIF  = append([]byte("GIF89a"), bytes.Repeat([]byte{0}, 64)...)
)

// FileHeaders builds real multipart headers for field from name -> content.
func FileHeaders(t *testing.T, field string, files ...NamedFile) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File[field]
}

type NamedFile struct {
	Name    string
	Content []byte
}

// MemoryStore keeps stored keys in memory. FailAfter > 0 makes the
// FailAfter-th Store call fail.
type MemoryStore struct {
	mu        sync.Mutex
	n         int
	FailAfter int
	Files     map[string]string
	Removed   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Files: map[string]string{}}
}

func (s *MemoryStore) Store(ctx context.Context, fh *multipart.FileHeader) (storage.File, error) {
	if err := storage.ValidateImage(fh, 10<<20); err != nil {
		return storage.File{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	if s.FailAfter > 0 && s.n >= s.FailAfter {
		return storage.File{}, errors.New("storage unavailable")
	}
	key := fmt.Sprintf("property-images/%d-%s", s.n, fh.Filename)
	s.Files[key] = fh.Filename
	return storage.File{URL: "http://cdn.test/" + key, Key: key}, nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, key)
	s.Removed = append(s.Removed, key)
	return nil
}

// Count is the number of files currently held.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Files)
}
