package storage

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidFileType = errors.New("only jpg, jpeg, png and gif images are allowed")
)

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// File is a stored object. Key identifies it to Remove.
type File struct {
	URL string
	Key string
}

type Store interface {
	Store(ctx context.Context, fh *multipart.FileHeader) (File, error)
	Remove(ctx context.Context, key string) error
}

// ValidateImage checks size, extension and sniffed content of an upload.
func ValidateImage(fh *multipart.FileHeader, maxSize int64) error {
	if fh.Size == 0 {
		return ErrEmptyFile
	}
	if maxSize > 0 && fh.Size > maxSize {
		return ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	want, ok := allowedExt[ext]
	if !ok {
		return ErrInvalidFileType
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if mimeType != want {
		return ErrInvalidFileType
	}
	return nil
}

// IsValidationError reports whether err is caused by the upload itself.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyFile) || errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrInvalidFileType)
}
