package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	folder  string
	prefix  string
	maxSize int64
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder, prefix string, maxSize int64) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder, prefix: prefix, maxSize: maxSize}, nil
}

func (s *CloudinaryStore) Store(ctx context.Context, fh *multipart.FileHeader) (File, error) {
	if err := ValidateImage(fh, s.maxSize); err != nil {
		return File{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	resp, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: s.prefix + "-" + uuid.NewString(),
	})
	if err != nil {
		return File{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return File{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return File{URL: resp.SecureURL, Key: resp.PublicID}, nil
}

func (s *CloudinaryStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}
