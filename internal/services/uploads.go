package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/harentsoaR/diagnosia-api/internal/metrics"
)

var ErrUploadsDisabled = errors.New("uploads are not configured")

// FileUploader stores a file and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// Upload stores file as a raw asset. The "upload" delivery type is publicly
// readable, which is what report links need.
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		ResourceType: "raw",
		Type:         "upload",
	})
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

type UploadService struct {
	uploader FileUploader
}

func NewUploadService(u FileUploader) *UploadService {
	return &UploadService{uploader: u}
}

func (s *UploadService) Upload(ctx context.Context, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadsDisabled
	}
	url, err := s.uploader.Upload(ctx, file)
	metrics.ExternalCalls.WithLabelValues("cloudinary", metrics.Outcome(err)).Inc()
	return url, err
}
