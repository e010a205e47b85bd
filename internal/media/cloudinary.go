package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"brainscore-quiz-service/internal/domain"
)

// CloudinaryUploader sends unsigned uploads to Cloudinary using an upload preset.
type CloudinaryUploader struct {
	preset string
	cld    *cloudinary.Cloudinary
}

// NewCloudinaryUploader needs only the cloud name and an unsigned upload preset; no API secret is kept.
func NewCloudinaryUploader(cloudName, preset string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, "", "")
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &CloudinaryUploader{preset: preset, cld: cld}, nil
}

// SetUploadPrefix points uploads at another API host, e.g. a proxy.
func (u *CloudinaryUploader) SetUploadPrefix(prefix string) {
	u.cld.Upload.Config.API.UploadPrefix = strings.TrimRight(prefix, "/")
}

func resourceType(contentType string) string {
	if strings.HasPrefix(contentType, "video") {
		return "video"
	}
	return "image"
}

// Upload streams f to Cloudinary and returns the secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, f File, progress ProgressFunc) (string, error) {
	body := newProgressReader(f.Body, f.Size, progress)

	resp, err := u.cld.Upload.UnsignedUpload(ctx, body, u.preset, uploader.UploadParams{
		ResourceType: resourceType(f.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrUploadFailed, resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("%w: response without secure_url", domain.ErrUploadFailed)
	}
	body.done()
	return resp.SecureURL, nil
}
