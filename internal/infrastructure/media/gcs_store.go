package media

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

var ErrForeignURL = errors.New("url does not belong to the configured bucket")

// GCSStore keeps images in a Google Cloud Storage bucket under <folder>/<uuid><ext>.
type GCSStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{Client: client, Bucket: bucket}
}

var _ app.MediaStore = (*GCSStore)(nil)

func extFor(img app.ImageUpload) string {
	if ext := strings.ToLower(path.Ext(img.Filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(img.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func (s *GCSStore) Upload(ctx context.Context, folder string, img app.ImageUpload) (string, error) {
	if s.Client == nil || s.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	objectPath := path.Join(folder, uuid.NewString()+extFor(img))
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, img.ContentType, bytes.NewReader(img.Data))
}

// Delete removes the object behind url. URLs outside the bucket are refused.
func (s *GCSStore) Delete(ctx context.Context, url string) error {
	if s.Client == nil || s.Bucket == "" {
		return errors.New("gcs not configured")
	}
	objectPath, ok := helpers.ObjectPathFromURL(s.Bucket, url)
	if !ok {
		return ErrForeignURL
	}
	return helpers.DeleteObject(ctx, s.Client, s.Bucket, objectPath)
}
