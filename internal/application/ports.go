package application

import (
	"context"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
)

// ImageUpload is raw image data on its way to the media store.
type ImageUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// MediaStore hosts images and hands back stable URLs.
type MediaStore interface {
	Upload(ctx context.Context, folder string, img ImageUpload) (string, error)
	Delete(ctx context.Context, url string) error
}

// UserIndexer keeps a searchable copy of public profile fields.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// JobPublisher enqueues background jobs such as outgoing email.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
