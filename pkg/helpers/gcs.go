package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com/"

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// UploadObject writes r to bucket/objectPath and returns its public URL.
// Object names are unique per upload, so an existing object is never
// overwritten and the content can be cached indefinitely.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	obj := client.Bucket(bucket).Object(objectPath).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=31536000, immutable"
	wc.ChunkSize = 0 // images are small; single request upload
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs write %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", objectPath, err)
	}
	return PublicURL(bucket, objectPath), nil
}

// DeleteObject removes bucket/objectPath. A missing object is not an error.
func DeleteObject(ctx context.Context, client *storage.Client, bucket, objectPath string) error {
	err := client.Bucket(bucket).Object(objectPath).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// PublicURL is the storage.googleapis.com URL of a publicly readable object.
func PublicURL(bucket, objectPath string) string {
	return gcsPublicHost + bucket + "/" + objectPath
}

// ObjectPathFromURL reverses PublicURL. ok is false when url does not point into bucket.
func ObjectPathFromURL(bucket, url string) (string, bool) {
	prefix := gcsPublicHost + bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, prefix)
	if p == "" {
		return "", false
	}
	return p, true
}
