package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
)

const DefaultMaxImageBytes = 5 << 20

// decodeImage parses a base64 data URI ("data:image/png;base64,...").
// An empty string means no image.
func decodeImage(uri string, maxBytes int) (*app.ImageUpload, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errs.Validation("image must be a base64 data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errs.Validation("image must be a base64 data URI")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return nil, errs.Validation("image exceeds %d bytes", maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errs.Validation("image is not valid base64")
	}
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) > maxBytes {
		return nil, errs.Validation("image exceeds %d bytes", maxBytes)
	}

	// trust the bytes, not the declared type
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errs.Validation("unsupported image type")
	}
	return &app.ImageUpload{Data: data, ContentType: contentType}, nil
}
