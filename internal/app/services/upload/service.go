package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("upload: unsupported content type")

// Uploader stores binary content and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Service stores media files (offering images, profile pictures) under
// per-user keys.
type Service struct {
	Store Uploader
}

func (s *Service) UploadImage(ctx context.Context, userID string, filename, contentType string, reader io.Reader) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedType
	}
	if e := strings.ToLower(path.Ext(filename)); e != "" {
		ext = e
	}
	key := fmt.Sprintf("media/%s/%d-%s%s", userID, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	return s.Store.Upload(ctx, key, reader, contentType)
}
