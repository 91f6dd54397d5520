package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	domainproperties "staybook/internal/domain/properties"
)

var ErrUnsupportedPhotoType = errors.New("s3: unsupported photo content type")

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// PhotoUploader stores property photos under a per-property prefix and
// returns the public URL to attach to the aggregate.
type PhotoUploader struct {
	Uploader Uploader
}

func (p PhotoUploader) UploadPhoto(ctx context.Context, id domainproperties.PropertyID, reader io.Reader, contentType string) (string, error) {
	if p.Uploader == nil {
		return "", errors.New("s3: uploader is required")
	}
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedPhotoType
	}
	key := fmt.Sprintf("properties/%s/%s.%s", id, uuid.NewString(), ext)
	return p.Uploader.Upload(ctx, key, reader, contentType)
}
