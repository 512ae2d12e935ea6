package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidImageType = errors.New("invalid image type")

// fileTypeExt lists the accepted upload mimetypes. Anything else fails the
// request before a product document is touched.
var fileTypeExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Store persists an uploaded image and returns its public URL. Delete takes
// that URL back; it runs best-effort after product writes.
type Store interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

func ValidType(contentType string) bool {
	_, ok := fileTypeExt[contentType]
	return ok
}

// FileName derives the stored object name: the original base name with
// spaces joined by dashes, a uuid suffix, and the extension mapped from the
// mimetype.
func FileName(original, contentType string) (string, error) {
	ext, ok := fileTypeExt[contentType]
	if !ok {
		return "", ErrInvalidImageType
	}

	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Join(strings.Fields(base), "-")
	if base == "" || base == "." {
		base = "image"
	}

	return fmt.Sprintf("%s-%s.%s", base, uuid.NewString(), ext), nil
}
