package media

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/webp"
)

// Format describes a recognised image encoding.
type Format struct {
	Name        string // as reported by image.DecodeConfig
	ContentType string
	Extensions  []string // accepted extensions, canonical first
}

var formats = map[string]Format{
	"png":  {Name: "png", ContentType: "image/png", Extensions: []string{".png"}},
	"jpeg": {Name: "jpeg", ContentType: "image/jpeg", Extensions: []string{".jpg", ".jpeg"}},
	"gif":  {Name: "gif", ContentType: "image/gif", Extensions: []string{".gif"}},
	"webp": {Name: "webp", ContentType: "image/webp", Extensions: []string{".webp"}},
}

// DetectImage decodes the header of data and returns its format. Anything
// that is not a png, jpeg, gif or webp image yields ErrNotImage.
func DetectImage(data []byte) (Format, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Format{}, ErrNotImage
	}
	f, ok := formats[name]
	if !ok || cfg.Width <= 0 || cfg.Height <= 0 {
		return Format{}, ErrNotImage
	}
	return f, nil
}

// Extension returns the canonical extension for the format.
func (f Format) Extension() string {
	return f.Extensions[0]
}

// extensionFor keeps the declared extension when it matches the detected
// format, so "photo.JPEG" stays ".jpeg", and otherwise falls back to the
// canonical one.
func (f Format) extensionFor(declared string) string {
	ext := strings.ToLower(filepath.Ext(declared))
	if slices.Contains(f.Extensions, ext) {
		return ext
	}
	return f.Extension()
}
