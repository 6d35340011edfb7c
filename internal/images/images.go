// Package images turns admin gift image uploads into image URLs.
package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes bounds an upload when no limit is configured.
const DefaultMaxBytes int64 = 2 << 20

var (
	ErrTooLarge = errors.New("image too large")
	ErrNotImage = errors.New("file is not an image")
	ErrEmpty    = errors.New("empty image")
)

// Uploader stores an image and returns the URL to save on the gift.
type Uploader interface {
	Upload(ctx context.Context, img Image) (string, error)
}

// Image is a validated upload.
type Image struct {
	Data []byte
	MIME string // ex: image/png
	Ext  string // ex: .png
}

// PlaceholderURL returns the random stock image used when a gift is added
// without one.
func PlaceholderURL(now time.Time) string {
	return fmt.Sprintf("https://picsum.photos/400/400?random=%d", now.UnixNano())
}

// Read consumes at most maxBytes from r and checks the content is an image.
func Read(r io.Reader, maxBytes int64) (Image, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, ErrEmpty
	}
	if int64(len(data)) > maxBytes {
		return Image{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	return Image{
		Data: data,
		MIME: baseType(mt.String()),
		Ext:  mt.Extension(),
	}, nil
}

// Inline keeps images inside the catalogue record as data URIs.
type Inline struct{}

func (Inline) Upload(_ context.Context, img Image) (string, error) {
	return DataURI(img), nil
}

// DataURI encodes img as data:<mime>;base64,<payload>.
func DataURI(img Image) string {
	var b bytes.Buffer
	b.Grow(len(img.MIME) + 13 + base64.StdEncoding.EncodedLen(len(img.Data)))
	b.WriteString("data:")
	b.WriteString(img.MIME)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(img.Data))
	return b.String()
}

// baseType drops MIME parameters such as charset.
func baseType(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		return strings.TrimSpace(m[:i])
	}
	return m
}
