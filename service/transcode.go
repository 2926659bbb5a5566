// Package service contains the pipelines behind the route handlers
package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/gift"

	// Registered so image.Decode accepts the formats browsers upload
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	jpegQuality  = 90
	maxDimension = 4000
)

var ErrEmptyImage = errors.New("image buffer is empty")

// Transcode decodes an uploaded image and re-encodes it as JPEG at the
// fixed quality setting. Images wider or taller than maxDimension are
// scaled down first, keeping aspect ratio. The output format is always
// JPEG no matter what came in.
func Transcode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image, %w", err)
	}

	img = capSize(img)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image, %w", err)
	}

	return out.Bytes(), nil
}

func capSize(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if w <= maxDimension && h <= maxDimension {
		return img
	}

	g := gift.New(gift.ResizeToFit(maxDimension, maxDimension, gift.LanczosResampling))

	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, img)

	return dst
}
