// Package images resizes and re-encodes photos so stored files and embedded
// document images stay bounded in size.
package images

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Upload bounds applied before a photo is written to storage.
const (
	UploadMaxWidth  = 1920
	UploadMaxHeight = 1080
	UploadQuality   = 80
)

// Embed bounds applied before a photo is placed into a document.
const (
	EmbedMaxWidth = 500
	EmbedQuality  = 60
)

// Compress fits an image within maxWidth x maxHeight, preserving aspect
// ratio, and re-encodes it as JPEG at the given quality. Images already
// within bounds are only re-encoded.
func Compress(data []byte, maxWidth, maxHeight, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxWidth || bounds.Dy() > maxHeight {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

// Downscale resizes an image to at most maxWidth wide, height proportional,
// and re-encodes it as JPEG at the given quality. Narrower images keep
// their dimensions.
func Downscale(data []byte, maxWidth, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}
