package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
)

// Decode reads a PNG, JPEG or WebP encoded image into a single-frame tensor.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// not a registered stdlib format, try webp
		wimg, werr := webp.Decode(bytes.NewReader(data))
		if werr != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		img = wimg
	}
	return FromImage(img), nil
}

// EncodePNG writes one frame as PNG.
func EncodePNG(w io.Writer, m *Image, frame int) error {
	return png.Encode(w, m.ToImage(frame))
}

// EncodeJPEG writes one frame as JPEG at the given quality.
func EncodeJPEG(w io.Writer, m *Image, frame int, quality int) error {
	return jpeg.Encode(w, m.ToImage(frame), &jpeg.Options{Quality: quality})
}

// EncodeWebP writes one frame as lossy WebP at the given quality.
func EncodeWebP(w io.Writer, m *Image, frame int, quality float32) error {
	return webp.Encode(w, m.ToImage(frame), &webp.Options{Quality: quality})
}
