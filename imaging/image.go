// Package imaging holds the tensor image payload preprocessor units exchange
// with a graph host, plus the pixel operations the pack's nodes are built
// from. An Image is a batched float32 NHWC tensor with values in [0,1], the
// host's IMAGE convention; masks are the same shape with a single channel.
package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Image is a batch of frames sharing one backing buffer in NHWC layout.
type Image struct {
	Batch    int
	Height   int
	Width    int
	Channels int
	Pix      []float32
}

// New allocates a zeroed image tensor.
func New(batch, height, width, channels int) *Image {
	return &Image{
		Batch:    batch,
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float32, batch*height*width*channels),
	}
}

func (m *Image) index(b, y, x, c int) int {
	return ((b*m.Height+y)*m.Width+x)*m.Channels + c
}

func (m *Image) At(b, y, x, c int) float32 {
	return m.Pix[m.index(b, y, x, c)]
}

func (m *Image) Set(b, y, x, c int, v float32) {
	m.Pix[m.index(b, y, x, c)] = v
}

// Frame returns a single-frame view sharing the backing buffer. Mutating the
// view mutates the parent.
func (m *Image) Frame(b int) *Image {
	size := m.Height * m.Width * m.Channels
	return &Image{
		Batch:    1,
		Height:   m.Height,
		Width:    m.Width,
		Channels: m.Channels,
		Pix:      m.Pix[b*size : (b+1)*size],
	}
}

func (m *Image) Clone() *Image {
	out := &Image{
		Batch:    m.Batch,
		Height:   m.Height,
		Width:    m.Width,
		Channels: m.Channels,
		Pix:      make([]float32, len(m.Pix)),
	}
	copy(out.Pix, m.Pix)
	return out
}

func (m *Image) String() string {
	return fmt.Sprintf("Image[%d,%d,%d,%d]", m.Batch, m.Height, m.Width, m.Channels)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FromImage converts a decoded Go image into a single-frame 3 channel tensor.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := New(1, h, w, 3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			out.Pix[i] = float32(r) / 65535.0
			out.Pix[i+1] = float32(g) / 65535.0
			out.Pix[i+2] = float32(b) / 65535.0
			i += 3
		}
	}
	return out
}

// ToImage converts one frame back to an 8 bit image. Single channel frames
// broadcast to gray, extra channels beyond the third are dropped.
func (m *Image) ToImage(frame int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			var r, g, b float32
			if m.Channels == 1 {
				v := m.At(frame, y, x, 0)
				r, g, b = v, v, v
			} else {
				r = m.At(frame, y, x, 0)
				g = m.At(frame, y, x, 1)
				b = m.At(frame, y, x, 2)
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(clamp01(r)*255 + 0.5),
				G: uint8(clamp01(g)*255 + 0.5),
				B: uint8(clamp01(b)*255 + 0.5),
				A: 255,
			})
		}
	}
	return out
}

// Gray returns a 3 channel copy with every channel set to the frame's
// luminance.
func (m *Image) Gray() *Image {
	out := New(m.Batch, m.Height, m.Width, 3)
	for b := 0; b < m.Batch; b++ {
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				v := m.Luminance(b, y, x)
				out.Set(b, y, x, 0, v)
				out.Set(b, y, x, 1, v)
				out.Set(b, y, x, 2, v)
			}
		}
	}
	return out
}

// Luminance is the Rec.601 luma of one pixel.
func (m *Image) Luminance(b, y, x int) float32 {
	if m.Channels == 1 {
		return m.At(b, y, x, 0)
	}
	return 0.299*m.At(b, y, x, 0) + 0.587*m.At(b, y, x, 1) + 0.114*m.At(b, y, x, 2)
}

// Latent is the downscaled latent-space shape carried by LATENT payloads. The
// pixel-space generation size is 8x the latent size.
type Latent struct {
	Batch    int
	Channels int
	Height   int
	Width    int
}

// GenWidth is the pixel-space width this latent decodes to.
func (l Latent) GenWidth() int {
	return l.Width * 8
}

// GenHeight is the pixel-space height this latent decodes to.
func (l Latent) GenHeight() int {
	return l.Height * 8
}
