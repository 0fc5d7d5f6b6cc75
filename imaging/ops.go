package imaging

import (
	"image"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
)

// Scale resizes every frame to width x height with Catmull-Rom resampling.
// Returns the receiver unchanged when the size already matches.
func Scale(m *Image, width, height int) *Image {
	return scaleWith(m, width, height, xdraw.CatmullRom)
}

// scaleBilinear matches the host's ImageBatch upscale filter.
func scaleBilinear(m *Image, width, height int) *Image {
	return scaleWith(m, width, height, xdraw.BiLinear)
}

func scaleWith(m *Image, width, height int, scaler xdraw.Scaler) *Image {
	if m.Width == width && m.Height == height {
		return m
	}
	out := New(m.Batch, height, width, m.Channels)
	for b := 0; b < m.Batch; b++ {
		src := frameToNRGBA64(m, b)
		dst := image.NewNRGBA64(image.Rect(0, 0, width, height))
		scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		nrgba64ToFrame(dst, out, b)
	}
	return out
}

func frameToNRGBA64(m *Image, frame int) *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			base := (y*m.Width + x) * 8
			var r, g, b float32
			if m.Channels == 1 {
				v := m.At(frame, y, x, 0)
				r, g, b = v, v, v
			} else {
				r = m.At(frame, y, x, 0)
				g = m.At(frame, y, x, 1)
				b = m.At(frame, y, x, 2)
			}
			putU16 := func(off int, v float32) {
				u := uint16(clamp01(v)*65535 + 0.5)
				out.Pix[base+off] = uint8(u >> 8)
				out.Pix[base+off+1] = uint8(u)
			}
			putU16(0, r)
			putU16(2, g)
			putU16(4, b)
			out.Pix[base+6] = 0xff
			out.Pix[base+7] = 0xff
		}
	}
	return out
}

func nrgba64ToFrame(src *image.NRGBA64, dst *Image, frame int) {
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			base := (y*dst.Width + x) * 8
			get := func(off int) float32 {
				u := uint16(src.Pix[base+off])<<8 | uint16(src.Pix[base+off+1])
				return float32(u) / 65535.0
			}
			if dst.Channels == 1 {
				dst.Set(frame, y, x, 0, get(0))
				continue
			}
			dst.Set(frame, y, x, 0, get(0))
			dst.Set(frame, y, x, 1, get(2))
			dst.Set(frame, y, x, 2, get(4))
		}
	}
}

// ScaleShortSide resizes so the shorter side equals resolution, preserving
// aspect. resolution <= 0 leaves the image untouched.
func ScaleShortSide(m *Image, resolution int) *Image {
	if resolution <= 0 {
		return m
	}
	short := m.Height
	if m.Width < short {
		short = m.Width
	}
	if short == resolution {
		return m
	}
	k := float64(resolution) / float64(short)
	w := int(math.Round(float64(m.Width) * k))
	h := int(math.Round(float64(m.Height) * k))
	return Scale(m, w, h)
}

// Batch concatenates two tensors along the batch axis. When frame sizes
// differ the second is bilinearly rescaled to the first's size, the host's
// ImageBatch behavior.
func Batch(first, second *Image) *Image {
	if first.Height != second.Height || first.Width != second.Width {
		second = scaleBilinear(second, first.Width, first.Height)
	}
	out := New(first.Batch+second.Batch, first.Height, first.Width, first.Channels)
	copy(out.Pix, first.Pix)
	copy(out.Pix[len(first.Pix):], second.Pix)
	return out
}

// CenterCrop cuts a width x height window from the middle of every frame.
func CenterCrop(m *Image, width, height int) *Image {
	x0 := (m.Width - width) / 2
	y0 := (m.Height - height) / 2
	out := New(m.Batch, height, width, m.Channels)
	for b := 0; b < m.Batch; b++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				for c := 0; c < m.Channels; c++ {
					out.Set(b, y, x, c, m.At(b, y0+y, x0+x, c))
				}
			}
		}
	}
	return out
}

// PadTo centers every frame on a width x height canvas filled with the given
// color.
func PadTo(m *Image, width, height int, fill [3]float32) *Image {
	out := New(m.Batch, height, width, m.Channels)
	for b := 0; b < m.Batch; b++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				for c := 0; c < m.Channels; c++ {
					v := fill[c%3]
					out.Set(b, y, x, c, v)
				}
			}
		}
	}
	x0 := (width - m.Width) / 2
	y0 := (height - m.Height) / 2
	for b := 0; b < m.Batch; b++ {
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				for c := 0; c < m.Channels; c++ {
					out.Set(b, y0+y, x0+x, c, m.At(b, y, x, c))
				}
			}
		}
	}
	return out
}

// BorderMedian returns the per-channel median of a frame's border pixels,
// used as the fill color when a hint image is padded out to the generation
// size.
func BorderMedian(m *Image, frame int) [3]float32 {
	var samples [3][]float32
	add := func(y, x int) {
		for c := 0; c < 3; c++ {
			ch := c
			if m.Channels == 1 {
				ch = 0
			}
			samples[c] = append(samples[c], m.At(frame, y, x, ch))
		}
	}
	for x := 0; x < m.Width; x++ {
		add(0, x)
		add(m.Height-1, x)
	}
	for y := 1; y < m.Height-1; y++ {
		add(y, 0)
		add(y, m.Width-1)
	}
	var out [3]float32
	for c := 0; c < 3; c++ {
		s := samples[c]
		sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
		out[c] = s[len(s)/2]
	}
	return out
}

// RoundToMultiple snaps v to the nearest positive multiple of m.
func RoundToMultiple(v, m int) int {
	if m <= 1 {
		return v
	}
	r := int(math.Round(float64(v)/float64(m))) * m
	if r < m {
		r = m
	}
	return r
}
