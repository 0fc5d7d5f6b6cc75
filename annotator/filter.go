package annotator

import (
	"math"

	"github.com/rowanvale/auxpack/imaging"
)

// plane extracts a frame's luminance as a flat float32 buffer.
func plane(m *imaging.Image) []float32 {
	out := make([]float32, m.Height*m.Width)
	i := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out[i] = m.Luminance(0, y, x)
			i++
		}
	}
	return out
}

// grayFrame broadcasts a flat plane back to a 3 channel single frame.
func grayFrame(p []float32, width, height int) *imaging.Image {
	out := imaging.New(1, height, width, 3)
	for i, v := range p {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		out.Pix[i*3] = v
		out.Pix[i*3+1] = v
		out.Pix[i*3+2] = v
	}
	return out
}

func gaussianKernel(sigma float64) []float32 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float32, 2*radius+1)
	sum := float32(0)
	for i := -radius; i <= radius; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * sigma * sigma)))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// blurPlane is a separable gaussian blur with clamped edges.
func blurPlane(p []float32, width, height int, sigma float64) []float32 {
	if sigma <= 0 {
		out := make([]float32, len(p))
		copy(out, p)
		return out
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	tmp := make([]float32, len(p))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc float32
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				acc += p[y*width+sx] * kernel[k+radius]
			}
			tmp[y*width+x] = acc
		}
	}
	out := make([]float32, len(p))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc float32
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				acc += tmp[sy*width+x] * kernel[k+radius]
			}
			out[y*width+x] = acc
		}
	}
	return out
}

// sobel computes horizontal and vertical gradients with clamped edges.
func sobel(p []float32, width, height int) (gx, gy []float32) {
	gx = make([]float32, len(p))
	gy = make([]float32, len(p))
	at := func(y, x int) float32 {
		if y < 0 {
			y = 0
		} else if y >= height {
			y = height - 1
		}
		if x < 0 {
			x = 0
		} else if x >= width {
			x = width - 1
		}
		return p[y*width+x]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			gx[i] = at(y-1, x+1) + 2*at(y, x+1) + at(y+1, x+1) -
				at(y-1, x-1) - 2*at(y, x-1) - at(y+1, x-1)
			gy[i] = at(y+1, x-1) + 2*at(y+1, x) + at(y+1, x+1) -
				at(y-1, x-1) - 2*at(y-1, x) - at(y-1, x+1)
		}
	}
	return gx, gy
}
