package annotator

import (
	"context"
	"math"

	"github.com/rowanvale/auxpack/imaging"
)

// Canny is the classic edge detector with 8 bit hysteresis thresholds,
// matching the OpenCV parameterization the aux canny unit exposes.
type Canny struct {
	Low  int
	High int
}

func (c Canny) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	w, h := frame.Width, frame.Height
	p := plane(frame)
	gx, gy := sobel(p, w, h)

	// L1 gradient magnitude on the 8 bit scale
	mag := make([]float32, len(p))
	for i := range p {
		mag[i] = (float32(math.Abs(float64(gx[i]))) + float32(math.Abs(float64(gy[i])))) * 255
	}

	// non-maximum suppression along the quantized gradient direction
	thin := make([]float32, len(p))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			angle := math.Atan2(float64(gy[i]), float64(gx[i]))
			sector := int(math.Round(angle/(math.Pi/4))+8) % 4
			var a, b float32
			switch sector {
			case 0: // horizontal gradient
				a, b = mag[i-1], mag[i+1]
			case 1: // diagonal /
				a, b = mag[(y-1)*w+x+1], mag[(y+1)*w+x-1]
			case 2: // vertical gradient
				a, b = mag[(y-1)*w+x], mag[(y+1)*w+x]
			default: // diagonal \
				a, b = mag[(y-1)*w+x-1], mag[(y+1)*w+x+1]
			}
			if mag[i] >= a && mag[i] >= b {
				thin[i] = mag[i]
			}
		}
	}

	// hysteresis: strong edges seed, weak edges join when connected
	low := float32(c.Low)
	high := float32(c.High)
	const (
		offState = 0
		weak     = 1
		strong   = 2
	)
	state := make([]uint8, len(p))
	var stack []int
	for i := range thin {
		if thin[i] >= high {
			state[i] = strong
			stack = append(stack, i)
		} else if thin[i] >= low {
			state[i] = weak
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		y, x := i/w, i%w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ny, nx := y+dy, x+dx
				if ny < 0 || ny >= h || nx < 0 || nx >= w {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	out := make([]float32, len(p))
	for i := range state {
		if state[i] == strong {
			out[i] = 1
		}
	}
	return grayFrame(out, w, h), nil
}
