package annotator

import (
	"context"
	"sort"

	"github.com/rowanvale/auxpack/imaging"
)

// channelPlanes splits a frame into per-channel 8 bit scale buffers.
func channelPlanes(m *imaging.Image) [3][]float32 {
	var out [3][]float32
	n := m.Height * m.Width
	for c := 0; c < 3; c++ {
		out[c] = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			ch := c
			if m.Channels == 1 {
				ch = 0
			}
			out[c][i] = m.Pix[i*m.Channels+ch] * 255
		}
	}
	return out
}

// LineartStandard extracts line drawings by comparing each pixel against its
// gaussian surround: the most darkened channel becomes stroke intensity,
// normalized by the median of everything above the threshold.
type LineartStandard struct {
	GaussianSigma      float64
	IntensityThreshold int
}

func (l LineartStandard) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	w, h := frame.Width, frame.Height
	planes := channelPlanes(frame)

	diff := make([]float32, w*h)
	for c := 0; c < 3; c++ {
		blurred := blurPlane(planes[c], w, h, l.GaussianSigma)
		for i := range diff {
			d := blurred[i] - planes[c][i]
			if c == 0 || d < diff[i] {
				diff[i] = d
			}
		}
	}

	var above []float32
	thr := float32(l.IntensityThreshold)
	for _, d := range diff {
		if d > thr {
			above = append(above, d)
		}
	}
	denom := float32(16)
	if len(above) > 0 {
		sort.Slice(above, func(i, j int) bool { return above[i] < above[j] })
		if med := above[len(above)/2]; med > denom {
			denom = med
		}
	}

	out := make([]float32, w*h)
	for i, d := range diff {
		if d < 0 {
			d = 0
		}
		v := d / denom * 127 / 255
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	return grayFrame(out, w, h), nil
}

// XDoG is the difference-of-gaussians sketch extractor behind the scribble
// XDoG unit. Threshold is on the 8 bit scale.
type XDoG struct {
	Threshold int
}

func (x XDoG) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	w, h := frame.Width, frame.Height
	planes := channelPlanes(frame)

	// planes are already on the 8 bit scale; the least darkened channel wins
	dog := make([]float32, w*h)
	for c := 0; c < 3; c++ {
		g1 := blurPlane(planes[c], w, h, 0.5)
		g2 := blurPlane(planes[c], w, h, 5.0)
		for i := range dog {
			d := g2[i] - g1[i]
			if c == 0 || d < dog[i] {
				dog[i] = d
			}
		}
	}

	out := make([]float32, w*h)
	thr := float32(x.Threshold)
	for i, d := range dog {
		if d < 0 {
			d = 0
		} else if d > 255 {
			d = 255
		}
		if 2*d > thr {
			out[i] = 1
		}
	}
	return grayFrame(out, w, h), nil
}

// Scribble is the hand drawn look extractor: pixels whose darkest channel
// falls under the midpoint become white strokes.
type Scribble struct{}

func (Scribble) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	w, h := frame.Width, frame.Height
	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			low := frame.At(0, y, x, 0)
			for c := 1; c < frame.Channels && c < 3; c++ {
				if v := frame.At(0, y, x, c); v < low {
					low = v
				}
			}
			if low < 0.5 {
				out[y*w+x] = 1
			}
		}
	}
	return grayFrame(out, w, h), nil
}
