package annotator

import (
	"context"
	"math"
	"math/rand"

	"github.com/rowanvale/auxpack/imaging"
)

// Binary thresholds the grayscale into a white-on-black scribble map. A
// threshold of 0 picks one automatically by Otsu's method.
type Binary struct {
	Threshold int
}

func (b Binary) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	w, h := frame.Width, frame.Height
	p := plane(frame)

	thr := float32(b.Threshold) / 255
	if b.Threshold == 0 {
		thr = otsu(p)
	}
	out := make([]float32, len(p))
	for i, v := range p {
		if v < thr {
			out[i] = 1
		}
	}
	return grayFrame(out, w, h), nil
}

// otsu picks the threshold maximizing between-class variance over a 256 bin
// histogram.
func otsu(p []float32) float32 {
	var hist [256]int
	for _, v := range p {
		bin := int(v * 255)
		if bin < 0 {
			bin = 0
		} else if bin > 255 {
			bin = 255
		}
		hist[bin]++
	}
	total := len(p)
	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}
	var sumB, wB float64
	best, bestVar := 127, -1.0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}
	return float32(best) / 255
}

// Recolor turns the image into a gamma corrected tone map, either from luma
// or from HSV intensity.
type Recolor struct {
	Mode  string // "luminance" or "intensity"
	Gamma float64
}

func (r Recolor) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	w, h := frame.Width, frame.Height
	out := make([]float32, w*h)
	gamma := r.Gamma
	if gamma <= 0 {
		gamma = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v float32
			if r.Mode == "intensity" {
				for c := 0; c < frame.Channels && c < 3; c++ {
					if ch := frame.At(0, y, x, c); ch > v {
						v = ch
					}
				}
			} else {
				v = frame.Luminance(0, y, x)
			}
			out[y*w+x] = float32(math.Pow(float64(v), gamma))
		}
	}
	return grayFrame(out, w, h), nil
}

// ColorPalette produces the T2I color grid: the image collapsed to 1/64
// resolution and blown back up with hard blocks.
type ColorPalette struct{}

func (ColorPalette) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	smallW := frame.Width / 64
	smallH := frame.Height / 64
	if smallW < 1 {
		smallW = 1
	}
	if smallH < 1 {
		smallH = 1
	}
	small := imaging.Scale(frame, smallW, smallH)

	out := imaging.New(1, frame.Height, frame.Width, 3)
	for y := 0; y < frame.Height; y++ {
		sy := y * smallH / frame.Height
		for x := 0; x < frame.Width; x++ {
			sx := x * smallW / frame.Width
			for c := 0; c < 3; c++ {
				out.Set(0, y, x, c, small.At(0, sy, sx, c))
			}
		}
	}
	return out, nil
}

// Tile softens the image through a gaussian pyramid round trip, the guide the
// tile controlnet expects.
type Tile struct {
	PyrUpIters int
}

func (t Tile) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	iters := t.PyrUpIters
	if iters < 1 {
		iters = 1
	}
	cur := frame
	for i := 0; i < iters; i++ {
		w, h := cur.Width/2, cur.Height/2
		if w < 1 || h < 1 {
			break
		}
		cur = imaging.Scale(cur, w, h)
	}
	return imaging.Scale(cur, frame.Width, frame.Height).Clone(), nil
}

// TileSimple is the TTPlanet tile variant: the image shrinks by the scale
// factor and takes a gaussian pass before being blown back up, keeping color
// regions while wiping detail.
type TileSimple struct {
	ScaleFactor  float64
	BlurStrength float64
}

func (t TileSimple) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	factor := t.ScaleFactor
	if factor < 1 {
		factor = 1
	}
	w := int(float64(frame.Width) / factor)
	h := int(float64(frame.Height) / factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	small := imaging.Scale(frame, w, h)
	if t.BlurStrength > 0 {
		planes := channelPlanes(small)
		blurred := imaging.New(1, h, w, 3)
		for c := 0; c < 3; c++ {
			p := blurPlane(planes[c], w, h, t.BlurStrength)
			for i, v := range p {
				blurred.Pix[i*3+c] = v / 255
			}
		}
		small = blurred
	}
	return imaging.Scale(small, frame.Width, frame.Height), nil
}

// Shuffle is the content shuffle detector: a seeded smooth random flow field
// resamples the image, destroying structure while keeping its palette.
type Shuffle struct {
	Seed int64
}

func (s Shuffle) Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error) {
	w, h := frame.Width, frame.Height
	rng := rand.New(rand.NewSource(s.Seed))
	fx := noiseDisk(rng, w, h, 256)
	fy := noiseDisk(rng, w, h, 256)

	out := imaging.New(1, h, w, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := fx[y*w+x] * float32(w-1)
			sy := fy[y*w+x] * float32(h-1)
			for c := 0; c < 3; c++ {
				out.Set(0, y, x, c, bilinearSample(frame, sy, sx, c))
			}
		}
	}
	return out, nil
}

// noiseDisk builds a smooth random field in [0,1]: coarse uniform noise blown
// up to full size.
func noiseDisk(rng *rand.Rand, width, height, f int) []float32 {
	cw := width/f + 2
	ch := height/f + 2
	coarse := imaging.New(1, ch, cw, 3)
	for i := 0; i < ch*cw; i++ {
		v := rng.Float32()
		coarse.Pix[i*3] = v
		coarse.Pix[i*3+1] = v
		coarse.Pix[i*3+2] = v
	}
	full := imaging.Scale(coarse, width, height)
	out := make([]float32, width*height)
	for i := range out {
		out[i] = full.Pix[i*3]
	}
	return out
}

func bilinearSample(m *imaging.Image, y, x float32, c int) float32 {
	x0 := int(x)
	y0 := int(y)
	x1, y1 := x0+1, y0+1
	if x0 < 0 {
		x0, x1 = 0, 0
	}
	if y0 < 0 {
		y0, y1 = 0, 0
	}
	if x1 >= m.Width {
		x1 = m.Width - 1
		if x0 > x1 {
			x0 = x1
		}
	}
	if y1 >= m.Height {
		y1 = m.Height - 1
		if y0 > y1 {
			y0 = y1
		}
	}
	dx := x - float32(x0)
	dy := y - float32(y0)
	top := m.At(0, y0, x0, c)*(1-dx) + m.At(0, y0, x1, c)*dx
	bot := m.At(0, y1, x0, c)*(1-dx) + m.At(0, y1, x1, c)*dx
	return top*(1-dy) + bot*dy
}
