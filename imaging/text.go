package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const labelPointSize = 40

var (
	labelFaceOnce sync.Once
	labelFace     font.Face
	labelFaceErr  error
)

// labelFont lazily builds the embedded label face. goregular ships with the
// module, so failures only happen on a corrupted build.
func labelFont() (font.Face, error) {
	labelFaceOnce.Do(func() {
		fnt, err := opentype.Parse(goregular.TTF)
		if err != nil {
			labelFaceErr = err
			return
		}
		labelFace, labelFaceErr = opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    labelPointSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return labelFace, labelFaceErr
}

// DrawLabel returns a copy of the tensor with text drawn in green at the top
// left corner of every frame.
func DrawLabel(m *Image, text string) (*Image, error) {
	face, err := labelFont()
	if err != nil {
		return nil, err
	}
	out := New(m.Batch, m.Height, m.Width, m.Channels)
	metrics := face.Metrics()
	for b := 0; b < m.Batch; b++ {
		frame := m.ToImage(b)
		canvas := image.NewNRGBA(frame.Bounds())
		draw.Draw(canvas, canvas.Bounds(), frame, image.Point{}, draw.Src)
		d := font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(color.NRGBA{G: 255, A: 255}),
			Face: face,
			Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
		}
		d.DrawString(text)
		copyNRGBAToFrame(canvas, out, b)
	}
	return out, nil
}

func copyNRGBAToFrame(src *image.NRGBA, dst *Image, frame int) {
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			base := y*src.Stride + x*4
			for c := 0; c < dst.Channels && c < 3; c++ {
				dst.Set(frame, y, x, c, float32(src.Pix[base+c])/255.0)
			}
		}
	}
}
