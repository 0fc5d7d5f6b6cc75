package annotator

import (
	"fmt"

	"github.com/rowanvale/auxpack/imaging"
)

// MarkInpaint writes the inpaint controlnet's hint: image pixels under the
// mask are replaced by -1, the out-of-range marker the model is trained on.
// The mask is rescaled to the image when sizes differ.
func MarkInpaint(img *imaging.Image, mask *imaging.Image) (*imaging.Image, error) {
	if mask.Channels != 1 {
		return nil, fmt.Errorf("expected single channel mask, got %d channels", mask.Channels)
	}
	if mask.Height != img.Height || mask.Width != img.Width {
		mask = imaging.Scale(mask, img.Width, img.Height)
	}
	out := img.Clone()
	for b := 0; b < out.Batch; b++ {
		mb := b
		if mb >= mask.Batch {
			mb = mask.Batch - 1
		}
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				if mask.At(mb, y, x, 0) > 0.5 {
					for c := 0; c < out.Channels; c++ {
						out.Set(b, y, x, c, -1)
					}
				}
			}
		}
	}
	return out, nil
}
