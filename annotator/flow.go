package annotator

import (
	"fmt"
	"math"

	"github.com/rowanvale/auxpack/imaging"
)

// FlowToImage visualizes a two channel (u, v) flow field with the HSV
// encoding: hue from direction, saturation from magnitude normalized over
// the whole batch.
func FlowToImage(flow *imaging.Image) (*imaging.Image, error) {
	if flow.Channels != 2 {
		return nil, fmt.Errorf("expected a 2 channel flow field, got %d channels", flow.Channels)
	}
	var maxMag float64
	for b := 0; b < flow.Batch; b++ {
		for y := 0; y < flow.Height; y++ {
			for x := 0; x < flow.Width; x++ {
				m := math.Hypot(float64(flow.At(b, y, x, 0)), float64(flow.At(b, y, x, 1)))
				if m > maxMag {
					maxMag = m
				}
			}
		}
	}
	if maxMag == 0 {
		maxMag = 1
	}
	out := imaging.New(flow.Batch, flow.Height, flow.Width, 3)
	for b := 0; b < flow.Batch; b++ {
		for y := 0; y < flow.Height; y++ {
			for x := 0; x < flow.Width; x++ {
				u := float64(flow.At(b, y, x, 0))
				v := float64(flow.At(b, y, x, 1))
				hue := float32(math.Atan2(-v, -u)/(2*math.Pi) + 0.5)
				sat := float32(math.Hypot(u, v) / maxMag)
				rgb := hsvToRGB(hue, sat, 1)
				for c := 0; c < 3; c++ {
					out.Set(b, y, x, c, rgb[c])
				}
			}
		}
	}
	return out, nil
}

// MaskFlow zeroes the flow outside the mask. The mask is rescaled to the
// flow's size when they differ and broadcast over the batch.
func MaskFlow(flow, mask *imaging.Image) (*imaging.Image, error) {
	if flow.Channels != 2 {
		return nil, fmt.Errorf("expected a 2 channel flow field, got %d channels", flow.Channels)
	}
	if mask.Channels != 1 {
		return nil, fmt.Errorf("expected single channel mask, got %d channels", mask.Channels)
	}
	if mask.Height != flow.Height || mask.Width != flow.Width {
		mask = imaging.Scale(mask, flow.Width, flow.Height)
	}
	out := flow.Clone()
	for b := 0; b < out.Batch; b++ {
		mb := b
		if mb >= mask.Batch {
			mb = mask.Batch - 1
		}
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				if mask.At(mb, y, x, 0) > 0.5 {
					continue
				}
				out.Set(b, y, x, 0, 0)
				out.Set(b, y, x, 1, 0)
			}
		}
	}
	return out, nil
}
