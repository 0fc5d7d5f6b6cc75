package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func recolorSource() (*registry.Mappings, error) {
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("gamma_correction", schema.Float(1.0).Range(0.1, 2.0).WithStep(0.001)),
			resolutionField(),
		)
	}
	recolor := func(mode string) *registry.Class {
		return localClass(categoryRecolor, inputs, func(args registry.Arguments) frameDetector {
			return annotator.Recolor{
				Mode:  mode,
				Gamma: args.Float("gamma_correction", 1.0),
			}
		})
	}
	return registry.NewMappings().
		Register("ImageLuminanceDetector", recolor("luminance")).
		Display("ImageLuminanceDetector", "Image Luminance").
		Register("ImageIntensityDetector", recolor("intensity")).
		Display("ImageIntensityDetector", "Image Intensity"), nil
}
