package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func lineartStandardSource() (*registry.Mappings, error) {
	// guassian_sigma is misspelled on the wire and has to stay that way
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("guassian_sigma", schema.Float(6.0).Range(0, 100)),
			schema.In("intensity_threshold", schema.Int(8).Range(0, 16)),
			resolutionField(),
		)
	}
	class := localClass(categoryLines, inputs, func(args registry.Arguments) frameDetector {
		return annotator.LineartStandard{
			GaussianSigma:      args.Float("guassian_sigma", 6.0),
			IntensityThreshold: args.Int("intensity_threshold", 8),
		}
	})
	return registry.NewMappings().
		Register("LineartStandardPreprocessor", class).
		Display("LineartStandardPreprocessor", "Standard Lineart"), nil
}
