package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func cannySource() (*registry.Mappings, error) {
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("low_threshold", schema.Int(100).Range(0, 255)),
			schema.In("high_threshold", schema.Int(200).Range(0, 255)),
			resolutionField(),
		)
	}
	class := localClass(categoryLines, inputs, func(args registry.Arguments) frameDetector {
		return annotator.Canny{
			Low:  args.Int("low_threshold", 100),
			High: args.Int("high_threshold", 200),
		}
	})
	return registry.NewMappings().
		Register("CannyEdgePreprocessor", class).
		Display("CannyEdgePreprocessor", "Canny Edge"), nil
}
