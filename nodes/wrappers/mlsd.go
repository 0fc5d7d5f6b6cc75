package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func mlsdSource() (*registry.Mappings, error) {
	b, err := backend("M-LSDPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "mlsd",
		category: categoryLines,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("score_threshold", schema.Float(0.1).Range(0.01, 2.0).WithStep(0.01)),
				schema.In("dist_threshold", schema.Float(0.1).Range(0.01, 20.0).WithStep(0.01)),
				resolutionField(),
			)
		},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"score_threshold": args.Float("score_threshold", 0.1),
				"dist_threshold":  args.Float("dist_threshold", 0.1),
			}
		},
	})
	return registry.NewMappings().
		Register("M-LSDPreprocessor", class).
		Display("M-LSDPreprocessor", "M-LSD Lines"), nil
}
