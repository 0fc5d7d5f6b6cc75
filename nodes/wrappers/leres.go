package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func leresSource() (*registry.Mappings, error) {
	b, err := backend("LeReS-DepthMapPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "leres",
		category: categoryDepth,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("rm_nearest", schema.Float(0.0).Range(0, 100).WithStep(0.1)),
				schema.In("rm_background", schema.Float(0.0).Range(0, 100).WithStep(0.1)),
				schema.In("boost", schema.EnableDisable().WithDefault("disable")),
				resolutionField(),
			)
		},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"rm_nearest":    args.Float("rm_nearest", 0.0),
				"rm_background": args.Float("rm_background", 0.0),
				"boost":         args.String("boost", "disable"),
			}
		},
	})
	return registry.NewMappings().
		Register("LeReS-DepthMapPreprocessor", class).
		Display("LeReS-DepthMapPreprocessor", "LeReS Depth Map (enable boost for leres++)"), nil
}
