package wrappers

import (
	"math"

	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func midasSource() (*registry.Mappings, error) {
	b, err := backend("MiDaS-DepthMapPreprocessor")
	if err != nil {
		return nil, err
	}
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("a", schema.Float(math.Pi*2.0).Range(0, math.Pi*5.0).WithStep(0.05)),
			schema.In("bg_threshold", schema.Float(0.1).Range(0, 1).WithStep(0.05)),
			resolutionField(),
		)
	}
	params := func(args registry.Arguments) map[string]interface{} {
		return map[string]interface{}{
			"a":            args.Float("a", math.Pi*2.0),
			"bg_threshold": args.Float("bg_threshold", 0.1),
		}
	}
	depth := modelClass(b, modelSpec{
		detector: "midas_depth",
		category: categoryDepth,
		inputs:   inputs,
		params:   params,
	})
	normal := modelClass(b, modelSpec{
		detector: "midas_normal",
		category: categoryDepth,
		inputs:   inputs,
		params:   params,
	})
	return registry.NewMappings().
		Register("MiDaS-NormalMapPreprocessor", normal).
		Display("MiDaS-NormalMapPreprocessor", "MiDaS Normal Map").
		Register("MiDaS-DepthMapPreprocessor", depth).
		Display("MiDaS-DepthMapPreprocessor", "MiDaS Depth Map"), nil
}
