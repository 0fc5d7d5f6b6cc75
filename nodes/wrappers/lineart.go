package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func lineartSource() (*registry.Mappings, error) {
	b, err := backend("LineArtPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "lineart",
		category: categoryLines,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("coarse", schema.EnableDisable().WithDefault("disable")),
				resolutionField(),
			)
		},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{"coarse": args.String("coarse", "disable")}
		},
	})
	return registry.NewMappings().
		Register("LineArtPreprocessor", class).
		Display("LineArtPreprocessor", "Realistic Lineart"), nil
}
