package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func pidinetSource() (*registry.Mappings, error) {
	b, err := backend("PiDiNetPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "pidinet",
		category: categoryLines,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("safe", schema.SafeUnsafe().WithDefault("safe")),
				resolutionField(),
			)
		},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{"safe": args.String("safe", "safe")}
		},
	})
	return registry.NewMappings().
		Register("PiDiNetPreprocessor", class).
		Display("PiDiNetPreprocessor", "PiDiNet Soft-Edge Lines"), nil
}
