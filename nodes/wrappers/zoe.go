package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func zoeSource() (*registry.Mappings, error) {
	b, err := backend("Zoe-DepthMapPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "zoe",
		category: categoryDepth,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(resolutionField())
		},
	})
	return registry.NewMappings().
		Register("Zoe-DepthMapPreprocessor", class).
		Display("Zoe-DepthMapPreprocessor", "Zoe Depth Map"), nil
}
