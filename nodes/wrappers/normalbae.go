package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func normalBAESource() (*registry.Mappings, error) {
	b, err := backend("BAE-NormalMapPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "normalbae",
		category: categoryDepth,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(resolutionField())
		},
	})
	return registry.NewMappings().
		Register("BAE-NormalMapPreprocessor", class).
		Display("BAE-NormalMapPreprocessor", "BAE Normal Map"), nil
}
