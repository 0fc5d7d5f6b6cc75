package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func uniformerSource() (*registry.Mappings, error) {
	b, err := backend("UniFormer-SemSegPreprocessor")
	if err != nil {
		return nil, err
	}
	class := func() *registry.Class {
		return modelClass(b, modelSpec{
			detector: "uniformer",
			category: categorySemSeg,
			inputs: func() *schema.Table {
				return schema.PreprocessorInputs(resolutionField())
			},
		})
	}
	// SemSegPreprocessor is the legacy name workflows still reference
	return registry.NewMappings().
		Register("UniFormer-SemSegPreprocessor", class()).
		Display("UniFormer-SemSegPreprocessor", "UniFormer Segmentor").
		Register("SemSegPreprocessor", class()).
		Display("SemSegPreprocessor", "Semantic Segmentor (legacy, alias for UniFormer)"), nil
}
