package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func oneformerSource() (*registry.Mappings, error) {
	b, err := backend("OneFormer-COCO-SemSegPreprocessor")
	if err != nil {
		return nil, err
	}
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(resolutionField())
	}
	coco := modelClass(b, modelSpec{
		detector: "oneformer_coco",
		category: categorySemSeg,
		inputs:   inputs,
	})
	ade20k := modelClass(b, modelSpec{
		detector: "oneformer_ade20k",
		category: categorySemSeg,
		inputs:   inputs,
	})
	return registry.NewMappings().
		Register("OneFormer-COCO-SemSegPreprocessor", coco).
		Display("OneFormer-COCO-SemSegPreprocessor", "OneFormer COCO Segmentor").
		Register("OneFormer-ADE20K-SemSegPreprocessor", ade20k).
		Display("OneFormer-ADE20K-SemSegPreprocessor", "OneFormer ADE20K Segmentor"), nil
}
