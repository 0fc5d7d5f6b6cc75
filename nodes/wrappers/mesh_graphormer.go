package wrappers

import (
	"errors"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// maskOutputs lays out a depth-plus-mask detection. A backend that cannot
// produce the refinement mask fails the run rather than handing out an
// unusable one.
func maskOutputs(d *annotator.Detection) ([]interface{}, error) {
	mask, ok := d.Aux.(*imaging.Image)
	if !ok || mask == nil {
		return nil, errors.New("backend returned no inpaint mask")
	}
	return []interface{}{d.Image, mask}, nil
}

func meshGraphormerSource() (*registry.Mappings, error) {
	b, err := backend("MeshGraphormer-DepthMapPreprocessor")
	if err != nil {
		return nil, err
	}
	hand := modelClass(b, modelSpec{
		detector: "mesh_graphormer",
		category: categoryDepth,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("mask_bbox_padding", schema.Int(30).Range(0, 100)),
				resolutionField(),
				schema.In("mask_type", schema.Combo("based_on_depth", "tight_bboxes", "original")),
				schema.In("mask_expand", schema.Int(5).Range(-512, 512)),
				schema.In("rand_seed", schema.Int(88)),
			)
		},
		returnTypes: []string{schema.TypeImage, schema.TypeMask},
		returnNames: []string{"IMAGE", "INPAINTING_MASK"},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"mask_bbox_padding": args.Int("mask_bbox_padding", 30),
				"mask_type":         args.String("mask_type", "based_on_depth"),
				"mask_expand":       args.Int("mask_expand", 5),
				"rand_seed":         args.Int("rand_seed", 88),
			}
		},
		outputs: maskOutputs,
	})
	impact := modelClass(b, modelSpec{
		detector: "mesh_graphormer_impact",
		category: categoryDepth,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("mask_bbox_padding", schema.Int(30).Range(0, 100)),
				resolutionField(),
				schema.In("bbox_threshold", schema.Float(0.5).Range(0, 1).WithStep(0.01)),
				schema.In("mask_expand", schema.Int(5).Range(-512, 512)),
				schema.In("rand_seed", schema.Int(88)),
			)
		},
		returnTypes: []string{schema.TypeImage, schema.TypeMask},
		returnNames: []string{"IMAGE", "INPAINTING_MASK"},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"mask_bbox_padding": args.Int("mask_bbox_padding", 30),
				"bbox_threshold":    args.Float("bbox_threshold", 0.5),
				"mask_expand":       args.Int("mask_expand", 5),
				"rand_seed":         args.Int("rand_seed", 88),
			}
		},
		outputs: maskOutputs,
	})
	return registry.NewMappings().
		Register("MeshGraphormer-DepthMapPreprocessor", hand).
		Display("MeshGraphormer-DepthMapPreprocessor", "MeshGraphormer Hand Refiner").
		Register("MeshGraphormer+ImpactDetector-DepthMapPreprocessor", impact).
		Display("MeshGraphormer+ImpactDetector-DepthMapPreprocessor", "MeshGraphormer Hand Refiner With External Detector"), nil
}
