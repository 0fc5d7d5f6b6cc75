package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func depthAnythingSource() (*registry.Mappings, error) {
	b, err := backend("DepthAnythingPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "depth_anything",
		category: categoryDepth,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("ckpt_name", schema.Combo(
					"depth_anything_vitl14.pth",
					"depth_anything_vitb14.pth",
					"depth_anything_vits14.pth",
				)),
				resolutionField(),
			)
		},
		model: func(args registry.Arguments) string {
			return args.String("ckpt_name", "depth_anything_vitl14.pth")
		},
	})
	return registry.NewMappings().
		Register("DepthAnythingPreprocessor", class).
		Display("DepthAnythingPreprocessor", "Depth Anything"), nil
}
