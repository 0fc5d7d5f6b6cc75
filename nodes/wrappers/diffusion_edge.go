package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func diffusionEdgeSource() (*registry.Mappings, error) {
	b, err := backend("DiffusionEdge_Preprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "diffusion_edge",
		category: categoryLines,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("environment", schema.Combo("indoor", "urban", "natural")),
				schema.In("patch_batch_size", schema.Int(4).Range(1, 16)),
				resolutionField(),
			)
		},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"environment":      args.String("environment", "indoor"),
				"patch_batch_size": args.Int("patch_batch_size", 4),
			}
		},
	})
	return registry.NewMappings().
		Register("DiffusionEdge_Preprocessor", class).
		Display("DiffusionEdge_Preprocessor", "Diffusion Edge (batch size ↑ => speed ↑, VRAM ↑)"), nil
}
