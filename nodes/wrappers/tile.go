package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func tileSource() (*registry.Mappings, error) {
	pyramid := localClass(categoryTile, func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("pyrUp_iters", schema.Int(3).Range(1, 10)),
			resolutionField(),
		)
	}, func(args registry.Arguments) frameDetector {
		return annotator.Tile{PyrUpIters: args.Int("pyrUp_iters", 3)}
	})
	simple := localClass(categoryTile, func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("scale_factor", schema.Float(1.0).Range(1.0, 8.0).WithStep(0.05)),
			schema.In("blur_strength", schema.Float(2.0).Range(1.0, 20.0).WithStep(0.1)),
			resolutionField(),
		)
	}, func(args registry.Arguments) frameDetector {
		return annotator.TileSimple{
			ScaleFactor:  args.Float("scale_factor", 1.0),
			BlurStrength: args.Float("blur_strength", 2.0),
		}
	})
	return registry.NewMappings().
		Register("TilePreprocessor", pyramid).
		Display("TilePreprocessor", "Tile").
		Register("TTPlanet_TileSimple_Preprocessor", simple).
		Display("TTPlanet_TileSimple_Preprocessor", "TTPlanet Tile Simple"), nil
}
