package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func scribbleSource() (*registry.Mappings, error) {
	plain := localClass(categoryLines, func() *schema.Table {
		return schema.PreprocessorInputs(resolutionField())
	}, func(registry.Arguments) frameDetector {
		return annotator.Scribble{}
	})
	xdog := localClass(categoryLines, func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("threshold", schema.Int(32).Range(1, 64)),
			resolutionField(),
		)
	}, func(args registry.Arguments) frameDetector {
		return annotator.XDoG{Threshold: args.Int("threshold", 32)}
	})
	return registry.NewMappings().
		Register("ScribblePreprocessor", plain).
		Display("ScribblePreprocessor", "Scribble Lines").
		Register("Scribble_XDoG_Preprocessor", xdog).
		Display("Scribble_XDoG_Preprocessor", "Scribble XDoG Lines"), nil
}
