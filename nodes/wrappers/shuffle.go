package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func shuffleSource() (*registry.Mappings, error) {
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(
			resolutionField(),
			schema.In("seed", schema.Int(0)),
		)
	}
	class := localClass(categoryT2I, inputs, func(args registry.Arguments) frameDetector {
		return annotator.Shuffle{Seed: int64(args.Int("seed", 0))}
	})
	return registry.NewMappings().
		Register("ShufflePreprocessor", class).
		Display("ShufflePreprocessor", "Content Shuffle"), nil
}
