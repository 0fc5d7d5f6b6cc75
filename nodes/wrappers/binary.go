package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func binarySource() (*registry.Mappings, error) {
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("bin_threshold", schema.Int(100).Range(0, 255)),
			resolutionField(),
		)
	}
	class := localClass(categoryLines, inputs, func(args registry.Arguments) frameDetector {
		return annotator.Binary{Threshold: args.Int("bin_threshold", 100)}
	})
	return registry.NewMappings().
		Register("BinaryPreprocessor", class).
		Display("BinaryPreprocessor", "Binary Lines"), nil
}
