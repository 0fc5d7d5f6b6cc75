package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func colorSource() (*registry.Mappings, error) {
	inputs := func() *schema.Table {
		return schema.PreprocessorInputs(resolutionField())
	}
	class := localClass(categoryT2I, inputs, func(registry.Arguments) frameDetector {
		return annotator.ColorPalette{}
	})
	return registry.NewMappings().
		Register("ColorPreprocessor", class).
		Display("ColorPreprocessor", "Color Pallete"), nil
}
