package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func hedSource() (*registry.Mappings, error) {
	b, err := backend("HEDPreprocessor")
	if err != nil {
		return nil, err
	}
	safeInputs := func() *schema.Table {
		return schema.PreprocessorInputs(
			schema.In("safe", schema.EnableDisable().WithDefault("enable")),
			resolutionField(),
		)
	}
	safeParams := func(args registry.Arguments) map[string]interface{} {
		return map[string]interface{}{"safe": args.String("safe", "enable")}
	}
	hed := modelClass(b, modelSpec{
		detector: "hed",
		category: categoryLines,
		inputs:   safeInputs,
		params:   safeParams,
	})
	scribbleHED := modelClass(b, modelSpec{
		detector: "scribble_hed",
		category: categoryLines,
		inputs:   safeInputs,
		params:   safeParams,
	})
	return registry.NewMappings().
		Register("HEDPreprocessor", hed).
		Display("HEDPreprocessor", "HED Soft-Edge Lines").
		Register("FakeScribblePreprocessor", scribbleHED).
		Display("FakeScribblePreprocessor", "Fake Scribble Lines (aka scribble_hed)"), nil
}
