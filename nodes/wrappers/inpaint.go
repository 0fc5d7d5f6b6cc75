package wrappers

import (
	"context"
	"fmt"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// inpaintSource wraps the inpaint hint marker. It takes a mask instead of
// the usual detector controls, which is why the AIO combo excludes it.
func inpaintSource() (*registry.Mappings, error) {
	class := &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("image", schema.Image()),
				schema.In("mask", schema.Mask()),
			)
		},
		ReturnTypes: []string{schema.TypeImage},
		Category:    categoryOther,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "image")
				if err != nil {
					return nil, err
				}
				mask, ok := args["mask"].(*imaging.Image)
				if !ok {
					return nil, fmt.Errorf("input mask is %T, want a mask tensor", args["mask"])
				}
				out, err := annotator.MarkInpaint(img, mask)
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{out}}, nil
			})
		},
	}
	return registry.NewMappings().
		Register("InpaintPreprocessor", class).
		Display("InpaintPreprocessor", "Inpaint Preprocessor"), nil
}
