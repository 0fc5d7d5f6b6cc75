package nodes

import (
	"context"

	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// addTextClass builds the label overlay node the preview grid uses to tag
// each unit's output with its name.
func addTextClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("image", schema.Image()),
				schema.In("text", schema.String("ControlNet Aux")),
			)
		},
		ReturnTypes: []string{schema.TypeImage},
		Category:    Category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "image")
				if err != nil {
					return nil, err
				}
				labeled, err := imaging.DrawLabel(img, args.String("text", ""))
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{labeled}}, nil
			})
		},
	}
}
