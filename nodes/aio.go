package nodes

import (
	"context"

	"github.com/rowanvale/auxpack/dispatch"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// aioClass builds the one-node-fits-all preprocessor. Its combo offers every
// selectable unit minus the excluded ones; picking the sentinel passes the
// image through untouched, anything else dispatches with the image and
// resolution supplied and the rest of the unit's parameters synthesized.
func aioClass(units *registry.Registry, exclude []string) *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			choices := units.AvailableNames(exclude...)
			return schema.PreprocessorInputs(
				schema.In("preprocessor", schema.Combo(choices...).WithDefault(registry.None)),
				schema.In("resolution", schema.Resolution()),
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
				name := args.String("preprocessor", registry.None)
				if name == registry.None {
					return &registry.Result{Values: []interface{}{img}}, nil
				}
				return dispatch.Run(ctx, units, name, registry.Arguments{
					"image":      img,
					"resolution": args.Int("resolution", 512),
				})
			})
		},
	}
}
