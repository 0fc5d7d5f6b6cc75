package nodes

import (
	"context"
	"fmt"

	"github.com/rowanvale/auxpack/dispatch"
	"github.com/rowanvale/auxpack/graphapi"
	"github.com/rowanvale/auxpack/hostapi"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// selectorClass builds the controlnet plus preprocessor combo node. The unit
// to run arrives as a select_styles input the host UI writes into the node's
// prompt entry rather than as a declared widget, so the runner reads its own
// inputs back out of the hidden prompt graph.
func selectorClass(units *registry.Registry, rt hostapi.Runtime) *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().
				Require(
					schema.In("cn", schema.Combo(rt.FileNames("controlnet")...)),
					schema.In("image", schema.Image()),
				).
				Option(schema.In("resolution", schema.Int(512).Range(64, 4096).WithStep(64))).
				Hide(
					schema.In("prompt", schema.Typed(schema.TagPrompt)),
					schema.In("my_unique_id", schema.Typed(schema.TagUniqueID)),
				)
		},
		ReturnTypes: []string{"CONTROL_NET", schema.TypeImage},
		ReturnNames: []string{"control_net", "image"},
		Category:    Category,
		OutputNode:  true,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "image")
				if err != nil {
					return nil, err
				}
				cn := args.String("cn", "")
				model, err := rt.LoadControlNet(ctx, cn)
				if err != nil {
					return nil, fmt.Errorf("loading controlnet %s: %w", cn, err)
				}
				name := selectedStyle(args)
				if name == registry.None {
					return &registry.Result{Values: []interface{}{model, img}}, nil
				}
				res, err := dispatch.Run(ctx, units, name, registry.Arguments{
					"image":      img,
					"resolution": args.Int("resolution", 512),
				})
				if err != nil {
					return nil, err
				}
				if len(res.Values) == 0 {
					return nil, fmt.Errorf("preprocessor %s returned no image", name)
				}
				return &registry.Result{
					Values: []interface{}{model, res.Values[0]},
					Expand: res.Expand,
				}, nil
			})
		},
	}
}

// selectedStyle digs the select_styles choice out of the node's own prompt
// entry. Anything missing along the way means the UI didn't inject one and
// the selector acts as a plain loader.
func selectedStyle(args registry.Arguments) string {
	g, ok := args["prompt"].(graphapi.Graph)
	if !ok {
		return registry.None
	}
	node, ok := g[args.String("my_unique_id", "")]
	if !ok || node == nil {
		return registry.None
	}
	if sel, ok := node.Inputs["select_styles"].(string); ok && sel != "" {
		return sel
	}
	return registry.None
}
