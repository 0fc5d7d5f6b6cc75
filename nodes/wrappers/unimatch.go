package wrappers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func unimatchSource() (*registry.Mappings, error) {
	b, err := backend("Unimatch_OptFlowPreprocessor")
	if err != nil {
		return nil, err
	}
	flow := &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("image", schema.Image()),
				schema.In("ckpt_name", schema.Combo(
					"gmflow-scale2-regrefine6-mixdata.pth",
					"gmflow-scale2-mixdata.pth",
					"gmflow-scale1-mixdata.pth",
				)),
				schema.In("backward_flow", schema.Bool(false)),
			)
		},
		ReturnTypes: []string{"OPTICAL_FLOW", schema.TypeImage},
		ReturnNames: []string{"OPTICAL_FLOW", "PREVIEW_IMAGE"},
		Category:    categoryFlow,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "image")
				if err != nil {
					return nil, err
				}
				// flow needs consecutive frame pairs
				if img.Batch < 2 {
					return nil, fmt.Errorf("optical flow needs at least 2 frames, got %d", img.Batch)
				}
				d, err := b.Detect(ctx, annotator.Task{
					Detector: "unimatch",
					Model:    args.String("ckpt_name", "gmflow-scale2-regrefine6-mixdata.pth"),
					Image:    img,
					Params: map[string]interface{}{
						"backward_flow": args.Bool("backward_flow", false),
					},
				})
				if err != nil {
					return nil, fmt.Errorf("unimatch: %w", err)
				}
				field, ok := d.Aux.(*imaging.Image)
				if !ok || field == nil {
					return nil, errors.New("backend returned no flow field")
				}
				return &registry.Result{Values: []interface{}{field, d.Image}}, nil
			})
		},
	}
	masked := &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("optical_flow", schema.Typed("OPTICAL_FLOW")),
				schema.In("mask", schema.Mask()),
			)
		},
		ReturnTypes: []string{"OPTICAL_FLOW", schema.TypeImage},
		ReturnNames: []string{"OPTICAL_FLOW", "PREVIEW_IMAGE"},
		Category:    categoryFlow,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				field, ok := args["optical_flow"].(*imaging.Image)
				if !ok {
					return nil, fmt.Errorf("input optical_flow is %T, want a flow field", args["optical_flow"])
				}
				mask, ok := args["mask"].(*imaging.Image)
				if !ok {
					return nil, fmt.Errorf("input mask is %T, want a mask tensor", args["mask"])
				}
				out, err := annotator.MaskFlow(field, mask)
				if err != nil {
					return nil, err
				}
				vis, err := annotator.FlowToImage(out)
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{out, vis}}, nil
			})
		},
	}
	return registry.NewMappings().
		Register("Unimatch_OptFlowPreprocessor", flow).
		Display("Unimatch_OptFlowPreprocessor", "Unimatch Optical Flow").
		Register("MaskOptFlow", masked).
		Display("MaskOptFlow", "Mask Optical Flow (DragNUWA)"), nil
}
