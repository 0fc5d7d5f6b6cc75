package nodes

import (
	"context"
	"fmt"

	"github.com/rowanvale/auxpack/dispatch"
	"github.com/rowanvale/auxpack/hostapi"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// executeAllClass builds the preview grid node: every usable unit runs over
// the same image and the labeled results come back as one batch. The work is
// deferred to an expansion graph, so it only runs on hosts that support
// those.
func executeAllClass(units *registry.Registry, rt hostapi.Runtime, exclude []string) *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.PreprocessorInputs(schema.In("resolution", schema.Resolution()))
		},
		ReturnTypes: []string{schema.TypeImage},
		Category:    Category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				image := args["image"]
				if image == nil {
					return nil, fmt.Errorf("missing image input")
				}
				return dispatch.ComposePreviewGrid(image, args.Int("resolution", 512), units, rt, exclude)
			})
		},
	}
}
