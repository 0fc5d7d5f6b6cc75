package dispatch

import (
	"errors"
	"fmt"

	"github.com/rowanvale/auxpack/graphapi"
	"github.com/rowanvale/auxpack/registry"
)

// Class names the composer emits into ephemeral graphs. The first two are
// this pack's own nodes, ImageBatch is a host core node.
const (
	AIOClassName     = "AIO_Preprocessor"
	AddTextClassName = "ControlNetAuxSimpleAddText"
	ImageBatchClass  = "ImageBatch"
)

// CapabilityError reports a host that cannot run a feature because it lacks
// the named capability.
type CapabilityError struct {
	Feature    string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s requires a host with %s support", e.Feature, e.Capability)
}

// ErrNoPreprocessors is returned when a preview grid is requested but no
// usable unit survived discovery and exclusion.
var ErrNoPreprocessors = errors.New("no preprocessors available to compose")

// Capabilities is the slice of the host contract the composer needs.
type Capabilities interface {
	SupportsGraphExpansion() bool
}

// ComposePreviewGrid builds the deferred graph that runs every usable unit
// over one image and merges the labeled outputs into a single batch. Per unit
// name, in registry order: an AIO invocation node feeding a text label node.
// The labeled outputs then reduce pairwise through ImageBatch nodes, the odd
// tail carrying over, until one output remains. Nothing is executed here; the
// host runs the returned expansion.
func ComposePreviewGrid(image interface{}, resolution int, reg *registry.Registry, caps Capabilities, exclude []string) (*registry.Result, error) {
	if caps == nil || !caps.SupportsGraphExpansion() {
		return nil, &CapabilityError{
			Feature:    "ExecuteAllControlNetPreprocessors",
			Capability: "graph expansion",
		}
	}

	// drop the none sentinel, keep registry order
	names := reg.AvailableNames(exclude...)[1:]
	if len(names) == 0 {
		return nil, ErrNoPreprocessors
	}

	b := graphapi.NewBuilder()
	outputs := make([]graphapi.Output, 0, len(names))
	for _, name := range names {
		aio := b.Node(AIOClassName, map[string]interface{}{
			"preprocessor": name,
			"image":        image,
			"resolution":   resolution,
		})
		label := b.Node(AddTextClassName, map[string]interface{}{
			"image": aio.Out(0),
			"text":  name,
		})
		outputs = append(outputs, label.Out(0))
	}

	for len(outputs) > 1 {
		next := make([]graphapi.Output, 0, (len(outputs)+1)/2)
		for i := 0; i+1 < len(outputs); i += 2 {
			merge := b.Node(ImageBatchClass, map[string]interface{}{
				"image1": outputs[i],
				"image2": outputs[i+1],
			})
			next = append(next, merge.Out(0))
		}
		if len(outputs)%2 == 1 {
			next = append(next, outputs[len(outputs)-1])
		}
		outputs = next
	}

	return &registry.Result{
		Values: []interface{}{outputs[0]},
		Expand: b.Graph(),
	}, nil
}
