// Package hostapi is the boundary between the pack and whatever executes its
// graphs: the capability and folder contract nodes program against, the HTTP
// routes the pack contributes to a host server, and a small in-process
// runtime that can execute expansion graphs directly for library use.
package hostapi

import (
	"context"
)

// Runtime is the host contract pack nodes call into. A host that cannot
// expand ephemeral graphs still satisfies the interface; features that need
// expansion fail with a capability error at run time.
type Runtime interface {
	// SupportsGraphExpansion reports whether node results may defer to
	// ephemeral graphs.
	SupportsGraphExpansion() bool

	// FileNames lists the model file names under a host folder such as
	// "controlnet".
	FileNames(folder string) []string

	// LoadControlNet loads a controlnet model by file name. The returned
	// payload is opaque to the pack; it flows through CONTROL_NET outputs.
	LoadControlNet(ctx context.Context, name string) (interface{}, error)

	// OutputDir is where output nodes write their files.
	OutputDir() string
}
