// Package nodes assembles the shippable pack: wrapper sources discovered
// into a unit registry, the meta nodes layered over it (generic dispatch,
// preview grid composition, controlnet selection, hint enhancement), and the
// class table plus query routes a host mounts.
package nodes

import (
	"fmt"

	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
)

// Category is the menu root the pack's own nodes hang under. Wrapper units
// carry their own subcategories.
const Category = "ControlNet Preprocessors"

func imageArg(args registry.Arguments, name string) (*imaging.Image, error) {
	img, ok := args[name].(*imaging.Image)
	if !ok {
		return nil, fmt.Errorf("input %s is %T, want an image tensor", name, args[name])
	}
	return img, nil
}
