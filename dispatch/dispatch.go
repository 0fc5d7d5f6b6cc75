// Package dispatch invokes preprocessor units generically: it synthesizes
// full argument sets from a unit's declared input table plus whatever the
// caller supplies, and it builds the deferred comparison grid over every
// usable unit. It is what lets one node drive any discovered preprocessor
// without knowing its parameters.
package dispatch

import (
	"context"
	"fmt"

	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// MissingParameterError reports a required input that could not be bound by
// any synthesis rule.
type MissingParameterError struct {
	Unit  string
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("preprocessor %s requires parameter %s and no value could be inferred", e.Unit, e.Param)
}

// comboZeros maps type-named combo choices to the value a host widget would
// start from. A combo offering "INT" is a numeric selector in disguise.
var comboZeros = map[string]interface{}{
	schema.TypeInt:   0,
	schema.TypeFloat: 0.0,
}

// BuildArguments synthesizes the full argument set for one unit invocation.
// Each declared visible input binds to, in order: the caller-supplied value,
// the declared default, the numeric type's zero, or a combo choice from the
// known-zero table. A required input that binds to none of these fails with
// MissingParameterError; an optional one is simply omitted. Hidden inputs are
// never synthesized: they bind only when the host supplies them. Supplied
// values for undeclared names are dropped, so callers can offer structural
// values like resolution to units that don't take one.
func BuildArguments(unit string, table *schema.Table, supplied registry.Arguments) (registry.Arguments, error) {
	out := make(registry.Arguments, len(table.Required)+len(table.Optional))
	bind := func(fields []schema.Field, required bool) error {
		for _, f := range fields {
			if v, ok := supplied[f.Name]; ok {
				out[f.Name] = v
				continue
			}
			spec := f.Spec
			if spec.HasDefault {
				out[f.Name] = spec.Default
				continue
			}
			switch spec.Type {
			case schema.TypeInt:
				out[f.Name] = 0
				continue
			case schema.TypeFloat:
				out[f.Name] = 0.0
				continue
			case schema.TypeCombo:
				if v, ok := comboZero(spec.Choices); ok {
					out[f.Name] = v
					continue
				}
			}
			if required {
				return &MissingParameterError{Unit: unit, Param: f.Name}
			}
		}
		return nil
	}
	if err := bind(table.Required, true); err != nil {
		return nil, err
	}
	if err := bind(table.Optional, false); err != nil {
		return nil, err
	}
	for _, f := range table.Hidden {
		if v, ok := supplied[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out, nil
}

func comboZero(choices []string) (interface{}, bool) {
	for _, c := range choices {
		if v, ok := comboZeros[c]; ok {
			return v, true
		}
	}
	return nil, false
}

// Run invokes a registered unit by name with a synthesized argument set.
func Run(ctx context.Context, reg *registry.Registry, unit string, supplied registry.Arguments) (*registry.Result, error) {
	class, ok := reg.Lookup(unit)
	if !ok {
		return nil, fmt.Errorf("unknown preprocessor %q", unit)
	}
	args, err := BuildArguments(unit, class.Inputs(), supplied)
	if err != nil {
		return nil, err
	}
	res, err := class.New().Run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("running preprocessor %s: %w", unit, err)
	}
	if res == nil {
		res = &registry.Result{}
	}
	return res, nil
}
