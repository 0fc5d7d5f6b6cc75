package dispatch

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// TestBuildArgumentsSynthesis walks the binding rules in order
func TestBuildArgumentsSynthesis(t *testing.T) {
	table := schema.NewTable().
		Require(
			schema.In("image", schema.Image()),
			schema.In("bare_int", schema.Spec{Type: schema.TypeInt}),
			schema.In("bare_float", schema.Spec{Type: schema.TypeFloat}),
			schema.In("numeric_combo", schema.Spec{Type: schema.TypeCombo, Choices: []string{"FLOAT", "INT"}}),
		).
		Option(
			schema.In("resolution", schema.Resolution()),
			schema.In("threshold", schema.Int(100).Range(0, 255)),
			schema.In("mystery", schema.Typed("OPTICAL_FLOW")),
		)

	img := "image-payload"
	args, err := BuildArguments("TestUnit", table, registry.Arguments{
		"image":      img,
		"resolution": 768,
		"dropped":    true,
	})
	if err != nil {
		t.Fatalf("Failed to build arguments: %v", err)
	}

	want := registry.Arguments{
		"image":         img,
		"bare_int":      0,
		"bare_float":    0.0,
		"numeric_combo": 0.0,
		"resolution":    768,
		"threshold":     100,
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("Expected %v, got %v", want, args)
	}
	if _, ok := args["mystery"]; ok {
		t.Error("Expected unbindable optional input to be omitted")
	}
	if _, ok := args["dropped"]; ok {
		t.Error("Expected undeclared supplied value to be dropped")
	}
}

// TestBuildArgumentsDefaults verifies the common aux unit case: image plus
// declared defaults, nothing else supplied
func TestBuildArgumentsDefaults(t *testing.T) {
	table := schema.PreprocessorInputs(
		schema.In("resolution", schema.Resolution()),
		schema.In("safe", schema.EnableDisable()),
	)
	args, err := BuildArguments("HEDPreprocessor", table, registry.Arguments{"image": "img"})
	if err != nil {
		t.Fatalf("Failed to build arguments: %v", err)
	}
	want := registry.Arguments{"image": "img", "resolution": 512, "safe": "enable"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("Expected %v, got %v", want, args)
	}

	again, err := BuildArguments("HEDPreprocessor", table, registry.Arguments{"image": "img"})
	if err != nil {
		t.Fatalf("Failed to build arguments twice: %v", err)
	}
	if !reflect.DeepEqual(args, again) {
		t.Errorf("Expected identical argument sets across calls, got %v and %v", args, again)
	}
}

// TestBuildArgumentsMissingRequired verifies the unbound required failure
func TestBuildArgumentsMissingRequired(t *testing.T) {
	table := schema.NewTable().Require(
		schema.In("image", schema.Image()),
		schema.In("mask", schema.Mask()),
	)
	_, err := BuildArguments("InpaintPreprocessor", table, registry.Arguments{"image": "img"})
	if err == nil {
		t.Fatal("Expected an error for unbound required mask")
	}
	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingParameterError, got %T: %v", err, err)
	}
	if missing.Unit != "InpaintPreprocessor" || missing.Param != "mask" {
		t.Errorf("Expected unit and parameter in error, got %+v", missing)
	}
}

// TestRun verifies lookup, synthesis and invocation plumbing
func TestRun(t *testing.T) {
	var seen registry.Arguments
	reg := registry.New()
	reg.Register("EchoUnit", &registry.Class{
		Inputs: func() *schema.Table {
			return schema.PreprocessorInputs(schema.In("resolution", schema.Resolution()))
		},
		ReturnTypes: []string{"IMAGE"},
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				seen = args
				return &registry.Result{Values: []interface{}{args["image"]}}, nil
			})
		},
	})

	res, err := Run(context.Background(), reg, "EchoUnit", registry.Arguments{"image": "img"})
	if err != nil {
		t.Fatalf("Failed to run unit: %v", err)
	}
	if res.Values[0] != "img" {
		t.Errorf("Expected image passthrough, got %v", res.Values[0])
	}
	if seen["resolution"] != 512 {
		t.Errorf("Expected synthesized resolution 512, got %v", seen["resolution"])
	}
	if res.Expand != nil {
		t.Error("Expected plain tuple result")
	}

	if _, err := Run(context.Background(), reg, "NoSuchUnit", nil); err == nil {
		t.Error("Expected error for unknown unit")
	}
}

// TestRunWrapsUnitError verifies unit failures surface with the unit name
func TestRunWrapsUnitError(t *testing.T) {
	boom := errors.New("detector exploded")
	reg := registry.New()
	reg.Register("Faulty", &registry.Class{
		Inputs: func() *schema.Table { return schema.PreprocessorInputs() },
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				return nil, boom
			})
		},
	})
	_, err := Run(context.Background(), reg, "Faulty", registry.Arguments{"image": "img"})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped unit error, got %v", err)
	}
}
