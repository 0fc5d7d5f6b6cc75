package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/rowanvale/auxpack/schema"
)

func stubClass(tag string) *Class {
	return &Class{
		Inputs:      func() *schema.Table { return schema.PreprocessorInputs() },
		ReturnTypes: []string{"IMAGE"},
		Category:    "ControlNet Preprocessors",
		New: func() Runner {
			return RunnerFunc(func(ctx context.Context, args Arguments) (*Result, error) {
				return &Result{Values: []interface{}{tag}}, nil
			})
		},
	}
}

func goodSource(name string, units ...string) Source {
	return NewSource(name, func() (*Mappings, error) {
		m := NewMappings()
		for _, u := range units {
			m.Register(u, stubClass(name+"/"+u))
		}
		return m, nil
	})
}

// TestDiscoverTolerance verifies that failing and incomplete sources are
// skipped while the rest register their units
func TestDiscoverTolerance(t *testing.T) {
	sources := []Source{
		goodSource("canny", "CannyEdgePreprocessor"),
		NewSource("dwpose", func() (*Mappings, error) {
			return nil, errors.New("no detector backend configured")
		}),
		goodSource("lineart", "LineArtPreprocessor", "LineartStandardPreprocessor"),
		NewSource("sketch", func() (*Mappings, error) {
			return nil, fmt.Errorf("stub module: %w", ErrIncomplete)
		}),
		NewSource("normalbae", func() (*Mappings, error) {
			return nil, fmt.Errorf("loading model table: %w", errors.New("checkpoint dir missing"))
		}),
	}

	reg, diags := Discover(sources)

	want := []string{"CannyEdgePreprocessor", "LineArtPreprocessor", "LineartStandardPreprocessor"}
	if !reflect.DeepEqual(reg.Names(), want) {
		t.Errorf("Expected units %v, got %v", want, reg.Names())
	}
	if len(diags.Loaded) != 2 {
		t.Errorf("Expected 2 loaded sources, got %v", diags.Loaded)
	}
	if len(diags.Skipped) != 1 || diags.Skipped[0] != "sketch" {
		t.Errorf("Expected sketch skipped silently, got %v", diags.Skipped)
	}
	if len(diags.Failures) != 2 {
		t.Fatalf("Expected 2 failures, got %d", len(diags.Failures))
	}
	if diags.OK() {
		t.Error("Expected OK to report failures")
	}
	shorts := diags.Shorts()
	if len(shorts) != 2 || !strings.Contains(shorts[1], "checkpoint dir missing") {
		t.Errorf("Expected short summaries with the innermost cause, got %v", shorts)
	}
}

// TestDiscoverDeterminism verifies two passes over the same sources agree
func TestDiscoverDeterminism(t *testing.T) {
	sources := []Source{
		goodSource("pose", "OpenposePreprocessor", "DWPreprocessor"),
		goodSource("depth", "MiDaS-DepthMapPreprocessor", "Zoe-DepthMapPreprocessor"),
		goodSource("edges", "CannyEdgePreprocessor"),
	}
	first, _ := Discover(sources)
	second, _ := Discover(sources)
	if !reflect.DeepEqual(first.Names(), second.Names()) {
		t.Errorf("Expected identical orders, got %v then %v", first.Names(), second.Names())
	}
	if !reflect.DeepEqual(first.AvailableNames(), second.AvailableNames()) {
		t.Error("Expected identical available name lists")
	}
}

// TestShadowingKeepsPosition verifies a re-registered name keeps its original
// slot and takes the newest class
func TestShadowingKeepsPosition(t *testing.T) {
	sources := []Source{
		goodSource("first", "A", "Shared", "B"),
		goodSource("second", "Shared", "C"),
	}
	reg, _ := Discover(sources)

	want := []string{"A", "Shared", "B", "C"}
	if !reflect.DeepEqual(reg.Names(), want) {
		t.Fatalf("Expected order %v, got %v", want, reg.Names())
	}

	class, ok := reg.Lookup("Shared")
	if !ok {
		t.Fatal("Expected Shared to resolve")
	}
	res, err := class.New().Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Failed to run unit: %v", err)
	}
	if res.Values[0] != "second/Shared" {
		t.Errorf("Expected the later registration to win, got %v", res.Values[0])
	}
}

// TestAvailableNames verifies the sentinel and exclusion behavior
func TestAvailableNames(t *testing.T) {
	reg, _ := Discover([]Source{goodSource("all", "A", "B", "C")})

	names := reg.AvailableNames("B")
	want := []string{None, "A", "C"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}

	if got := reg.AvailableNames(); got[0] != None {
		t.Errorf("Expected %q first, got %v", None, got)
	}
}

// TestDisplayNameMerge verifies labels merge across sources with fallback to
// the unit name
func TestDisplayNameMerge(t *testing.T) {
	sources := []Source{
		NewSource("canny", func() (*Mappings, error) {
			m := NewMappings()
			m.Register("CannyEdgePreprocessor", stubClass("canny"))
			m.Display("CannyEdgePreprocessor", "Canny Edge")
			return m, nil
		}),
		goodSource("bare", "TilePreprocessor"),
	}
	reg, _ := Discover(sources)
	if reg.DisplayName("CannyEdgePreprocessor") != "Canny Edge" {
		t.Errorf("Expected label Canny Edge, got %s", reg.DisplayName("CannyEdgePreprocessor"))
	}
	if reg.DisplayName("TilePreprocessor") != "TilePreprocessor" {
		t.Errorf("Expected fallback to name, got %s", reg.DisplayName("TilePreprocessor"))
	}
}

// TestFailureShortForm verifies the one line diagnostic keeps only the last
// line of a multi-line cause
func TestFailureShortForm(t *testing.T) {
	err := errors.New("model index corrupt\nexpected 3 entries\nfound 0")
	f := Failure{Source: "semseg", Err: err}
	want := "failed to load source semseg because found 0"
	if f.Short() != want {
		t.Errorf("Expected %q, got %q", want, f.Short())
	}
	full := f.Full()
	if full == f.Short() {
		t.Error("Expected full diagnostic to differ from short form")
	}
}
