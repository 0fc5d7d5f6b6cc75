package nodes

import (
	"context"
	"testing"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/dispatch"
	"github.com/rowanvale/auxpack/graphapi"
	"github.com/rowanvale/auxpack/hostapi"
	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
)

// buildPack assembles the pack over an in-process runtime with one controlnet
// on disk. rt.Classes points at the assembled table so expansions execute.
func buildPack(t *testing.T) (*Pack, *hostapi.LocalRuntime) {
	t.Helper()
	annotator.ResetBackends()
	rt := hostapi.NewLocalRuntime(registry.New())
	rt.Folders["controlnet"] = []string{"control_v11p_sd15_canny.pth"}
	rt.Out = t.TempDir()
	pack := Build(rt, Options{})
	rt.Classes = pack.Classes
	return pack, rt
}

func grayImage(batch, h, w int, v float32) *imaging.Image {
	m := imaging.New(batch, h, w, 3)
	for i := range m.Pix {
		m.Pix[i] = v
	}
	return m
}

// TestBuildAssemblesClasses verifies units and pack nodes merge into one table
// with their display names
func TestBuildAssemblesClasses(t *testing.T) {
	pack, _ := buildPack(t)

	for _, name := range []string{
		"CannyEdgePreprocessor",
		dispatch.AIOClassName,
		SelectorClassName,
		"HintImageEnchance",
		"PixelPerfectResolution",
		ExecuteAllClassName,
		dispatch.AddTextClassName,
	} {
		if _, ok := pack.Classes.Lookup(name); !ok {
			t.Errorf("Expected class %s in the table", name)
		}
	}

	labels := map[string]string{
		dispatch.AIOClassName: "AIO Aux Preprocessor",
		SelectorClassName:     "Preprocessor Selector",
		ExecuteAllClassName:   "Execute All ControlNet Preprocessors",
		"HintImageEnchance":   "Enchance And Resize Hint Images",
	}
	for name, want := range labels {
		if got := pack.Classes.DisplayName(name); got != want {
			t.Errorf("Expected display name %q for %s, got %q", want, name, got)
		}
	}

	if len(pack.Diags.Failures) == 0 {
		t.Error("Expected model sources in the diagnostics without a backend")
	}
}

// TestAvailableNames verifies the sentinel leads and exclusions hold
func TestAvailableNames(t *testing.T) {
	pack, _ := buildPack(t)

	names := pack.AvailableNames()
	if names[0] != registry.None {
		t.Fatalf("Expected %q first, got %v", registry.None, names[0])
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	if !seen["CannyEdgePreprocessor"] {
		t.Error("Expected CannyEdgePreprocessor selectable")
	}
	for _, excluded := range []string{"InpaintPreprocessor", "SavePoseKpsAsJsonFile", "MaskOptFlow"} {
		if seen[excluded] {
			t.Errorf("Expected %s excluded from selection", excluded)
		}
	}
	if _, ok := pack.Units.Lookup("InpaintPreprocessor"); !ok {
		t.Error("Expected excluded units to stay registered")
	}
}

// TestBuildOptions verifies source disabling and extra exclusions
func TestBuildOptions(t *testing.T) {
	annotator.ResetBackends()
	rt := hostapi.NewLocalRuntime(registry.New())
	pack := Build(rt, Options{
		DisabledSources: []string{"canny"},
		ExcludeFromAIO:  []string{"BinaryPreprocessor"},
	})

	if _, ok := pack.Classes.Lookup("CannyEdgePreprocessor"); ok {
		t.Error("Expected the canny source disabled")
	}
	for _, n := range pack.AvailableNames() {
		if n == "BinaryPreprocessor" {
			t.Error("Expected BinaryPreprocessor excluded from selection")
		}
	}
	if _, ok := pack.Classes.Lookup("BinaryPreprocessor"); !ok {
		t.Error("Expected BinaryPreprocessor still registered")
	}
}

// TestAIONode verifies the sentinel passthrough and unit dispatch
func TestAIONode(t *testing.T) {
	pack, _ := buildPack(t)
	img := grayImage(1, 8, 8, 0.9)

	res, err := dispatch.Run(context.Background(), pack.Classes, dispatch.AIOClassName, registry.Arguments{
		"image": img,
	})
	if err != nil {
		t.Fatalf("Failed to run the sentinel: %v", err)
	}
	if res.Values[0] != interface{}(img) {
		t.Error("Expected the sentinel to pass the tensor through")
	}

	res, err = dispatch.Run(context.Background(), pack.Classes, dispatch.AIOClassName, registry.Arguments{
		"image":        img,
		"preprocessor": "BinaryPreprocessor",
		"resolution":   64,
	})
	if err != nil {
		t.Fatalf("Failed to dispatch to a unit: %v", err)
	}
	out, ok := res.Values[0].(*imaging.Image)
	if !ok {
		t.Fatalf("Expected an image tensor, got %T", res.Values[0])
	}
	if out == img {
		t.Error("Expected a processed tensor, not the input")
	}
	if out.At(0, 4, 4, 0) != 0 {
		t.Errorf("Expected a bright frame to threshold black, got %v", out.At(0, 4, 4, 0))
	}
}

// TestSelectorThroughGraph verifies the hidden prompt plumbing: the style
// choice rides the node's own graph entry, not a declared input
func TestSelectorThroughGraph(t *testing.T) {
	_, rt := buildPack(t)
	img := grayImage(1, 8, 8, 0.2)

	b := graphapi.NewBuilderWithPrefix("t")
	sel := b.Node(SelectorClassName, map[string]interface{}{
		"cn":            "control_v11p_sd15_canny.pth",
		"image":         img,
		"resolution":    64,
		"select_styles": "ScribblePreprocessor",
	})

	model, err := rt.ExecuteGraph(context.Background(), b.Graph(), sel.Out(0))
	if err != nil {
		t.Fatalf("Failed to execute selector: %v", err)
	}
	if model == nil {
		t.Error("Expected a controlnet payload")
	}

	out, err := rt.ExecuteGraph(context.Background(), b.Graph(), sel.Out(1))
	if err != nil {
		t.Fatalf("Failed to resolve the image output: %v", err)
	}
	processed, ok := out.(*imaging.Image)
	if !ok {
		t.Fatalf("Expected an image tensor, got %T", out)
	}
	if processed == img {
		t.Error("Expected the selected style applied")
	}
	if processed.Height != 64 || processed.Width != 64 {
		t.Errorf("Expected a 64x64 hint, got %dx%d", processed.Height, processed.Width)
	}
	// a dark frame is all stroke under the scribble midpoint
	if processed.At(0, 32, 32, 0) != 1 {
		t.Errorf("Expected stroke at the center, got %v", processed.At(0, 32, 32, 0))
	}
}

// TestSelectorWithoutStyle verifies the selector acts as a plain loader when
// the UI injected no choice
func TestSelectorWithoutStyle(t *testing.T) {
	_, rt := buildPack(t)
	img := grayImage(1, 8, 8, 0.5)

	b := graphapi.NewBuilderWithPrefix("t")
	sel := b.Node(SelectorClassName, map[string]interface{}{
		"cn":    "control_v11p_sd15_canny.pth",
		"image": img,
	})

	out, err := rt.ExecuteGraph(context.Background(), b.Graph(), sel.Out(1))
	if err != nil {
		t.Fatalf("Failed to execute selector: %v", err)
	}
	if out != interface{}(img) {
		t.Error("Expected the image passed through untouched")
	}
}

// TestExecuteAllGrid verifies the fan-out composes and the expansion executes
// into one labeled batch per usable unit
func TestExecuteAllGrid(t *testing.T) {
	pack, rt := buildPack(t)
	img := grayImage(1, 8, 8, 0.6)

	res, err := dispatch.Run(context.Background(), pack.Classes, ExecuteAllClassName, registry.Arguments{
		"image":      img,
		"resolution": 64,
	})
	if err != nil {
		t.Fatalf("Failed to compose the grid: %v", err)
	}
	if len(res.Expand) == 0 {
		t.Fatal("Expected an expansion graph")
	}
	ref, ok := res.Values[0].(graphapi.Output)
	if !ok {
		t.Fatalf("Expected a deferred output reference, got %T", res.Values[0])
	}

	units := len(pack.AvailableNames()) - 1
	var aios, labels, merges int
	for _, node := range res.Expand {
		switch node.ClassType {
		case dispatch.AIOClassName:
			aios++
		case dispatch.AddTextClassName:
			labels++
		case dispatch.ImageBatchClass:
			merges++
		}
	}
	if aios != units || labels != units {
		t.Errorf("Expected %d invocations and labels, got %d and %d", units, aios, labels)
	}
	if merges != units-1 {
		t.Errorf("Expected %d merges, got %d", units-1, merges)
	}

	out, err := rt.ExecuteGraph(context.Background(), res.Expand, ref)
	if err != nil {
		t.Fatalf("Failed to execute the expansion: %v", err)
	}
	grid, ok := out.(*imaging.Image)
	if !ok {
		t.Fatalf("Expected an image batch, got %T", out)
	}
	if grid.Batch != units {
		t.Errorf("Expected %d frames in the grid, got %d", units, grid.Batch)
	}
}

// TestExecuteAllNeedsExpansion verifies the capability check
func TestExecuteAllNeedsExpansion(t *testing.T) {
	pack, _ := buildPack(t)

	_, err := dispatch.ComposePreviewGrid(grayImage(1, 4, 4, 0.5), 64, pack.Units, nil, pack.NotSupported)
	if err == nil {
		t.Fatal("Expected a capability error without expansion support")
	}
}
