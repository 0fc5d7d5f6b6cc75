package hostapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rowanvale/auxpack/dispatch"
	"github.com/rowanvale/auxpack/graphapi"
	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// TestPreprocessorRoute verifies the query endpoint returns the selectable
// names as a JSON array
func TestPreprocessorRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	routes := &Routes{
		Names: func() []string {
			return []string{"none", "CannyEdgePreprocessor", "HEDPreprocessor"}
		},
	}
	routes.RegisterRoutes(engine)

	req := httptest.NewRequest(http.MethodGet, "/Preprocessor", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	want := []string{"none", "CannyEdgePreprocessor", "HEDPreprocessor"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
}

func passthroughClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.PreprocessorInputs(schema.In("resolution", schema.Resolution()))
		},
		ReturnTypes: []string{"IMAGE"},
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				return &registry.Result{Values: []interface{}{args["image"]}}, nil
			})
		},
	}
}

// TestExecuteGraph verifies lazy evaluation, link resolution and the native
// ImageBatch node
func TestExecuteGraph(t *testing.T) {
	classes := registry.New()
	classes.Register("Passthrough", passthroughClass())
	rt := NewLocalRuntime(classes)

	img := imaging.New(1, 8, 8, 3)
	b := graphapi.NewBuilderWithPrefix("t")
	first := b.Node("Passthrough", map[string]interface{}{"image": img})
	second := b.Node("Passthrough", map[string]interface{}{"image": img})
	merge := b.Node(dispatch.ImageBatchClass, map[string]interface{}{
		"image1": first.Out(0),
		"image2": second.Out(0),
	})

	out, err := rt.ExecuteGraph(context.Background(), b.Graph(), merge.Out(0))
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	batched, ok := out.(*imaging.Image)
	if !ok {
		t.Fatalf("Expected an image tensor, got %T", out)
	}
	if batched.Batch != 2 {
		t.Errorf("Expected batch of 2, got %d", batched.Batch)
	}
}

// TestExecuteGraphNestedExpansion verifies a node that expands into a further
// graph gets its references resolved
func TestExecuteGraphNestedExpansion(t *testing.T) {
	classes := registry.New()
	classes.Register("Passthrough", passthroughClass())
	classes.Register("Expander", &registry.Class{
		Inputs:      func() *schema.Table { return schema.PreprocessorInputs() },
		ReturnTypes: []string{"IMAGE"},
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				inner := graphapi.NewBuilderWithPrefix("inner")
				n := inner.Node("Passthrough", map[string]interface{}{"image": args["image"]})
				return &registry.Result{
					Values: []interface{}{n.Out(0)},
					Expand: inner.Graph(),
				}, nil
			})
		},
	})
	rt := NewLocalRuntime(classes)

	img := imaging.New(1, 4, 4, 3)
	b := graphapi.NewBuilderWithPrefix("t")
	n := b.Node("Expander", map[string]interface{}{"image": img})

	out, err := rt.ExecuteGraph(context.Background(), b.Graph(), n.Out(0))
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	if out != img {
		t.Errorf("Expected the original tensor back through the expansion, got %T", out)
	}
}

// TestExecuteGraphErrors verifies unknown references and bad slots fail
func TestExecuteGraphErrors(t *testing.T) {
	rt := NewLocalRuntime(registry.New())
	g := graphapi.Graph{}
	if _, err := rt.ExecuteGraph(context.Background(), g, graphapi.Output{Node: "missing", Slot: 0}); err == nil {
		t.Error("Expected error for unknown node")
	}

	classes := registry.New()
	classes.Register("Passthrough", passthroughClass())
	rt = NewLocalRuntime(classes)
	b := graphapi.NewBuilderWithPrefix("t")
	n := b.Node("Passthrough", map[string]interface{}{"image": imaging.New(1, 2, 2, 3)})
	if _, err := rt.ExecuteGraph(context.Background(), b.Graph(), n.Out(5)); err == nil {
		t.Error("Expected error for out of range slot")
	}
}

// TestLocalRuntimeFolders verifies the model folder contract
func TestLocalRuntimeFolders(t *testing.T) {
	rt := NewLocalRuntime(registry.New())
	rt.Folders["controlnet"] = []string{"control_v11p_sd15_canny.pth"}

	if _, err := rt.LoadControlNet(context.Background(), "control_v11p_sd15_canny.pth"); err != nil {
		t.Errorf("Expected known model to load, got %v", err)
	}
	if _, err := rt.LoadControlNet(context.Background(), "nope.pth"); err == nil {
		t.Error("Expected unknown model to fail")
	}

	names := rt.FileNames("controlnet")
	names[0] = "mutated"
	if rt.Folders["controlnet"][0] != "control_v11p_sd15_canny.pth" {
		t.Error("Expected FileNames to return a copy")
	}
}
