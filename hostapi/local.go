package hostapi

import (
	"context"
	"fmt"
	"os"

	"github.com/rowanvale/auxpack/dispatch"
	"github.com/rowanvale/auxpack/graphapi"
	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// ControlNet is the opaque model handle the local runtime hands out.
type ControlNet struct {
	Name string
}

// LocalRuntime executes the pack in-process: it satisfies Runtime with full
// graph expansion support and evaluates ephemeral graphs against a class
// registry. It exists for library callers and tests; a real graph host brings
// its own executor.
type LocalRuntime struct {
	Classes *registry.Registry
	Folders map[string][]string
	Out     string
}

func NewLocalRuntime(classes *registry.Registry) *LocalRuntime {
	return &LocalRuntime{
		Classes: classes,
		Folders: make(map[string][]string),
	}
}

func (rt *LocalRuntime) SupportsGraphExpansion() bool { return true }

func (rt *LocalRuntime) FileNames(folder string) []string {
	names := rt.Folders[folder]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func (rt *LocalRuntime) LoadControlNet(ctx context.Context, name string) (interface{}, error) {
	for _, have := range rt.Folders["controlnet"] {
		if have == name {
			return &ControlNet{Name: name}, nil
		}
	}
	return nil, fmt.Errorf("controlnet model %q not found", name)
}

func (rt *LocalRuntime) OutputDir() string {
	if rt.Out == "" {
		return os.TempDir()
	}
	return rt.Out
}

// ExecuteGraph evaluates an ephemeral graph far enough to produce the value
// behind one output reference. Nodes run lazily and at most once; nested
// expansions are evaluated recursively.
func (rt *LocalRuntime) ExecuteGraph(ctx context.Context, g graphapi.Graph, out graphapi.Output) (interface{}, error) {
	run := newGraphRun(rt, g)
	return run.resolve(ctx, out)
}

type graphRun struct {
	rt    *LocalRuntime
	graph graphapi.Graph
	done  map[string]*registry.Result
	busy  map[string]bool
}

func newGraphRun(rt *LocalRuntime, g graphapi.Graph) *graphRun {
	return &graphRun{
		rt:    rt,
		graph: g,
		done:  make(map[string]*registry.Result),
		busy:  make(map[string]bool),
	}
}

func (x *graphRun) resolve(ctx context.Context, out graphapi.Output) (interface{}, error) {
	res, err := x.run(ctx, out.Node)
	if err != nil {
		return nil, err
	}
	if out.Slot < 0 || out.Slot >= len(res.Values) {
		return nil, fmt.Errorf("node %s has no output slot %d", out.Node, out.Slot)
	}
	return res.Values[out.Slot], nil
}

func (x *graphRun) run(ctx context.Context, id string) (*registry.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res, ok := x.done[id]; ok {
		return res, nil
	}
	if x.busy[id] {
		return nil, fmt.Errorf("graph cycle at node %s", id)
	}
	x.busy[id] = true
	defer delete(x.busy, id)

	node, ok := x.graph[id]
	if !ok {
		return nil, fmt.Errorf("graph references unknown node %s", id)
	}

	args := make(registry.Arguments, len(node.Inputs))
	for name, value := range node.Inputs {
		if ref, ok := value.(graphapi.Output); ok {
			resolved, err := x.resolve(ctx, ref)
			if err != nil {
				return nil, err
			}
			args[name] = resolved
			continue
		}
		args[name] = value
	}
	x.injectHidden(id, node.ClassType, args)

	res, err := x.invoke(ctx, node.ClassType, args)
	if err != nil {
		return nil, err
	}

	if res.Expand != nil {
		sub := newGraphRun(x.rt, res.Expand)
		resolved := make([]interface{}, len(res.Values))
		for i, v := range res.Values {
			if ref, ok := v.(graphapi.Output); ok {
				resolved[i], err = sub.resolve(ctx, ref)
				if err != nil {
					return nil, err
				}
				continue
			}
			resolved[i] = v
		}
		res = &registry.Result{Values: resolved}
	}

	x.done[id] = res
	return res, nil
}

// injectHidden fills the hidden inputs a class declares with the executor's
// values: the graph under evaluation for PROMPT, the node's own id for
// UNIQUE_ID. Inputs the graph already carries win.
func (x *graphRun) injectHidden(id, classType string, args registry.Arguments) {
	class, ok := x.rt.Classes.Lookup(classType)
	if !ok {
		return
	}
	for _, f := range class.Inputs().Hidden {
		if _, ok := args[f.Name]; ok {
			continue
		}
		switch f.Spec.Type {
		case schema.TagPrompt:
			args[f.Name] = x.graph
		case schema.TagUniqueID:
			args[f.Name] = id
		}
	}
}

// invoke runs one node class. ImageBatch is a host core node, everything
// else resolves through the pack's class registry.
func (x *graphRun) invoke(ctx context.Context, classType string, args registry.Arguments) (*registry.Result, error) {
	if classType == dispatch.ImageBatchClass {
		first, ok1 := args["image1"].(*imaging.Image)
		second, ok2 := args["image2"].(*imaging.Image)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("ImageBatch expects two image tensors, got %T and %T", args["image1"], args["image2"])
		}
		return &registry.Result{Values: []interface{}{imaging.Batch(first, second)}}, nil
	}
	return dispatch.Run(ctx, x.rt.Classes, classType, args)
}
