// Package wrappers holds the compiled-in unit sources, one per wrapped
// detector module. Arithmetic detectors run in-process through the annotator
// package; model-backed ones bind to the configured inference backend at
// load time, so without one those sources fail into discovery diagnostics
// instead of the registry.
package wrappers

import (
	"context"
	"fmt"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/hostapi"
	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// the host UI menu subtree each unit files under
const (
	categoryLines   = "ControlNet Preprocessors/Line Extractors"
	categoryDepth   = "ControlNet Preprocessors/Normal and Depth Estimators"
	categoryPose    = "ControlNet Preprocessors/Faces and Poses Estimators"
	categorySemSeg  = "ControlNet Preprocessors/Semantic Segmentation"
	categoryT2I     = "ControlNet Preprocessors/T2IAdapter-only"
	categoryTile    = "ControlNet Preprocessors/tile"
	categoryRecolor = "ControlNet Preprocessors/Recolor"
	categoryFlow    = "ControlNet Preprocessors/Optical Flow"
	categoryOther   = "ControlNet Preprocessors/others"
	categoryPoseKps = "ControlNet Preprocessors/Pose Keypoint Postprocess"
)

// Sources lists every wrapper source in load order. rt gives the file
// writing nodes their output directory.
func Sources(rt hostapi.Runtime) []registry.Source {
	return []registry.Source{
		registry.NewSource("binary", binarySource),
		registry.NewSource("canny", cannySource),
		registry.NewSource("color", colorSource),
		registry.NewSource("depth_anything", depthAnythingSource),
		registry.NewSource("diffusion_edge", diffusionEdgeSource),
		registry.NewSource("dwpose", dwposeSource),
		registry.NewSource("hed", hedSource),
		registry.NewSource("inpaint", inpaintSource),
		registry.NewSource("leres", leresSource),
		registry.NewSource("lineart", lineartSource),
		registry.NewSource("lineart_anime", lineartAnimeSource),
		registry.NewSource("lineart_standard", lineartStandardSource),
		registry.NewSource("manga_line", mangaLineSource),
		registry.NewSource("mesh_graphormer", meshGraphormerSource),
		registry.NewSource("midas", midasSource),
		registry.NewSource("mlsd", mlsdSource),
		registry.NewSource("normalbae", normalBAESource),
		registry.NewSource("oneformer", oneformerSource),
		registry.NewSource("openpose", openposeSource),
		registry.NewSource("pidinet", pidinetSource),
		registry.NewSource("pose_keypoint_postprocess", func() (*registry.Mappings, error) {
			return poseKpsSource(rt)
		}),
		registry.NewSource("recolor", recolorSource),
		registry.NewSource("scribble", scribbleSource),
		registry.NewSource("shuffle", shuffleSource),
		registry.NewSource("tile", tileSource),
		registry.NewSource("uniformer", uniformerSource),
		registry.NewSource("unimatch", unimatchSource),
		registry.NewSource("zoe", zoeSource),
	}
}

func imageArg(args registry.Arguments, name string) (*imaging.Image, error) {
	img, ok := args[name].(*imaging.Image)
	if !ok {
		return nil, fmt.Errorf("input %s is %T, want an image tensor", name, args[name])
	}
	return img, nil
}

// frameDetector is what the arithmetic detectors in the annotator package
// implement.
type frameDetector interface {
	Detect(ctx context.Context, frame *imaging.Image) (*imaging.Image, error)
}

// localClass builds a unit class around an in-process detector. build shapes
// the detector from one invocation's arguments.
func localClass(category string, inputs func() *schema.Table, build func(args registry.Arguments) frameDetector) *registry.Class {
	return &registry.Class{
		Inputs:      inputs,
		ReturnTypes: []string{schema.TypeImage},
		Category:    category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "image")
				if err != nil {
					return nil, err
				}
				out, err := annotator.Run(ctx, img, args.Int("resolution", 512), build(args).Detect)
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{out}}, nil
			})
		},
	}
}

// modelSpec describes one backend-served unit: how to shape the detection
// request from an invocation and how to lay out the results.
type modelSpec struct {
	detector    string
	category    string
	inputs      func() *schema.Table
	returnTypes []string
	returnNames []string
	// model picks the checkpoint argument, when the unit exposes one.
	model func(args registry.Arguments) string
	// params carries unit specific knobs into the task.
	params func(args registry.Arguments) map[string]interface{}
	// outputs lays out the result values; nil means just the hint image.
	outputs func(d *annotator.Detection) ([]interface{}, error)
}

// modelClass builds a unit class that defers to an inference backend.
func modelClass(b annotator.Backend, spec modelSpec) *registry.Class {
	returnTypes := spec.returnTypes
	if returnTypes == nil {
		returnTypes = []string{schema.TypeImage}
	}
	return &registry.Class{
		Inputs:      spec.inputs,
		ReturnTypes: returnTypes,
		ReturnNames: spec.returnNames,
		Category:    spec.category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "image")
				if err != nil {
					return nil, err
				}
				task := annotator.Task{
					Detector:   spec.detector,
					Image:      img,
					Resolution: args.Int("resolution", 512),
				}
				if spec.model != nil {
					task.Model = spec.model(args)
				}
				if spec.params != nil {
					task.Params = spec.params(args)
				}
				d, err := b.Detect(ctx, task)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", spec.detector, err)
				}
				if spec.outputs != nil {
					values, err := spec.outputs(d)
					if err != nil {
						return nil, err
					}
					return &registry.Result{Values: values}, nil
				}
				return &registry.Result{Values: []interface{}{d.Image}}, nil
			})
		},
	}
}

// backend resolves the configured inference backend, failing the source load
// when none is registered.
func backend(unit string) (annotator.Backend, error) {
	b, err := annotator.Default()
	if err != nil {
		return nil, fmt.Errorf("%s needs an inference backend: %w", unit, err)
	}
	return b, nil
}

func resolutionField() schema.Field {
	return schema.In("resolution", schema.Resolution())
}
