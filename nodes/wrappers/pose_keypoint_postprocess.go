package wrappers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/hostapi"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// Tracking maps "<part>_<personIndex>" to one [x_min, y_min, x_max, y_max]
// box per frame, in canvas pixels. An empty box means the part was not
// detected in that frame.
type Tracking map[string][][4]int

// lapaColors are the stock facial part colors, LAPA palette.
var lapaColors = map[string]string{
	"skin":        "rgb(0, 153, 255)",
	"left_eye":    "rgb(0, 204, 153)",
	"right_eye":   "rgb(255, 153, 0)",
	"nose":        "rgb(255, 102, 255)",
	"upper_lip":   "rgb(102, 0, 51)",
	"inner_mouth": "rgb(255, 204, 255)",
	"lower_lip":   "rgb(255, 0, 102)",
}

// upperBodyParts maps each tracked part to its keypoint group in the 18
// point body layout and the default box size written into its widget.
var upperBodyParts = []struct {
	name string
	kps  []int
	w, h int
}{
	{"Head", []int{0, 14, 15, 16, 17}, 50, 50},
	{"Neck", []int{1}, 40, 40},
	{"Shoulder", []int{2, 5}, 60, 40},
	{"Torso", []int{1, 2, 5, 8, 11}, 80, 100},
	{"RArm", []int{2, 3}, 40, 60},
	{"RForearm", []int{3, 4}, 40, 60},
	{"RHand", []int{4}, 40, 40},
	{"LArm", []int{5, 6}, 40, 60},
	{"LForearm", []int{6, 7}, 40, 60},
	{"LHand", []int{7}, 40, 40},
}

func poseKpsSource(rt hostapi.Runtime) (*registry.Mappings, error) {
	return registry.NewMappings().
		Register("SavePoseKpsAsJsonFile", savePoseKpsClass(rt)).
		Display("SavePoseKpsAsJsonFile", "Save Pose Keypoints").
		Register("FacialPartColoringFromPoseKps", facialColoringClass()).
		Display("FacialPartColoringFromPoseKps", "Colorize Facial Parts from PoseKPS").
		Register("UpperBodyTrackingFromPoseKps", upperBodyTrackingClass()).
		Display("UpperBodyTrackingFromPoseKps", "Upper Body Tracking From PoseKps (InstanceDiffusion)").
		Register("RenderPeopleKps", renderPeopleClass()).
		Display("RenderPeopleKps", "Render Pose JSON (Human)").
		Register("RenderAnimalKps", renderAnimalClass()).
		Display("RenderAnimalKps", "Render Pose JSON (Animal)"), nil
}

func poseKpsArg(args registry.Arguments, name string) ([]annotator.PoseFrame, error) {
	frames, err := annotator.PoseFrames(args[name])
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", name, err)
	}
	return frames, nil
}

func savePoseKpsClass(rt hostapi.Runtime) *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("pose_kps", schema.Typed("POSE_KEYPOINT")),
				schema.In("filename_prefix", schema.String("PoseKeypoint")),
			)
		},
		ReturnTypes: []string{},
		Category:    categoryPoseKps,
		OutputNode:  true,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				frames, err := poseKpsArg(args, "pose_kps")
				if err != nil {
					return nil, err
				}
				raw, err := json.Marshal(frames)
				if err != nil {
					return nil, fmt.Errorf("encoding pose keypoints: %w", err)
				}
				prefix := args.String("filename_prefix", "PoseKeypoint")
				path := filepath.Join(rt.OutputDir(), fmt.Sprintf("%s_%s.json", prefix, uuid.New().String()))
				if err := os.WriteFile(path, raw, 0o644); err != nil {
					return nil, fmt.Errorf("writing pose keypoints: %w", err)
				}
				return &registry.Result{}, nil
			})
		},
	}
}

func facialColoringClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			t := schema.NewTable().Require(
				schema.In("pose_kps", schema.Typed("POSE_KEYPOINT")),
				schema.In("mode", schema.Combo("point", "polygon").WithDefault("polygon")),
			)
			for _, part := range annotator.FacialParts {
				t.Require(schema.In(part, schema.String(lapaColors[part])))
			}
			return t
		},
		ReturnTypes: []string{schema.TypeImage},
		Category:    categoryPoseKps,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				frames, err := poseKpsArg(args, "pose_kps")
				if err != nil {
					return nil, err
				}
				colors := make(map[string][3]float32, len(annotator.FacialParts))
				for _, part := range annotator.FacialParts {
					c, err := parseColor(args.String(part, lapaColors[part]))
					if err != nil {
						return nil, fmt.Errorf("input %s: %w", part, err)
					}
					colors[part] = c
				}
				img, err := annotator.ColorFacialParts(frames, colors, args.String("mode", "polygon") == "polygon")
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{img}}, nil
			})
		},
	}
}

func upperBodyTrackingClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			t := schema.NewTable().Require(
				schema.In("pose_kps", schema.Typed("POSE_KEYPOINT")),
				schema.In("id_include", schema.String("")),
			)
			for _, part := range upperBodyParts {
				t.Require(schema.In(part.name+"_width_height", schema.String(fmt.Sprintf("(%d, %d)", part.w, part.h))))
			}
			return t
		},
		ReturnTypes: []string{"TRACKING", schema.TypeString},
		ReturnNames: []string{"tracking", "prompt"},
		Category:    categoryPoseKps,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				frames, err := poseKpsArg(args, "pose_kps")
				if err != nil {
					return nil, err
				}
				include, err := parseIDList(args.String("id_include", ""))
				if err != nil {
					return nil, fmt.Errorf("input id_include: %w", err)
				}
				tracking := make(Tracking)
				var prompt []string
				for _, part := range upperBodyParts {
					minW, minH := part.w, part.h
					if w, h, err := parseSizePair(args.String(part.name+"_width_height", "")); err == nil {
						minW, minH = w, h
					}
					tracked := trackPart(frames, part.kps, minW, minH, include)
					for id, boxes := range tracked {
						tracking[fmt.Sprintf("%s_%d", part.name, id)] = boxes
					}
					if len(tracked) > 0 {
						prompt = append(prompt, part.name)
					}
				}
				return &registry.Result{Values: []interface{}{tracking, strings.Join(prompt, ", ")}}, nil
			})
		},
	}
}

// trackPart boxes one part's keypoints for every included person across the
// frames. Boxes center on the part and never shrink below the widget size.
func trackPart(frames []annotator.PoseFrame, kps []int, minW, minH int, include map[int]bool) map[int][][4]int {
	out := make(map[int][][4]int)
	for fi, frame := range frames {
		w, h := float64(frame.CanvasWidth), float64(frame.CanvasHeight)
		for pi, person := range frame.People {
			if include != nil && !include[pi] {
				continue
			}
			pts := annotator.Triples(person.PoseKeypoints2D)
			x0, y0, x1, y1 := w, h, -1.0, -1.0
			for _, k := range kps {
				if k >= len(pts) || pts[k][2] <= 0 {
					continue
				}
				x, y := pts[k][0]*w, pts[k][1]*h
				x0, y0 = min(x0, x), min(y0, y)
				x1, y1 = max(x1, x), max(y1, y)
			}
			boxes, ok := out[pi]
			if !ok {
				boxes = make([][4]int, len(frames))
				out[pi] = boxes
			}
			if x1 < 0 {
				continue
			}
			cx, cy := (x0+x1)/2, (y0+y1)/2
			bw := max(x1-x0, float64(minW))
			bh := max(y1-y0, float64(minH))
			boxes[fi] = [4]int{
				int(max(0, cx-bw/2)), int(max(0, cy-bh/2)),
				int(min(w-1, cx+bw/2)), int(min(h-1, cy+bh/2)),
			}
		}
	}
	return out
}

func renderPeopleClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("kps", schema.Typed("POSE_KEYPOINT")),
				schema.In("render_body", schema.Bool(true)),
				schema.In("render_hand", schema.Bool(true)),
				schema.In("render_face", schema.Bool(true)),
			)
		},
		ReturnTypes: []string{schema.TypeImage},
		Category:    categoryPoseKps,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				frames, err := poseKpsArg(args, "kps")
				if err != nil {
					return nil, err
				}
				img, err := annotator.RenderPose(frames,
					args.Bool("render_body", true),
					args.Bool("render_hand", true),
					args.Bool("render_face", true))
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{img}}, nil
			})
		},
	}
}

func renderAnimalClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(schema.In("kps", schema.Typed("POSE_KEYPOINT")))
		},
		ReturnTypes: []string{schema.TypeImage},
		Category:    categoryPoseKps,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				frames, err := annotator.AnimalPoseFrames(args["kps"])
				if err != nil {
					return nil, fmt.Errorf("input kps: %w", err)
				}
				img, err := annotator.RenderAnimalPose(frames)
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{img}}, nil
			})
		},
	}
}

// parseColor understands the two widget color forms, rgb(r, g, b) and
// #RRGGBB hex.
func parseColor(s string) ([3]float32, error) {
	s = strings.TrimSpace(s)
	var r, g, b int
	if strings.HasPrefix(s, "#") {
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return [3]float32{}, fmt.Errorf("bad hex color %q", s)
		}
	} else if _, err := fmt.Sscanf(s, "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
		return [3]float32{}, fmt.Errorf("bad color %q", s)
	}
	return [3]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255}, nil
}

// parseSizePair reads a "(w, h)" widget value.
func parseSizePair(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "(%d, %d)", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("bad size pair %q", s)
	}
	return w, h, nil
}

// parseIDList reads the comma separated person index filter; empty means
// everyone.
func parseIDList(s string) (map[int]bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	out := make(map[int]bool)
	for _, tok := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("bad person id %q", tok)
		}
		out[id] = true
	}
	return out, nil
}
