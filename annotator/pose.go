package annotator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rowanvale/auxpack/imaging"
)

// PoseFrame is the keypoint payload a pose detector emits for one frame, in
// the openpose JSON layout. Keypoints are flattened (x, y, confidence)
// triples with coordinates normalized to [0,1] over the canvas; confidence 0
// marks a missing point.
type PoseFrame struct {
	People       []PosePerson `json:"people"`
	CanvasHeight int          `json:"canvas_height"`
	CanvasWidth  int          `json:"canvas_width"`
}

// PosePerson is one detected person's keypoint sets.
type PosePerson struct {
	PoseKeypoints2D      []float64 `json:"pose_keypoints_2d,omitempty"`
	FaceKeypoints2D      []float64 `json:"face_keypoints_2d,omitempty"`
	HandLeftKeypoints2D  []float64 `json:"hand_left_keypoints_2d,omitempty"`
	HandRightKeypoints2D []float64 `json:"hand_right_keypoints_2d,omitempty"`
}

// AnimalPoseFrame is the AP10K animal keypoint payload for one frame, 17
// normalized (x, y, confidence) triples per animal.
type AnimalPoseFrame struct {
	Animals      [][][3]float64 `json:"animals"`
	CanvasHeight int            `json:"canvas_height"`
	CanvasWidth  int            `json:"canvas_width"`
}

// PoseFrames coerces a POSE_KEYPOINT value into typed frames. In-process
// detectors hand over the slice directly; remote backends deliver raw JSON
// or generically decoded maps, which round trip through encoding.
func PoseFrames(v interface{}) ([]PoseFrame, error) {
	switch p := v.(type) {
	case []PoseFrame:
		return p, nil
	case PoseFrame:
		return []PoseFrame{p}, nil
	case json.RawMessage:
		return decodeFrames[PoseFrame]([]byte(p))
	case []byte:
		return decodeFrames[PoseFrame](p)
	case string:
		return decodeFrames[PoseFrame]([]byte(p))
	case nil:
		return nil, errors.New("no pose keypoints")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("pose keypoints have unsupported type %T", v)
	}
	return decodeFrames[PoseFrame](raw)
}

// AnimalPoseFrames coerces a POSE_KEYPOINT value carrying animal keypoints.
func AnimalPoseFrames(v interface{}) ([]AnimalPoseFrame, error) {
	switch p := v.(type) {
	case []AnimalPoseFrame:
		return p, nil
	case AnimalPoseFrame:
		return []AnimalPoseFrame{p}, nil
	case json.RawMessage:
		return decodeFrames[AnimalPoseFrame]([]byte(p))
	case []byte:
		return decodeFrames[AnimalPoseFrame](p)
	case string:
		return decodeFrames[AnimalPoseFrame]([]byte(p))
	case nil:
		return nil, errors.New("no animal keypoints")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("animal keypoints have unsupported type %T", v)
	}
	return decodeFrames[AnimalPoseFrame](raw)
}

func decodeFrames[T any](raw []byte) ([]T, error) {
	var frames []T
	if err := json.Unmarshal(raw, &frames); err != nil {
		return nil, fmt.Errorf("decoding keypoint payload: %w", err)
	}
	return frames, nil
}

// Triples regroups a flattened keypoint slice into (x, y, confidence) rows.
// A trailing partial triple is dropped.
func Triples(flat []float64) [][3]float64 {
	out := make([][3]float64, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, [3]float64{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}

// the COCO-18 limb sequence and its color wheel, the classic openpose look
var poseLimbs = [][2]int{
	{1, 2}, {1, 5}, {2, 3}, {3, 4}, {5, 6}, {6, 7}, {1, 8}, {8, 9},
	{9, 10}, {1, 11}, {11, 12}, {12, 13}, {1, 0}, {0, 14}, {14, 15},
	{0, 16}, {16, 17},
}

var poseColors = [][3]float32{
	{1, 0, 0}, {1, 0.33, 0}, {1, 0.66, 0}, {1, 1, 0}, {0.66, 1, 0},
	{0.33, 1, 0}, {0, 1, 0}, {0, 1, 0.33}, {0, 1, 0.66}, {0, 1, 1},
	{0, 0.66, 1}, {0, 0.33, 1}, {0, 0, 1}, {0.33, 0, 1}, {0.66, 0, 1},
	{1, 0, 1}, {1, 0, 0.66}, {1, 0, 0.33},
}

// the 21 keypoint hand skeleton: four bones per finger fanning out from the
// wrist
var handEdges = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {5, 6}, {6, 7}, {7, 8},
	{0, 9}, {9, 10}, {10, 11}, {11, 12},
	{0, 13}, {13, 14}, {14, 15}, {15, 16},
	{0, 17}, {17, 18}, {18, 19}, {19, 20},
}

// the AP10K animal skeleton: head chain, spine, then one chain per leg
var animalLimbs = [][2]int{
	{0, 1}, {0, 2}, {1, 2}, {2, 3}, {3, 4},
	{3, 5}, {5, 6}, {6, 7},
	{3, 8}, {8, 9}, {9, 10},
	{4, 11}, {11, 12}, {12, 13},
	{4, 14}, {14, 15}, {15, 16},
}

// RenderPose draws pose frames onto black canvases, one output frame per
// input frame. Body limbs use the openpose color wheel, hands a hue ramp per
// bone, faces white dots.
func RenderPose(frames []PoseFrame, body, hand, face bool) (*imaging.Image, error) {
	if len(frames) == 0 {
		return nil, errors.New("no pose frames to render")
	}
	w, h := frames[0].CanvasWidth, frames[0].CanvasHeight
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pose frame has degenerate canvas %dx%d", w, h)
	}
	out := imaging.New(len(frames), h, w, 3)
	for i, frame := range frames {
		canvas := out.Frame(i)
		for _, person := range frame.People {
			if body {
				kps := Triples(person.PoseKeypoints2D)
				for li, limb := range poseLimbs {
					drawBone(canvas, kps, limb, poseColors[li%len(poseColors)], 4)
				}
				for ki, kp := range kps {
					if kp[2] > 0 {
						drawDot(canvas, kp[0]*float64(w), kp[1]*float64(h), 4, poseColors[ki%len(poseColors)])
					}
				}
			}
			if hand {
				for _, flat := range [][]float64{person.HandLeftKeypoints2D, person.HandRightKeypoints2D} {
					kps := Triples(flat)
					for ei, edge := range handEdges {
						hue := float32(ei) / float32(len(handEdges))
						drawBone(canvas, kps, edge, hsvToRGB(hue, 1, 1), 2)
					}
				}
			}
			if face {
				for _, kp := range Triples(person.FaceKeypoints2D) {
					if kp[2] > 0 {
						drawDot(canvas, kp[0]*float64(w), kp[1]*float64(h), 2, [3]float32{1, 1, 1})
					}
				}
			}
		}
	}
	return out, nil
}

// RenderAnimalPose draws AP10K animal frames onto black canvases.
func RenderAnimalPose(frames []AnimalPoseFrame) (*imaging.Image, error) {
	if len(frames) == 0 {
		return nil, errors.New("no animal pose frames to render")
	}
	w, h := frames[0].CanvasWidth, frames[0].CanvasHeight
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pose frame has degenerate canvas %dx%d", w, h)
	}
	out := imaging.New(len(frames), h, w, 3)
	for i, frame := range frames {
		canvas := out.Frame(i)
		for _, animal := range frame.Animals {
			for li, limb := range animalLimbs {
				hue := float32(li) / float32(len(animalLimbs))
				drawBone(canvas, animal, limb, hsvToRGB(hue, 1, 1), 3)
			}
			for _, kp := range animal {
				if kp[2] > 0 {
					drawDot(canvas, kp[0]*float64(w), kp[1]*float64(h), 3, [3]float32{1, 1, 1})
				}
			}
		}
	}
	return out, nil
}

// FacialParts lists the landmark groups the face coloring node handles, in
// widget order.
var FacialParts = []string{
	"skin", "left_eye", "right_eye", "nose", "upper_lip", "inner_mouth", "lower_lip",
}

// facialPartRanges maps each part to its inclusive index range in the 68
// landmark layout.
var facialPartRanges = map[string][2]int{
	"skin":        {0, 26},
	"nose":        {27, 35},
	"right_eye":   {36, 41},
	"left_eye":    {42, 47},
	"upper_lip":   {48, 54},
	"lower_lip":   {55, 59},
	"inner_mouth": {60, 67},
}

// ColorFacialParts renders the face landmarks of every person onto black
// canvases, one flat color per part, as dots or filled polygons.
func ColorFacialParts(frames []PoseFrame, colors map[string][3]float32, polygon bool) (*imaging.Image, error) {
	if len(frames) == 0 {
		return nil, errors.New("no pose frames to render")
	}
	w, h := frames[0].CanvasWidth, frames[0].CanvasHeight
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pose frame has degenerate canvas %dx%d", w, h)
	}
	out := imaging.New(len(frames), h, w, 3)
	for i, frame := range frames {
		canvas := out.Frame(i)
		for _, person := range frame.People {
			kps := Triples(person.FaceKeypoints2D)
			for _, part := range FacialParts {
				bounds := facialPartRanges[part]
				color := colors[part]
				var pts [][2]float64
				for k := bounds[0]; k <= bounds[1] && k < len(kps); k++ {
					if kps[k][2] <= 0 {
						continue
					}
					pts = append(pts, [2]float64{kps[k][0] * float64(w), kps[k][1] * float64(h)})
				}
				if len(pts) == 0 {
					continue
				}
				if polygon && len(pts) >= 3 {
					fillPolygon(canvas, pts, color)
					continue
				}
				for _, pt := range pts {
					drawDot(canvas, pt[0], pt[1], 2, color)
				}
			}
		}
	}
	return out, nil
}

// drawBone draws one limb when both endpoints were detected. Coordinates are
// normalized; the canvas scales them back to pixels.
func drawBone(canvas *imaging.Image, kps [][3]float64, limb [2]int, color [3]float32, width int) {
	a, b := limb[0], limb[1]
	if a >= len(kps) || b >= len(kps) || kps[a][2] <= 0 || kps[b][2] <= 0 {
		return
	}
	w, h := float64(canvas.Width), float64(canvas.Height)
	drawLine(canvas, kps[a][0]*w, kps[a][1]*h, kps[b][0]*w, kps[b][1]*h, color, width)
}

func drawLine(m *imaging.Image, x0, y0, x1, y1 float64, color [3]float32, width int) {
	steps := int(math.Hypot(x1-x0, y1-y0)) + 1
	r := width / 2
	if r < 1 {
		r = 1
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		drawDot(m, x0+(x1-x0)*t, y0+(y1-y0)*t, r, color)
	}
}

func drawDot(m *imaging.Image, cx, cy float64, r int, color [3]float32) {
	x0, y0 := int(math.Round(cx)), int(math.Round(cy))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			x, y := x0+dx, y0+dy
			if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
				continue
			}
			for c := 0; c < 3; c++ {
				m.Set(0, y, x, c, color[c])
			}
		}
	}
}

// fillPolygon rasterizes a closed polygon with even-odd scanline filling.
func fillPolygon(m *imaging.Image, pts [][2]float64, color [3]float32) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	y0 := int(math.Max(0, math.Floor(minY)))
	y1 := int(math.Min(float64(m.Height-1), math.Ceil(maxY)))
	for y := y0; y <= y1; y++ {
		scan := float64(y) + 0.5
		var xs []float64
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if (a[1] <= scan) == (b[1] <= scan) {
				continue
			}
			t := (scan - a[1]) / (b[1] - a[1])
			xs = append(xs, a[0]+(b[0]-a[0])*t)
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			start := int(math.Max(0, math.Ceil(xs[i])))
			end := int(math.Min(float64(m.Width-1), math.Floor(xs[i+1])))
			for x := start; x <= end; x++ {
				for c := 0; c < 3; c++ {
					m.Set(0, y, x, c, color[c])
				}
			}
		}
	}
}

// hsvToRGB converts one HSV color with h in [0,1).
func hsvToRGB(h, s, v float32) [3]float32 {
	h = float32(math.Mod(float64(h), 1))
	if h < 0 {
		h++
	}
	i := int(h * 6)
	f := h*6 - float32(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i % 6 {
	case 0:
		return [3]float32{v, t, p}
	case 1:
		return [3]float32{q, v, p}
	case 2:
		return [3]float32{p, v, t}
	case 3:
		return [3]float32{p, q, v}
	case 4:
		return [3]float32{t, p, v}
	default:
		return [3]float32{v, p, q}
	}
}
