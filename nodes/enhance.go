package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/rowanvale/auxpack/imaging"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// Resize modes shared by the hint enhance nodes, in the order the UI offers
// them.
const (
	ResizeJust  = "Just Resize"
	ResizeInner = "Crop and Resize"
	ResizeOuter = "Resize and Fill"
)

func resizeModes() schema.Spec {
	return schema.Combo(ResizeJust, ResizeInner, ResizeOuter).WithDefault(ResizeJust)
}

func genSizeSpec() schema.Spec {
	return schema.Int(512).Range(64, 16384).WithStep(8)
}

// registerEnhance adds the hint enhance family to the class table.
func registerEnhance(classes *registry.Registry) {
	classes.Register("HintImageEnchance", hintEnhanceClass())
	classes.SetDisplayName("HintImageEnchance", "Enchance And Resize Hint Images")
	classes.Register("ImageGenResolutionFromImage", genResolutionFromImageClass())
	classes.SetDisplayName("ImageGenResolutionFromImage", "Generation Resolution From Image")
	classes.Register("ImageGenResolutionFromLatent", genResolutionFromLatentClass())
	classes.SetDisplayName("ImageGenResolutionFromLatent", "Generation Resolution From Latent")
	classes.Register("PixelPerfectResolution", pixelPerfectClass())
	classes.SetDisplayName("PixelPerfectResolution", "Pixel Perfect Resolution")
}

func genResolutionFromImageClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(schema.In("image", schema.Image()))
		},
		ReturnTypes: []string{schema.TypeInt, schema.TypeInt},
		ReturnNames: []string{"IMAGE_GEN_WIDTH (INT)", "IMAGE_GEN_HEIGHT (INT)"},
		Category:    Category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "image")
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{img.Width, img.Height}}, nil
			})
		},
	}
}

func genResolutionFromLatentClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(schema.In("latent", schema.Latent()))
		},
		ReturnTypes: []string{schema.TypeInt, schema.TypeInt},
		ReturnNames: []string{"IMAGE_GEN_WIDTH (INT)", "IMAGE_GEN_HEIGHT (INT)"},
		Category:    Category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				lat, err := latentArg(args, "latent")
				if err != nil {
					return nil, err
				}
				return &registry.Result{Values: []interface{}{lat.GenWidth(), lat.GenHeight()}}, nil
			})
		},
	}
}

func latentArg(args registry.Arguments, name string) (imaging.Latent, error) {
	switch v := args[name].(type) {
	case imaging.Latent:
		return v, nil
	case *imaging.Latent:
		return *v, nil
	}
	return imaging.Latent{}, fmt.Errorf("input %s is %T, want a latent", name, args[name])
}

// pixelPerfectClass estimates the detector resolution that makes hint pixels
// land one to one on generation pixels for the chosen resize mode.
func pixelPerfectClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("original_image", schema.Image()),
				schema.In("image_gen_width", genSizeSpec()),
				schema.In("image_gen_height", genSizeSpec()),
				schema.In("resize_mode", resizeModes()),
			)
		},
		ReturnTypes: []string{schema.TypeInt},
		ReturnNames: []string{"RESOLUTION (INT)"},
		Category:    Category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "original_image")
				if err != nil {
					return nil, err
				}
				genW := args.Int("image_gen_width", 512)
				genH := args.Int("image_gen_height", 512)
				k0 := float64(genH) / float64(img.Height)
				k1 := float64(genW) / float64(img.Width)
				shortSide := float64(img.Height)
				if img.Width < img.Height {
					shortSide = float64(img.Width)
				}
				k := math.Max(k0, k1)
				if args.String("resize_mode", ResizeJust) == ResizeOuter {
					k = math.Min(k0, k1)
				}
				estimation := int(math.Round(k * shortSide))
				slog.Debug("pixel perfect estimation",
					"source", img.String(),
					"gen_width", genW,
					"gen_height", genH,
					"resolution", estimation)
				return &registry.Result{Values: []interface{}{estimation}}, nil
			})
		},
	}
}

// hintEnhanceClass rescales a hint batch to the generation size under one of
// the three resize modes. Output dimensions snap to multiples of 8 so they
// divide cleanly into latent space; the fill mode pads with the per-frame
// border median.
func hintEnhanceClass() *registry.Class {
	return &registry.Class{
		Inputs: func() *schema.Table {
			return schema.NewTable().Require(
				schema.In("hint_image", schema.Image()),
				schema.In("image_gen_width", genSizeSpec()),
				schema.In("image_gen_height", genSizeSpec()),
				schema.In("resize_mode", resizeModes()),
			)
		},
		ReturnTypes: []string{schema.TypeImage},
		Category:    Category,
		New: func() registry.Runner {
			return registry.RunnerFunc(func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
				img, err := imageArg(args, "hint_image")
				if err != nil {
					return nil, err
				}
				w := imaging.RoundToMultiple(args.Int("image_gen_width", 512), 8)
				h := imaging.RoundToMultiple(args.Int("image_gen_height", 512), 8)
				mode := args.String("resize_mode", ResizeJust)

				var out *imaging.Image
				for b := 0; b < img.Batch; b++ {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					frame := enhanceFrame(img.Frame(b), w, h, mode)
					if out == nil {
						out = imaging.New(img.Batch, h, w, frame.Channels)
					}
					copy(out.Frame(b).Pix, frame.Pix)
				}
				return &registry.Result{Values: []interface{}{out}}, nil
			})
		},
	}
}

func enhanceFrame(frame *imaging.Image, w, h int, mode string) *imaging.Image {
	switch mode {
	case ResizeOuter:
		// floor keeps the scaled frame inside the canvas
		k := math.Min(float64(h)/float64(frame.Height), float64(w)/float64(frame.Width))
		scaled := imaging.Scale(frame,
			int(math.Floor(float64(frame.Width)*k)),
			int(math.Floor(float64(frame.Height)*k)))
		return imaging.PadTo(scaled, w, h, imaging.BorderMedian(frame, 0))
	case ResizeInner:
		// ceil keeps the scaled frame covering the crop window
		k := math.Max(float64(h)/float64(frame.Height), float64(w)/float64(frame.Width))
		scaled := imaging.Scale(frame,
			int(math.Ceil(float64(frame.Width)*k)),
			int(math.Ceil(float64(frame.Height)*k)))
		return imaging.CenterCrop(scaled, w, h)
	default:
		return imaging.Scale(frame, w, h)
	}
}
