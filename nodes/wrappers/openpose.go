package wrappers

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

// poseOutputs lays out the pose detector result: the rendered map plus the
// keypoint payload downstream nodes post-process.
func poseOutputs(d *annotator.Detection) ([]interface{}, error) {
	return []interface{}{d.Image, d.Aux}, nil
}

func openposeSource() (*registry.Mappings, error) {
	b, err := backend("OpenposePreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "openpose",
		category: categoryPose,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("detect_hand", schema.EnableDisable().WithDefault("enable")),
				schema.In("detect_body", schema.EnableDisable().WithDefault("enable")),
				schema.In("detect_face", schema.EnableDisable().WithDefault("enable")),
				resolutionField(),
			)
		},
		returnTypes: []string{schema.TypeImage, "POSE_KEYPOINT"},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"detect_hand": args.String("detect_hand", "enable"),
				"detect_body": args.String("detect_body", "enable"),
				"detect_face": args.String("detect_face", "enable"),
			}
		},
		outputs: poseOutputs,
	})
	return registry.NewMappings().
		Register("OpenposePreprocessor", class).
		Display("OpenposePreprocessor", "OpenPose Pose"), nil
}
