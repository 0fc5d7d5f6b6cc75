package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func dwposeSource() (*registry.Mappings, error) {
	b, err := backend("DWPreprocessor")
	if err != nil {
		return nil, err
	}
	dw := modelClass(b, modelSpec{
		detector: "dwpose",
		category: categoryPose,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				schema.In("detect_hand", schema.EnableDisable().WithDefault("enable")),
				schema.In("detect_body", schema.EnableDisable().WithDefault("enable")),
				schema.In("detect_face", schema.EnableDisable().WithDefault("enable")),
				resolutionField(),
				schema.In("bbox_detector", schema.Combo(
					"yolox_l.torchscript.pt",
					"yolox_l.onnx",
					"yolo_nas_l_fp16.onnx",
					"yolo_nas_m_fp16.onnx",
					"yolo_nas_s_fp16.onnx",
				).WithDefault("yolox_l.onnx")),
				schema.In("pose_estimator", schema.Combo(
					"dw-ll_ucoco_384_bs5.torchscript.pt",
					"dw-ll_ucoco_384.onnx",
					"dw-ll_ucoco.onnx",
				)),
			)
		},
		returnTypes: []string{schema.TypeImage, "POSE_KEYPOINT"},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"detect_hand":    args.String("detect_hand", "enable"),
				"detect_body":    args.String("detect_body", "enable"),
				"detect_face":    args.String("detect_face", "enable"),
				"bbox_detector":  args.String("bbox_detector", "yolox_l.onnx"),
				"pose_estimator": args.String("pose_estimator", "dw-ll_ucoco_384_bs5.torchscript.pt"),
			}
		},
		outputs: poseOutputs,
	})
	animal := modelClass(b, modelSpec{
		detector: "animal_pose",
		category: categoryPose,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(
				resolutionField(),
				schema.In("bbox_detector", schema.Combo(
					"yolox_l.torchscript.pt",
					"yolox_l.onnx",
					"yolo_nas_l_fp16.onnx",
					"yolo_nas_m_fp16.onnx",
					"yolo_nas_s_fp16.onnx",
				).WithDefault("yolox_l.torchscript.pt")),
				schema.In("pose_estimator", schema.Combo(
					"rtmpose-m_ap10k_256_bs5.torchscript.pt",
					"rtmpose-m_ap10k_256.onnx",
				)),
			)
		},
		returnTypes: []string{schema.TypeImage, "POSE_KEYPOINT"},
		params: func(args registry.Arguments) map[string]interface{} {
			return map[string]interface{}{
				"bbox_detector":  args.String("bbox_detector", "yolox_l.torchscript.pt"),
				"pose_estimator": args.String("pose_estimator", "rtmpose-m_ap10k_256_bs5.torchscript.pt"),
			}
		},
		outputs: poseOutputs,
	})
	return registry.NewMappings().
		Register("DWPreprocessor", dw).
		Display("DWPreprocessor", "DWPose Estimator").
		Register("AnimalPosePreprocessor", animal).
		Display("AnimalPosePreprocessor", "AnimalPose Estimator (AP10K)"), nil
}
