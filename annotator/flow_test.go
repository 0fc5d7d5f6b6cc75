package annotator

import (
	"testing"

	"github.com/rowanvale/auxpack/imaging"
)

// TestFlowToImage verifies the HSV encoding: direction as hue, stillness as
// white
func TestFlowToImage(t *testing.T) {
	flow := imaging.New(1, 2, 2, 2)
	flow.Set(0, 0, 0, 0, 1) // u=1 v=0, the strongest vector in the field

	out, err := FlowToImage(flow)
	if err != nil {
		t.Fatalf("Failed to visualize: %v", err)
	}
	if out.Channels != 3 || out.Height != 2 || out.Width != 2 {
		t.Fatalf("Expected a [1,2,2,3] image, got %s", out)
	}
	if out.At(0, 0, 0, 0) != 1 || out.At(0, 0, 0, 1) != 0 || out.At(0, 0, 0, 2) != 0 {
		t.Errorf("Expected pure red for a full +u vector, got %v %v %v",
			out.At(0, 0, 0, 0), out.At(0, 0, 0, 1), out.At(0, 0, 0, 2))
	}
	if out.At(0, 1, 1, 0) != 1 || out.At(0, 1, 1, 1) != 1 || out.At(0, 1, 1, 2) != 1 {
		t.Error("Expected white where the flow is zero")
	}

	if _, err := FlowToImage(imaging.New(1, 2, 2, 3)); err == nil {
		t.Error("Expected error for a non 2 channel field")
	}
}

// TestMaskFlow verifies vectors outside the mask are zeroed
func TestMaskFlow(t *testing.T) {
	flow := imaging.New(1, 2, 2, 2)
	for i := range flow.Pix {
		flow.Pix[i] = 1
	}
	mask := imaging.New(1, 2, 2, 1)
	mask.Set(0, 0, 0, 0, 1)

	out, err := MaskFlow(flow, mask)
	if err != nil {
		t.Fatalf("Failed to mask: %v", err)
	}
	if out.At(0, 0, 0, 0) != 1 || out.At(0, 0, 0, 1) != 1 {
		t.Error("Expected the masked-in vector kept")
	}
	if out.At(0, 1, 1, 0) != 0 || out.At(0, 1, 1, 1) != 0 {
		t.Error("Expected the masked-out vector zeroed")
	}
	if flow.At(0, 1, 1, 0) != 1 {
		t.Error("Expected the source field untouched")
	}

	if _, err := MaskFlow(imaging.New(1, 2, 2, 3), mask); err == nil {
		t.Error("Expected error for a non 2 channel field")
	}
	if _, err := MaskFlow(flow, imaging.New(1, 2, 2, 3)); err == nil {
		t.Error("Expected error for a multi channel mask")
	}
}
