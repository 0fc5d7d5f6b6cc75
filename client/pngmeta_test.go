package client

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func pngWithText(keyword, content string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{137, 80, 78, 71, 13, 10, 26, 10})
	data := append([]byte(keyword), 0)
	data = append(data, []byte(content)...)
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString("tEXt")
	buf.Write(data)
	buf.Write([]byte{0, 0, 0, 0}) // the CRC is skipped, not validated
	return buf.Bytes()
}

// TestGetPngMetadata reads a tEXt chunk back out of a synthetic PNG.
func TestGetPngMetadata(t *testing.T) {
	png := pngWithText("prompt", `{"1": {}}`)

	meta, err := GetPngMetadata(bytes.NewReader(png))
	if err != nil {
		t.Fatalf("Failed to read png metadata: %v", err)
	}
	if meta["prompt"] != `{"1": {}}` {
		t.Errorf("Expected prompt chunk content, got %q", meta["prompt"])
	}
}

// TestGetPngMetadataRejectsNonPNG checks the signature guard.
func TestGetPngMetadataRejectsNonPNG(t *testing.T) {
	_, err := GetPngMetadata(bytes.NewReader([]byte("GIF89a not a png")))
	if err == nil {
		t.Fatal("Expected an error for a non png payload")
	}
}

// TestGraphFromPNGReader extracts an embedded prompt as an executable graph.
func TestGraphFromPNGReader(t *testing.T) {
	prompt := `{"3": {"class_type": "HEDPreprocessor", "inputs": {"safe": "enable", "image": ["1", 0]}}}`
	png := pngWithText("prompt", prompt)

	g, err := GraphFromPNGReader(bytes.NewReader(png))
	if err != nil {
		t.Fatalf("Failed to read graph from png: %v", err)
	}
	node, ok := g["3"]
	if !ok {
		t.Fatal("Expected node 3 in the extracted graph")
	}
	if node.ClassType != "HEDPreprocessor" {
		t.Errorf("Expected class HEDPreprocessor, got %s", node.ClassType)
	}
	if node.Inputs["safe"] != "enable" {
		t.Errorf("Expected the safe input to survive the round trip")
	}
}

// TestGraphFromPNGReaderMissingPrompt checks PNGs without prompt metadata
// are rejected.
func TestGraphFromPNGReaderMissingPrompt(t *testing.T) {
	png := pngWithText("comment", "no prompt here")
	_, err := GraphFromPNGReader(bytes.NewReader(png))
	if err == nil {
		t.Fatal("Expected an error for a png without prompt metadata")
	}
}
