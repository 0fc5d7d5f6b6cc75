package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestTableGroupOrder verifies that groups keep declaration order
func TestTableGroupOrder(t *testing.T) {
	table := NewTable().
		Require(In("image", Image()), In("mask", Mask())).
		Option(In("resolution", Resolution()), In("gamma", Float(1.0)))

	if len(table.Required) != 2 || len(table.Optional) != 2 {
		t.Fatalf("Expected 2 required and 2 optional fields, got %d and %d", len(table.Required), len(table.Optional))
	}
	if table.Required[0].Name != "image" || table.Required[1].Name != "mask" {
		t.Errorf("Required order wrong: %v, %v", table.Required[0].Name, table.Required[1].Name)
	}
	if table.Optional[0].Name != "resolution" || table.Optional[1].Name != "gamma" {
		t.Errorf("Optional order wrong: %v, %v", table.Optional[0].Name, table.Optional[1].Name)
	}
}

// TestTableMarshalOrder verifies the serialized INPUT_TYPES object preserves
// field order inside each group
func TestTableMarshalOrder(t *testing.T) {
	table := NewTable().
		Require(In("zeta", Int(1)), In("alpha", Int(2)), In("mid", Int(3)))

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("Failed to marshal table: %v", err)
	}
	s := string(data)
	zi := strings.Index(s, `"zeta"`)
	ai := strings.Index(s, `"alpha"`)
	mi := strings.Index(s, `"mid"`)
	if zi == -1 || ai == -1 || mi == -1 {
		t.Fatalf("Missing field keys in output: %s", s)
	}
	if !(zi < ai && ai < mi) {
		t.Errorf("Expected declaration order zeta < alpha < mid in output, got %s", s)
	}
}

// TestSpecTuples verifies the (type, options) tuple shapes
func TestSpecTuples(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
		want string
	}{
		{"bare image", Image(), `["IMAGE"]`},
		{"int with range", Int(100).Range(0, 255), `["INT",{"default":100,"max":255,"min":0}]`},
		{"resolution", Resolution(), `["INT",{"default":512,"max":16384,"min":64,"step":64}]`},
		{"combo", Combo("enable", "disable"), `[["enable","disable"],{"default":"enable"}]`},
		{"multiline", Text("Hello"), `["STRING",{"default":"Hello","multiline":true}]`},
	}
	for _, c := range cases {
		data, err := json.Marshal(c.spec)
		if err != nil {
			t.Fatalf("%s: failed to marshal: %v", c.name, err)
		}
		if string(data) != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, string(data))
		}
	}
}

// TestHiddenSerializesAsTag verifies hidden inputs serialize as bare tag strings
func TestHiddenSerializesAsTag(t *testing.T) {
	table := NewTable().
		Require(In("image", Image())).
		Hide(In("prompt", Typed(TagPrompt)), In("my_unique_id", Typed(TagUniqueID)))

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("Failed to marshal table: %v", err)
	}

	var decoded map[string]map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal output: %v", err)
	}
	hidden, ok := decoded["hidden"]
	if !ok {
		t.Fatal("Expected hidden group in output")
	}
	if hidden["prompt"] != "PROMPT" {
		t.Errorf("Expected prompt to serialize as PROMPT, got %v", hidden["prompt"])
	}
	if hidden["my_unique_id"] != "UNIQUE_ID" {
		t.Errorf("Expected my_unique_id to serialize as UNIQUE_ID, got %v", hidden["my_unique_id"])
	}
}

// TestPreprocessorInputs verifies the shared unit table shape
func TestPreprocessorInputs(t *testing.T) {
	table := PreprocessorInputs(In("resolution", Resolution()))
	if len(table.Required) != 1 || table.Required[0].Name != "image" {
		t.Fatalf("Expected single required image input, got %v", table.Required)
	}
	if len(table.Optional) != 1 || table.Optional[0].Name != "resolution" {
		t.Fatalf("Expected single optional resolution input, got %v", table.Optional)
	}
	f, ok := table.Find("resolution")
	if !ok {
		t.Fatal("Expected to find resolution field")
	}
	if f.Spec.Default != 512 {
		t.Errorf("Expected resolution default 512, got %v", f.Spec.Default)
	}
	if _, ok := table.Find("nope"); ok {
		t.Error("Expected lookup miss for unknown field")
	}
}

// TestComboDefaultsToFirstChoice verifies the unadorned combo default rule
func TestComboDefaultsToFirstChoice(t *testing.T) {
	s := Combo("v1", "v1.1")
	if !s.HasDefault || s.Default != "v1" {
		t.Errorf("Expected combo default v1, got %v", s.Default)
	}
	s = s.WithDefault("v1.1")
	if s.Default != "v1.1" {
		t.Errorf("Expected overridden default v1.1, got %v", s.Default)
	}
	empty := Spec{Type: TypeCombo, Choices: []string{"a", "b"}}
	if empty.HasDefault {
		t.Error("Literal combo spec should carry no default")
	}
}
