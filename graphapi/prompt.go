package graphapi

import "encoding/json"

// Graph is an executable node map keyed by node ID. It is the shape a host
// consumes directly: the body of an API prompt, and the "expand" section of a
// node expansion result.
type Graph map[string]*PromptNode

// PromptNode is a single executable node
type PromptNode struct {
	// Inputs can be one of:
	//	float64
	//	string
	//	[]interface{} where: [0] is string of target node
	//					     [1] is float64 (int) of slot index
	Inputs    map[string]interface{} `json:"inputs"`
	ClassType string                 `json:"class_type"`
}

// Output references one output slot of a node in the same graph. It
// serializes to the two element link tuple hosts expect.
type Output struct {
	Node string
	Slot int
}

func (o Output) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{o.Node, o.Slot})
}

// Prompt is the data that is enqueued to an instance of ComfyUI
type Prompt struct {
	ClientID  string                 `json:"client_id"`
	Nodes     Graph                  `json:"prompt"`
	ExtraData map[string]interface{} `json:"extra_data,omitempty"`
}

// Expansion is a node result that defers work to an ephemeral graph: the host
// executes Expand and resolves Result outputs against it.
type Expansion struct {
	Result []interface{} `json:"result"`
	Expand Graph         `json:"expand"`
}
