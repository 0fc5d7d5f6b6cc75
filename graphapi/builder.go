package graphapi

import (
	"fmt"

	"github.com/google/uuid"
)

// Builder accumulates an ephemeral graph for node expansion. Node IDs are
// "<prefix>.<n>" where the prefix is unique per expansion, so ephemeral nodes
// never collide with the host graph or with other expansions.
type Builder struct {
	prefix string
	nodes  Graph
	count  int
}

// NewBuilder creates a Builder with a random unique prefix.
func NewBuilder() *Builder {
	return NewBuilderWithPrefix(uuid.New().String())
}

// NewBuilderWithPrefix creates a Builder with a caller chosen prefix. Tests
// use this for stable node IDs.
func NewBuilderWithPrefix(prefix string) *Builder {
	return &Builder{
		prefix: prefix,
		nodes:  make(Graph),
	}
}

// BuilderNode is a handle to a node added to a Builder, used to reference its
// output slots from other nodes' inputs.
type BuilderNode struct {
	ID   string
	node *PromptNode
}

// Out references the given output slot of this node.
func (n *BuilderNode) Out(slot int) Output {
	return Output{Node: n.ID, Slot: slot}
}

// SetInput sets or replaces one input value on this node.
func (n *BuilderNode) SetInput(name string, value interface{}) {
	n.node.Inputs[name] = value
}

// Node appends a node of the given class to the graph. The inputs map may
// hold literal values, Outputs referencing earlier nodes, or live payloads an
// in-process host passes through untouched; it is copied.
func (b *Builder) Node(class_type string, inputs map[string]interface{}) *BuilderNode {
	id := fmt.Sprintf("%s.%d", b.prefix, b.count)
	b.count++
	pn := &PromptNode{
		ClassType: class_type,
		Inputs:    make(map[string]interface{}, len(inputs)),
	}
	for k, v := range inputs {
		pn.Inputs[k] = v
	}
	b.nodes[id] = pn
	return &BuilderNode{ID: id, node: pn}
}

// Len reports the number of nodes added so far.
func (b *Builder) Len() int {
	return b.count
}

// Graph returns the accumulated node map.
func (b *Builder) Graph() Graph {
	return b.nodes
}
