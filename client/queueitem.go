package client

import (
	"strings"
	"sync"

	"github.com/rowanvale/auxpack/graphapi"
)

type QueueItem struct {
	PromptID   string                 `json:"prompt_id"`
	Number     int                    `json:"number"`
	NodeErrors map[string]interface{} `json:"node_errors"`
	Messages   chan PromptMessage     `json:"-"`
	Graph      graphapi.Graph         `json:"-"`
	Error      struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		Details   string `json:"details"`
		ExtraInfo struct {
		} `json:"extra_info"`
	} `json:"error"`

	closeonce sync.Once
}

// Close closes the message channel. Safe to call more than once.
func (qi *QueueItem) Close() {
	qi.closeonce.Do(func() {
		close(qi.Messages)
	})
}

// NodeTitle resolves a node ID from a host message to something displayable.
// Nodes created by graph expansion carry compound IDs like "57:8", the
// parent half is looked up when the full ID is not in the queued graph.
func (qi *QueueItem) NodeTitle(node_id string) string {
	if n, ok := qi.Graph[node_id]; ok {
		return n.ClassType
	}
	if head, _, found := strings.Cut(node_id, ":"); found {
		if n, ok := qi.Graph[head]; ok {
			return n.ClassType
		}
	}
	return node_id
}
