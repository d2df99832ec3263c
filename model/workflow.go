package model

// Connection is a single edge from an output port of a source node to an
// input port of a target node.
type Connection struct {
	Node string `json:"node"`
	Port int    `json:"port"`
}

type Node struct {
	Id         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
	// Notify overrides the plugin's default notify flag when set.
	Notify *bool `json:"notify,omitempty"`
}

// Workflow is the stored definition of an automation graph. Connections are
// keyed by source node id; the outer slice index is the source output port.
type Workflow struct {
	Id          string                    `json:"id"`
	Name        string                    `json:"name"`
	OwnerId     string                    `json:"ownerId"`
	Nodes       []Node                    `json:"nodes"`
	Connections map[string][][]Connection `json:"connections"`
}

func (wf *Workflow) GetNode(id string) *Node {
	for i := range wf.Nodes {
		if wf.Nodes[i].Id == id {
			return &wf.Nodes[i]
		}
	}
	return nil
}
