package engine

import (
	"fmt"

	"github.com/mohitkumar/flowpilot/model"
)

// incomingEdge is one upstream feed of a node: which source node and output
// port produce the items, and which input port of the target receives them.
type incomingEdge struct {
	SourceId   string
	SourcePort int
	TargetPort int
}

// incomingIndex builds target node id -> ordered upstream edges. Order is
// deterministic: source nodes in declared sequence, then output ports in
// order, then the connection list in order. A merge node therefore always
// receives its inputs concatenated in the same order regardless of traversal
// incidence.
func incomingIndex(wf *model.Workflow) (map[string][]incomingEdge, error) {
	seen := make(map[string]bool, len(wf.Nodes))
	for _, n := range wf.Nodes {
		if seen[n.Id] {
			return nil, ConfigurationError{Message: fmt.Sprintf("duplicate node id %s", n.Id)}
		}
		seen[n.Id] = true
	}
	incoming := make(map[string][]incomingEdge)
	for _, n := range wf.Nodes {
		for port, connections := range wf.Connections[n.Id] {
			for _, conn := range connections {
				if !seen[conn.Node] {
					return nil, ConfigurationError{Message: fmt.Sprintf("connection from %s targets unknown node %s", n.Id, conn.Node)}
				}
				incoming[conn.Node] = append(incoming[conn.Node], incomingEdge{
					SourceId:   n.Id,
					SourcePort: port,
					TargetPort: conn.Port,
				})
			}
		}
	}
	return incoming, nil
}

// startNodes returns the ids with zero incoming connections, in declared
// node order.
func startNodes(wf *model.Workflow, incoming map[string][]incomingEdge) []string {
	var starts []string
	for _, n := range wf.Nodes {
		if len(incoming[n.Id]) == 0 {
			starts = append(starts, n.Id)
		}
	}
	return starts
}
