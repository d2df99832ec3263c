package engine

import (
	"testing"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/stretchr/testify/require"
)

func TestIncomingIndexOrdersEdgesByDeclaration(t *testing.T) {
	wf := model.Workflow{
		Nodes: []model.Node{
			// declared out of launch order on purpose
			{Id: "B", Type: "stub"},
			{Id: "A", Type: "stub"},
			{Id: "C", Type: "stub"},
		},
		Connections: map[string][][]model.Connection{
			"A": {{{Node: "C", Port: 0}}},
			"B": {{{Node: "C", Port: 0}}},
		},
	}

	incoming, err := incomingIndex(&wf)
	require.NoError(t, err)
	require.Len(t, incoming["C"], 2)
	require.Equal(t, "B", incoming["C"][0].SourceId)
	require.Equal(t, "A", incoming["C"][1].SourceId)
}

func TestIncomingIndexOrdersOutputPorts(t *testing.T) {
	wf := model.Workflow{
		Nodes: []model.Node{
			{Id: "S", Type: "stub"},
			{Id: "T", Type: "stub"},
		},
		Connections: map[string][][]model.Connection{
			"S": {
				{{Node: "T", Port: 0}},
				{{Node: "T", Port: 1}},
			},
		},
	}

	incoming, err := incomingIndex(&wf)
	require.NoError(t, err)
	require.Equal(t, []incomingEdge{
		{SourceId: "S", SourcePort: 0, TargetPort: 0},
		{SourceId: "S", SourcePort: 1, TargetPort: 1},
	}, incoming["T"])
}

func TestIncomingIndexRejectsDuplicateIds(t *testing.T) {
	wf := model.Workflow{
		Nodes: []model.Node{{Id: "A"}, {Id: "A"}},
	}
	_, err := incomingIndex(&wf)
	var confErr ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestStartNodesInDeclaredOrder(t *testing.T) {
	wf := model.Workflow{
		Nodes: []model.Node{
			{Id: "B", Type: "stub"},
			{Id: "A", Type: "stub"},
			{Id: "C", Type: "stub"},
		},
		Connections: map[string][][]model.Connection{
			"A": {{{Node: "C", Port: 0}}},
			"B": {{{Node: "C", Port: 0}}},
		},
	}
	incoming, err := incomingIndex(&wf)
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A"}, startNodes(&wf, incoming))
}
