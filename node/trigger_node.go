package node

import (
	"github.com/mohitkumar/flowpilot/model"
)

var _ Plugin = new(triggerNode)

// triggerNode is the conventional start node. It has no inputs and emits a
// single item carrying the optional configured payload.
type triggerNode struct{}

func (t *triggerNode) Descriptor() Descriptor {
	return Descriptor{
		Name:        "manualTrigger",
		DisplayName: "Manual Trigger",
		Group:       "trigger",
		Inputs:      0,
		Outputs:     1,
		Parameters: []ParameterSpec{
			{Name: "payload", DisplayName: "Payload", Type: "object"},
		},
	}
}

func (t *triggerNode) Execute(ctx *ExecutionContext) ([][]model.ExecutionItem, error) {
	payload, _ := ctx.GetParameter("payload", 0, map[string]any{}).(map[string]any)
	return [][]model.ExecutionItem{{model.NewExecutionItem(payload)}}, nil
}
