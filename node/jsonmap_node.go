package node

import (
	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/util"
)

var _ Plugin = new(jsonMapNode)

// jsonMapNode projects each input item onto the shape configured in the
// "mapping" parameter, with jsonpath expressions resolved against the item.
type jsonMapNode struct{}

func (d *jsonMapNode) Descriptor() Descriptor {
	return Descriptor{
		Name:        "jsonMap",
		DisplayName: "JSON Mapper",
		Group:       "transform",
		Inputs:      1,
		Outputs:     1,
		Parameters: []ParameterSpec{
			{Name: "mapping", DisplayName: "Mapping", Type: "object", Required: true},
		},
	}
}

func (d *jsonMapNode) Execute(ctx *ExecutionContext) ([][]model.ExecutionItem, error) {
	mapping, _ := ctx.Node().Parameters["mapping"].(map[string]any)
	items := ctx.GetInputData(0)
	output := make([]model.ExecutionItem, 0, len(items))
	for _, item := range items {
		output = append(output, model.NewExecutionItem(util.ResolveParams(item.Json, mapping)))
	}
	return [][]model.ExecutionItem{output}, nil
}
