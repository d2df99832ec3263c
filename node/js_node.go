package node

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
	"github.com/mohitkumar/flowpilot/model"
)

var _ Plugin = new(jsNode)

// jsNode evaluates a user supplied javascript snippet once per input item.
// The item's json payload is bound to $ and whatever the script leaves in $
// becomes the output item.
type jsNode struct{}

func (d *jsNode) Descriptor() Descriptor {
	return Descriptor{
		Name:        "javascript",
		DisplayName: "JavaScript",
		Group:       "transform",
		Inputs:      1,
		Outputs:     1,
		Parameters: []ParameterSpec{
			{Name: "script", DisplayName: "Script", Type: "string", Required: true},
		},
	}
}

func (d *jsNode) Execute(ctx *ExecutionContext) ([][]model.ExecutionItem, error) {
	script, _ := ctx.Node().Parameters["script"].(string)
	if len(script) == 0 {
		return nil, fmt.Errorf("node %s: script can not be empty", ctx.Node().Id)
	}
	items := ctx.GetInputData(0)
	output := make([]model.ExecutionItem, 0, len(items))
	for _, item := range items {
		data, _ := json.Marshal(item.Json)
		expression := fmt.Sprintf("var $ = %s;\n", data) + script
		vm := goja.New()
		_, err := vm.RunString(expression)
		if err != nil {
			return nil, fmt.Errorf("error executing javascript %w", err)
		}
		val, err := vm.RunString("$")
		if err != nil {
			return nil, fmt.Errorf("error executing javascript %w", err)
		}
		res, err := json.Marshal(val.Export())
		if err != nil {
			return nil, err
		}
		var out map[string]any
		json.Unmarshal(res, &out)
		output = append(output, model.NewExecutionItem(out))
	}
	return [][]model.ExecutionItem{output}, nil
}
