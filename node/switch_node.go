package node

import (
	"fmt"
	"strconv"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/oliveagle/jsonpath"
)

const switchOutputs = 4

var _ Plugin = new(switchNode)

// switchNode routes each input item to the output port whose case value
// matches the evaluated expression. Items with no matching case fall through
// to the last port.
type switchNode struct{}

func (d *switchNode) Descriptor() Descriptor {
	return Descriptor{
		Name:        "switch",
		DisplayName: "Switch",
		Group:       "logic",
		Inputs:      1,
		Outputs:     switchOutputs,
		Parameters: []ParameterSpec{
			{Name: "expression", DisplayName: "Expression", Type: "string", Required: true},
			{Name: "cases", DisplayName: "Cases", Type: "list", Required: true},
		},
	}
}

func (d *switchNode) Execute(ctx *ExecutionContext) ([][]model.ExecutionItem, error) {
	expression, _ := ctx.Node().Parameters["expression"].(string)
	rawCases, _ := ctx.Node().Parameters["cases"].([]any)
	cases := make([]string, 0, len(rawCases))
	for _, c := range rawCases {
		cases = append(cases, fmt.Sprintf("%v", c))
	}
	output := make([][]model.ExecutionItem, switchOutputs)
	for _, item := range ctx.GetInputData(0) {
		value, err := jsonpath.JsonPathLookup(item.Json, expression)
		if err != nil {
			return nil, err
		}
		port := len(output) - 1
		for i, c := range cases {
			if i < len(output)-1 && c == stringify(value) {
				port = i
				break
			}
		}
		output[port] = append(output[port], item)
	}
	return output, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case int, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.Itoa(int(v))
	case float64:
		return strconv.Itoa(int(v))
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
