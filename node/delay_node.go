package node

import (
	"time"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/util"
)

var _ Plugin = new(delayNode)

// delayNode sleeps for the configured number of seconds and passes its input
// through unchanged. The engine does not cancel an in flight sleep; stop
// requests take effect before the next node starts.
type delayNode struct{}

func (d *delayNode) Descriptor() Descriptor {
	return Descriptor{
		Name:        "delay",
		DisplayName: "Delay",
		Group:       "logic",
		Inputs:      1,
		Outputs:     1,
		Parameters: []ParameterSpec{
			{Name: "seconds", DisplayName: "Seconds", Type: "number", Default: 1},
		},
	}
}

func (d *delayNode) Execute(ctx *ExecutionContext) ([][]model.ExecutionItem, error) {
	seconds := util.ToInt(ctx.GetParameter("seconds", 0, 1))
	if seconds > 0 {
		time.Sleep(time.Duration(seconds) * time.Second)
	}
	return [][]model.ExecutionItem{ctx.GetInputData(0)}, nil
}
