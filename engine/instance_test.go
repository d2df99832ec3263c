package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/node"
	"github.com/stretchr/testify/require"
)

type stubPlugin struct {
	name    string
	inputs  int
	outputs int
	notify  bool
	fn      func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error)
}

func (p *stubPlugin) Descriptor() node.Descriptor {
	return node.Descriptor{
		Name:    p.name,
		Inputs:  p.inputs,
		Outputs: p.outputs,
		Notify:  p.notify,
	}
}

func (p *stubPlugin) Execute(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
	if p.fn != nil {
		return p.fn(ctx)
	}
	return [][]model.ExecutionItem{{model.NewExecutionItem(map[string]any{"n": 1})}}, nil
}

func stubFactory(name string, fn func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error)) node.Factory {
	return func() node.Plugin {
		return &stubPlugin{name: name, inputs: 1, outputs: 1, fn: fn}
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	started   []string
	completed []string
	failed    []string
	nodes     []string
}

func (rn *recordingNotifier) NotifyWorkflowStart(channel, workflowName, executionId string) error {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.started = append(rn.started, executionId)
	return nil
}

func (rn *recordingNotifier) NotifyWorkflowComplete(channel, workflowName, executionId string) error {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.completed = append(rn.completed, executionId)
	return nil
}

func (rn *recordingNotifier) NotifyWorkflowError(channel, workflowName, executionId, errorMessage string) error {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.failed = append(rn.failed, errorMessage)
	return nil
}

func (rn *recordingNotifier) NotifyNodeExecution(channel, nodeName, nodeType, outputJson string) error {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.nodes = append(rn.nodes, nodeName)
	return nil
}

func linearDefinition() model.Workflow {
	return model.Workflow{
		Id:   "wf-1",
		Name: "linear",
		Nodes: []model.Node{
			{Id: "A", Name: "A", Type: "stub"},
			{Id: "B", Name: "B", Type: "stub"},
			{Id: "C", Name: "C", Type: "stub"},
		},
		Connections: map[string][][]model.Connection{
			"A": {{{Node: "B", Port: 0}}},
			"B": {{{Node: "C", Port: 0}}},
		},
	}
}

func newInstance(t *testing.T, wf model.Workflow, factories map[string]node.Factory) *WorkflowInstance {
	t.Helper()
	instance, err := NewWorkflowInstance(InstanceConfig{
		ExecutionId: "exec-1",
		Definition:  wf,
		OwnerId:     "owner-1",
		AccountId:   "acc-1",
		Factories:   factories,
	})
	require.NoError(t, err)
	return instance
}

func TestLinearExecution(t *testing.T) {
	factories := map[string]node.Factory{"stub": stubFactory("stub", nil)}
	instance := newInstance(t, linearDefinition(), factories)

	outputs, runLog, err := instance.Execute()
	require.NoError(t, err)
	require.Len(t, outputs, 3)
	require.Len(t, runLog, 3)
	require.Equal(t, "A", runLog[0].NodeId)
	require.Equal(t, "B", runLog[1].NodeId)
	require.Equal(t, "C", runLog[2].NodeId)
	for _, entry := range runLog {
		require.Equal(t, model.NODE_RUN_COMPLETED, entry.Status)
	}
	require.Equal(t, COMPLETED, instance.State())
}

func TestMergeNodeExecutesOnceWithConcatenatedInputs(t *testing.T) {
	var mergeRuns int
	var mergeInputs []model.ExecutionItem
	factories := map[string]node.Factory{
		"source": stubFactory("source", func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
			return [][]model.ExecutionItem{{model.NewExecutionItem(map[string]any{"from": ctx.Node().Id})}}, nil
		}),
		"merge": stubFactory("merge", func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
			mergeRuns++
			mergeInputs = ctx.GetInputData(0)
			return [][]model.ExecutionItem{mergeInputs}, nil
		}),
	}
	wf := model.Workflow{
		Id: "wf-merge",
		Nodes: []model.Node{
			{Id: "A", Name: "A", Type: "source"},
			{Id: "B", Name: "B", Type: "source"},
			{Id: "C", Name: "C", Type: "merge"},
		},
		Connections: map[string][][]model.Connection{
			"A": {{{Node: "C", Port: 0}}},
			"B": {{{Node: "C", Port: 0}}},
		},
	}
	instance := newInstance(t, wf, factories)

	_, runLog, err := instance.Execute()
	require.NoError(t, err)
	require.Equal(t, 1, mergeRuns)
	require.Len(t, mergeInputs, 2)
	require.Equal(t, "A", mergeInputs[0].Json["from"])
	require.Equal(t, "B", mergeInputs[1].Json["from"])
	require.Len(t, runLog, 3)
}

func TestDiamondExecutesSharedNodeOnce(t *testing.T) {
	runs := make(map[string]int)
	counting := stubFactory("stub", nil)
	factories := map[string]node.Factory{
		"stub": func() node.Plugin {
			p := counting().(*stubPlugin)
			p.fn = func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
				runs[ctx.Node().Id]++
				return [][]model.ExecutionItem{{model.NewExecutionItem(nil)}}, nil
			}
			return p
		},
	}
	wf := model.Workflow{
		Id: "wf-diamond",
		Nodes: []model.Node{
			{Id: "A", Name: "A", Type: "stub"},
			{Id: "B", Name: "B", Type: "stub"},
			{Id: "C", Name: "C", Type: "stub"},
			{Id: "D", Name: "D", Type: "stub"},
		},
		Connections: map[string][][]model.Connection{
			"A": {{{Node: "B", Port: 0}, {Node: "C", Port: 0}}},
			"B": {{{Node: "D", Port: 0}}},
			"C": {{{Node: "D", Port: 0}}},
		},
	}
	instance := newInstance(t, wf, factories)

	_, runLog, err := instance.Execute()
	require.NoError(t, err)
	require.Len(t, runLog, 4)
	for id, count := range runs {
		require.Equalf(t, 1, count, "node %s executed %d times", id, count)
	}
}

func TestConcurrentExecuteFailsWithReentrancyError(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	factories := map[string]node.Factory{
		"stub": stubFactory("stub", func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
			if ctx.Node().Id == "A" {
				close(started)
				<-release
			}
			return [][]model.ExecutionItem{{model.NewExecutionItem(nil)}}, nil
		}),
	}
	instance := newInstance(t, linearDefinition(), factories)

	var firstErr error
	done := make(chan struct{})
	go func() {
		_, _, firstErr = instance.Execute()
		close(done)
	}()
	<-started

	_, _, secondErr := instance.Execute()
	var reentrancy ReentrancyError
	require.ErrorAs(t, secondErr, &reentrancy)
	require.Equal(t, "exec-1", reentrancy.ExecutionId)

	close(release)
	<-done
	require.NoError(t, firstErr)
	require.Equal(t, COMPLETED, instance.State())
}

func TestExecuteAfterCompletionFails(t *testing.T) {
	notifier := &recordingNotifier{}
	factories := map[string]node.Factory{"stub": stubFactory("stub", nil)}
	instance, err := NewWorkflowInstance(InstanceConfig{
		ExecutionId: "exec-1",
		Definition:  linearDefinition(),
		Factories:   factories,
		Notifier:    notifier,
	})
	require.NoError(t, err)

	_, _, err = instance.Execute()
	require.NoError(t, err)
	require.Equal(t, COMPLETED, instance.State())

	_, _, err = instance.Execute()
	var reentrancy ReentrancyError
	require.ErrorAs(t, err, &reentrancy)
	// the terminal state and the first run's notifications are untouched
	require.Equal(t, COMPLETED, instance.State())
	require.Equal(t, []string{"exec-1"}, notifier.started)
	require.Equal(t, []string{"exec-1"}, notifier.completed)
}

func TestNodeFailureAbortsDownstream(t *testing.T) {
	boom := errors.New("boom")
	factories := map[string]node.Factory{
		"stub": stubFactory("stub", func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
			if ctx.Node().Id == "B" {
				return nil, boom
			}
			return [][]model.ExecutionItem{{model.NewExecutionItem(nil)}}, nil
		}),
	}
	instance := newInstance(t, linearDefinition(), factories)

	_, runLog, err := instance.Execute()
	var nodeErr NodeExecutionError
	require.ErrorAs(t, err, &nodeErr)
	require.Equal(t, "B", nodeErr.NodeId)
	require.ErrorIs(t, err, boom)

	require.Len(t, runLog, 2)
	require.Equal(t, model.NODE_RUN_COMPLETED, runLog[0].Status)
	require.Equal(t, "B", runLog[1].NodeId)
	require.Equal(t, model.NODE_RUN_FAILED, runLog[1].Status)
	require.Contains(t, runLog[1].Error, "boom")
	require.Equal(t, FAILED, instance.State())
}

func TestUnregisteredNodeTypeIsConfigurationError(t *testing.T) {
	wf := linearDefinition()
	wf.Nodes[1].Type = "missing"
	_, err := NewWorkflowInstance(InstanceConfig{
		ExecutionId: "exec-1",
		Definition:  wf,
		Factories:   map[string]node.Factory{"stub": stubFactory("stub", nil)},
	})
	var confErr ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Contains(t, confErr.Message, "missing")
}

func TestDanglingConnectionIsConfigurationError(t *testing.T) {
	wf := linearDefinition()
	wf.Connections["B"] = [][]model.Connection{{{Node: "ghost", Port: 0}}}
	_, err := NewWorkflowInstance(InstanceConfig{
		ExecutionId: "exec-1",
		Definition:  wf,
		Factories:   map[string]node.Factory{"stub": stubFactory("stub", nil)},
	})
	var confErr ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Contains(t, confErr.Message, "ghost")
}

func TestStartNodeGetsSyntheticEmptyItem(t *testing.T) {
	var seen []model.ExecutionItem
	factories := map[string]node.Factory{
		"stub": stubFactory("stub", func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
			if ctx.Node().Id == "A" {
				seen = ctx.GetInputData(0)
			}
			return [][]model.ExecutionItem{{model.NewExecutionItem(nil)}}, nil
		}),
	}
	instance := newInstance(t, linearDefinition(), factories)

	_, _, err := instance.Execute()
	require.NoError(t, err)
	require.Len(t, seen, 1)
	require.Empty(t, seen[0].Json)
}

func TestNotifyOverrideAndRunNotifications(t *testing.T) {
	notifier := &recordingNotifier{}
	wf := linearDefinition()
	on := true
	off := false
	wf.Nodes[0].Notify = &on
	wf.Nodes[1].Notify = &off

	factories := map[string]node.Factory{
		// plugin default says notify, node B overrides it off
		"stub": func() node.Plugin {
			return &stubPlugin{name: "stub", inputs: 1, outputs: 1, notify: true}
		},
	}
	instance, err := NewWorkflowInstance(InstanceConfig{
		ExecutionId:   "exec-1",
		Definition:    wf,
		Factories:     factories,
		Notifier:      notifier,
		NotifyChannel: "chan-1",
	})
	require.NoError(t, err)

	_, _, err = instance.Execute()
	require.NoError(t, err)
	require.Equal(t, []string{"exec-1"}, notifier.started)
	require.Equal(t, []string{"exec-1"}, notifier.completed)
	require.Equal(t, []string{"A", "C"}, notifier.nodes)
	require.Empty(t, notifier.failed)
}

func TestWorkflowErrorNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	factories := map[string]node.Factory{
		"stub": stubFactory("stub", func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
			return nil, fmt.Errorf("provider unavailable")
		}),
	}
	wf := linearDefinition()
	instance, err := NewWorkflowInstance(InstanceConfig{
		ExecutionId: "exec-1",
		Definition:  wf,
		Factories:   factories,
		Notifier:    notifier,
	})
	require.NoError(t, err)

	_, _, err = instance.Execute()
	require.Error(t, err)
	require.Len(t, notifier.failed, 1)
	require.Contains(t, notifier.failed[0], "provider unavailable")
	require.Empty(t, notifier.completed)
}

func TestStopHaltsBeforeNextNode(t *testing.T) {
	var instance *WorkflowInstance
	factories := map[string]node.Factory{
		"stub": stubFactory("stub", func(ctx *node.ExecutionContext) ([][]model.ExecutionItem, error) {
			if ctx.Node().Id == "A" {
				instance.Stop()
			}
			return [][]model.ExecutionItem{{model.NewExecutionItem(nil)}}, nil
		}),
	}
	instance = newInstance(t, linearDefinition(), factories)

	_, runLog, err := instance.Execute()
	require.ErrorIs(t, err, ErrStopped)
	require.Len(t, runLog, 1)
	require.Equal(t, "A", runLog[0].NodeId)
	require.Equal(t, FAILED, instance.State())
}
