package engine

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mohitkumar/flowpilot/logger"
	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/node"
	"github.com/mohitkumar/flowpilot/notify"
	"go.uber.org/zap"
)

type InstanceState int

const CREATED InstanceState = 0
const RUNNING InstanceState = 1
const COMPLETED InstanceState = 2
const FAILED InstanceState = 3

const maxSnapshotLen = 1024

// InstanceConfig carries everything a single run needs. Definition is the
// snapshot captured when the execution row was inserted, so concurrent edits
// to the stored workflow do not affect this run.
type InstanceConfig struct {
	ExecutionId   string
	Definition    model.Workflow
	OwnerId       string
	AccountId     string
	Factories     map[string]node.Factory
	Capabilities  map[string]any
	Notifier      notify.Notifier
	NotifyChannel string
}

// WorkflowInstance is the state machine for one run of a workflow snapshot.
// The output map and log sequence are exclusive to the run; only the stop
// flag is touched from other goroutines.
type WorkflowInstance struct {
	executionId   string
	definition    model.Workflow
	ownerId       string
	accountId     string
	factories     map[string]node.Factory
	capabilities  map[string]any
	notifier      notify.Notifier
	notifyChannel string

	incoming map[string][]incomingEdge

	mu      sync.Mutex
	state   InstanceState
	stopped int32

	runData map[string][][]model.ExecutionItem
	runLog  []model.LogEntry
}

// NewWorkflowInstance validates the definition against the registered step
// set and prepares the traversal index. Configuration problems fail here,
// before anything is persisted as started.
func NewWorkflowInstance(cfg InstanceConfig) (*WorkflowInstance, error) {
	incoming, err := incomingIndex(&cfg.Definition)
	if err != nil {
		return nil, err
	}
	for _, n := range cfg.Definition.Nodes {
		if _, ok := cfg.Factories[n.Type]; !ok {
			return nil, ConfigurationError{Message: fmt.Sprintf("node %s references unregistered type %s", n.Id, n.Type)}
		}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = &notify.NoopNotifier{}
	}
	return &WorkflowInstance{
		executionId:   cfg.ExecutionId,
		definition:    cfg.Definition,
		ownerId:       cfg.OwnerId,
		accountId:     cfg.AccountId,
		factories:     cfg.Factories,
		capabilities:  cfg.Capabilities,
		notifier:      notifier,
		notifyChannel: cfg.NotifyChannel,
		incoming:      incoming,
		state:         CREATED,
		runData:       make(map[string][][]model.ExecutionItem),
	}, nil
}

func (wi *WorkflowInstance) ExecutionId() string {
	return wi.executionId
}

func (wi *WorkflowInstance) State() InstanceState {
	wi.mu.Lock()
	defer wi.mu.Unlock()
	return wi.state
}

// Stop requests an advisory halt. The flag is checked before each node
// starts; an in flight external call inside a node is not cancelled.
func (wi *WorkflowInstance) Stop() {
	atomic.StoreInt32(&wi.stopped, 1)
}

func (wi *WorkflowInstance) isStopped() bool {
	return atomic.LoadInt32(&wi.stopped) == 1
}

// Execute runs the traversal once. An instance is single shot: any later
// call, whether the run is still in progress or already finished, fails
// immediately with a ReentrancyError and leaves the first call's result
// untouched.
func (wi *WorkflowInstance) Execute() (map[string][][]model.ExecutionItem, []model.LogEntry, error) {
	wi.mu.Lock()
	if wi.state != CREATED {
		wi.mu.Unlock()
		return nil, nil, ReentrancyError{ExecutionId: wi.executionId}
	}
	wi.state = RUNNING
	wi.mu.Unlock()

	wi.notifyBestEffort("workflow start", func() error {
		return wi.notifier.NotifyWorkflowStart(wi.notifyChannel, wi.definition.Name, wi.executionId)
	})

	var runErr error
	for _, startId := range startNodes(&wi.definition, wi.incoming) {
		if err := wi.runNode(startId); err != nil {
			runErr = err
			break
		}
	}

	wi.mu.Lock()
	if runErr != nil {
		wi.state = FAILED
	} else {
		wi.state = COMPLETED
	}
	wi.mu.Unlock()

	if runErr != nil {
		wi.notifyBestEffort("workflow error", func() error {
			return wi.notifier.NotifyWorkflowError(wi.notifyChannel, wi.definition.Name, wi.executionId, runErr.Error())
		})
		return wi.runData, wi.runLog, runErr
	}
	wi.notifyBestEffort("workflow complete", func() error {
		return wi.notifier.NotifyWorkflowComplete(wi.notifyChannel, wi.definition.Name, wi.executionId)
	})
	return wi.runData, wi.runLog, nil
}

// runNode executes one node and recurses into its downstream connections.
// A node reachable from multiple branches may be visited more than once but
// executes exactly once: the memo short circuits repeat visits, and a visit
// arriving before every upstream has produced output defers until the last
// upstream branch reaches it.
func (wi *WorkflowInstance) runNode(nodeId string) error {
	if wi.isStopped() {
		return ErrStopped
	}
	if _, done := wi.runData[nodeId]; done {
		return nil
	}
	for _, edge := range wi.incoming[nodeId] {
		if _, ok := wi.runData[edge.SourceId]; !ok {
			return nil
		}
	}

	n := wi.definition.GetNode(nodeId)
	inputs := wi.gatherInputs(nodeId)
	plugin := wi.factories[n.Type]()
	ctx := node.NewExecutionContext(n, inputs, wi.capabilities)

	entry := model.LogEntry{
		NodeId:    n.Id,
		NodeName:  n.Name,
		NodeType:  n.Type,
		StartTime: time.Now(),
		Input:     snapshotItems(inputs),
	}
	logger.Debug("executing node", zap.String("executionId", wi.executionId), zap.String("node", n.Id), zap.String("type", n.Type))
	output, err := plugin.Execute(ctx)
	entry.EndTime = time.Now()
	if err != nil {
		entry.Status = model.NODE_RUN_FAILED
		entry.Error = err.Error()
		wi.runLog = append(wi.runLog, entry)
		return NodeExecutionError{NodeId: n.Id, NodeName: n.Name, Err: err}
	}
	if output == nil {
		output = [][]model.ExecutionItem{}
	}
	entry.Status = model.NODE_RUN_COMPLETED
	entry.Output = snapshotItems(output)
	wi.runLog = append(wi.runLog, entry)
	wi.runData[nodeId] = output

	if wi.shouldNotify(n, plugin) {
		wi.notifyBestEffort("node execution", func() error {
			return wi.notifier.NotifyNodeExecution(wi.notifyChannel, n.Name, n.Type, firstItemJson(output))
		})
	}

	for _, connections := range wi.definition.Connections[nodeId] {
		for _, conn := range connections {
			if err := wi.runNode(conn.Node); err != nil {
				return err
			}
		}
	}
	return nil
}

// gatherInputs concatenates the outputs of every upstream connection
// targeting the node, across all its incoming ports and edges, in the
// deterministic order of the incoming index.
func (wi *WorkflowInstance) gatherInputs(nodeId string) [][]model.ExecutionItem {
	edges := wi.incoming[nodeId]
	maxPort := 0
	for _, edge := range edges {
		if edge.TargetPort > maxPort {
			maxPort = edge.TargetPort
		}
	}
	inputs := make([][]model.ExecutionItem, maxPort+1)
	for _, edge := range edges {
		sourceOutput := wi.runData[edge.SourceId]
		if edge.SourcePort >= len(sourceOutput) {
			continue
		}
		inputs[edge.TargetPort] = append(inputs[edge.TargetPort], sourceOutput[edge.SourcePort]...)
	}
	return inputs
}

// shouldNotify resolves the effective notify flag: the definition level per
// node override takes priority over the plugin's default.
func (wi *WorkflowInstance) shouldNotify(n *model.Node, plugin node.Plugin) bool {
	if n.Notify != nil {
		return *n.Notify
	}
	return plugin.Descriptor().Notify
}

func (wi *WorkflowInstance) notifyBestEffort(what string, fn func() error) {
	if err := fn(); err != nil {
		logger.Error("notification failed", zap.String("executionId", wi.executionId), zap.String("notification", what), zap.Error(err))
	}
}

func snapshotItems(items [][]model.ExecutionItem) string {
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	if len(data) > maxSnapshotLen {
		return string(data[:maxSnapshotLen]) + "..."
	}
	return string(data)
}

func firstItemJson(output [][]model.ExecutionItem) string {
	if len(output) == 0 || len(output[0]) == 0 {
		return "{}"
	}
	data, err := json.Marshal(output[0][0].Json)
	if err != nil {
		return "{}"
	}
	return string(data)
}
