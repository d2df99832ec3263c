package model

import "time"

type ExecutionStatus string

const EXECUTION_RUNNING ExecutionStatus = "running"
const EXECUTION_COMPLETED ExecutionStatus = "completed"
const EXECUTION_FAILED ExecutionStatus = "failed"

type TriggerType string

const TRIGGER_MANUAL TriggerType = "manual"
const TRIGGER_AUTO TriggerType = "auto"

type NodeRunStatus string

const NODE_RUN_COMPLETED NodeRunStatus = "completed"
const NODE_RUN_FAILED NodeRunStatus = "failed"

// LogEntry records one node visit of a run. Entries are appended in
// execution order and never mutated afterwards.
type LogEntry struct {
	NodeId    string        `json:"nodeId"`
	NodeName  string        `json:"nodeName"`
	NodeType  string        `json:"nodeType"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Status    NodeRunStatus `json:"status"`
	Input     string        `json:"input,omitempty"`
	Output    string        `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Execution is the persisted row for one run. Definition holds the snapshot
// of the workflow captured when the run started, decoupling it from
// concurrent edits to the stored definition.
type Execution struct {
	Id          string          `json:"id"`
	WorkflowId  string          `json:"workflowId"`
	OwnerId     string          `json:"ownerId"`
	AccountId   string          `json:"accountId,omitempty"`
	Status      ExecutionStatus `json:"status"`
	Trigger     TriggerType     `json:"trigger"`
	Definition  Workflow        `json:"definition"`
	StartedAt   time.Time       `json:"startedAt"`
	FinishedAt  time.Time       `json:"finishedAt,omitempty"`
	Error       string          `json:"error,omitempty"`
	Log         []LogEntry      `json:"log,omitempty"`
}

// DedupKey identifies at-most-one tracked running execution.
func (e *Execution) DedupKey() string {
	return ExecutionDedupKey(e.WorkflowId, e.OwnerId, e.AccountId)
}

func ExecutionDedupKey(workflowId string, ownerId string, accountId string) string {
	return workflowId + ":" + ownerId + ":" + accountId
}
