package engine

import (
	"errors"
	"fmt"
)

// ErrStopped aborts a traversal when an advisory stop was requested between
// nodes.
var ErrStopped = errors.New("execution stopped")

// ConfigurationError reports a definition the engine can not run: an
// unregistered node type, a duplicate node id or a connection targeting a
// missing node.
type ConfigurationError struct {
	Message string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid workflow configuration: %s", e.Message)
}

// ReentrancyError is returned when Execute is called on an instance that
// was already started. Instances run at most once; there is no queueing and
// no retry.
type ReentrancyError struct {
	ExecutionId string
}

func (e ReentrancyError) Error() string {
	return fmt.Sprintf("execution %s was already started", e.ExecutionId)
}

// NodeExecutionError wraps whatever a plugin raised. The engine propagates it
// opaquely, message only.
type NodeExecutionError struct {
	NodeId   string
	NodeName string
	Err      error
}

func (e NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeName, e.NodeId, e.Err)
}

func (e NodeExecutionError) Unwrap() error {
	return e.Err
}
