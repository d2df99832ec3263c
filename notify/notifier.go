package notify

// Notifier delivers owner facing messages about workflow runs. Every call is
// fire and forget from the engine's point of view: a delivery error is logged
// by the caller and never escalates into the run's own failure path.
type Notifier interface {
	NotifyWorkflowStart(channel string, workflowName string, executionId string) error
	NotifyWorkflowComplete(channel string, workflowName string, executionId string) error
	NotifyWorkflowError(channel string, workflowName string, executionId string, errorMessage string) error
	NotifyNodeExecution(channel string, nodeName string, nodeType string, outputJson string) error
}

type NoopNotifier struct{}

var _ Notifier = new(NoopNotifier)

func (n *NoopNotifier) NotifyWorkflowStart(channel string, workflowName string, executionId string) error {
	return nil
}

func (n *NoopNotifier) NotifyWorkflowComplete(channel string, workflowName string, executionId string) error {
	return nil
}

func (n *NoopNotifier) NotifyWorkflowError(channel string, workflowName string, executionId string, errorMessage string) error {
	return nil
}

func (n *NoopNotifier) NotifyNodeExecution(channel string, nodeName string, nodeType string, outputJson string) error {
	return nil
}
