package persistence

import (
	"fmt"

	"github.com/mohitkumar/flowpilot/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type WorkflowDao interface {
	Save(wf model.Workflow) error

	Delete(id string) error

	Get(id string) (*model.Workflow, error)

	// List returns all stored definitions, ordered by id.
	List() ([]model.Workflow, error)
}

type ExecutionDao interface {
	// Create inserts the execution row and registers its dedup key in the
	// running index.
	Create(execution model.Execution) error

	Get(id string) (*model.Execution, error)

	// FindRunning returns the execution currently running for the dedup key,
	// or nil when there is none. Valid across process restarts.
	FindRunning(workflowId string, ownerId string, accountId string) (*model.Execution, error)

	// Finish moves the row to a terminal status only if it is still running,
	// and clears the running index entry. Returns false when the row was
	// already finalized by a concurrent path.
	Finish(id string, status model.ExecutionStatus, errorMessage string, log []model.LogEntry) (bool, error)
}

type AccountDao interface {
	Save(account model.Account) error

	Delete(id string) error

	Get(id string) (*model.Account, error)

	// ListActiveWithWorkflow fetches all active workflow assigned accounts,
	// including the owner notification channel, in one query.
	ListActiveWithWorkflow() ([]model.ActiveAccount, error)
}
