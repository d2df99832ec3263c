package inmem

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/persistence"
)

var _ persistence.WorkflowDao = new(InmemWorkflowDao)

type InmemWorkflowDao struct {
	mu        sync.Mutex
	workflows map[string]model.Workflow
}

func NewInmemWorkflowDao() *InmemWorkflowDao {
	return &InmemWorkflowDao{workflows: make(map[string]model.Workflow)}
}

func (dao *InmemWorkflowDao) Save(wf model.Workflow) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	dao.workflows[wf.Id] = wf
	return nil
}

func (dao *InmemWorkflowDao) Delete(id string) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	delete(dao.workflows, id)
	return nil
}

func (dao *InmemWorkflowDao) Get(id string) (*model.Workflow, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	wf, ok := dao.workflows[id]
	if !ok {
		return nil, persistence.StorageLayerError{Message: fmt.Sprintf("workflow %s not found", id)}
	}
	return &wf, nil
}

func (dao *InmemWorkflowDao) List() ([]model.Workflow, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	result := make([]model.Workflow, 0, len(dao.workflows))
	for _, wf := range dao.workflows {
		result = append(result, wf)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

var _ persistence.ExecutionDao = new(InmemExecutionDao)

type InmemExecutionDao struct {
	mu         sync.Mutex
	executions map[string]model.Execution
	running    map[string]string
	creates    int
}

func NewInmemExecutionDao() *InmemExecutionDao {
	return &InmemExecutionDao{
		executions: make(map[string]model.Execution),
		running:    make(map[string]string),
	}
}

func (dao *InmemExecutionDao) Create(execution model.Execution) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	dao.executions[execution.Id] = execution
	dao.running[execution.DedupKey()] = execution.Id
	dao.creates++
	return nil
}

// CreateCount reports how many rows were inserted, used by tests asserting
// dedup behaviour.
func (dao *InmemExecutionDao) CreateCount() int {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	return dao.creates
}

func (dao *InmemExecutionDao) Get(id string) (*model.Execution, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	execution, ok := dao.executions[id]
	if !ok {
		return nil, persistence.StorageLayerError{Message: fmt.Sprintf("execution %s not found", id)}
	}
	return &execution, nil
}

func (dao *InmemExecutionDao) FindRunning(workflowId string, ownerId string, accountId string) (*model.Execution, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	execId, ok := dao.running[model.ExecutionDedupKey(workflowId, ownerId, accountId)]
	if !ok {
		return nil, nil
	}
	execution := dao.executions[execId]
	if execution.Status != model.EXECUTION_RUNNING {
		delete(dao.running, execution.DedupKey())
		return nil, nil
	}
	return &execution, nil
}

func (dao *InmemExecutionDao) Finish(id string, status model.ExecutionStatus, errorMessage string, log []model.LogEntry) (bool, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	execution, ok := dao.executions[id]
	if !ok {
		return false, persistence.StorageLayerError{Message: fmt.Sprintf("execution %s not found", id)}
	}
	if execution.Status != model.EXECUTION_RUNNING {
		return false, nil
	}
	execution.Status = status
	execution.Error = errorMessage
	execution.Log = log
	execution.FinishedAt = time.Now()
	dao.executions[id] = execution
	delete(dao.running, execution.DedupKey())
	return true, nil
}

var _ persistence.AccountDao = new(InmemAccountDao)

type InmemAccountDao struct {
	mu       sync.Mutex
	accounts map[string]model.Account
}

func NewInmemAccountDao() *InmemAccountDao {
	return &InmemAccountDao{accounts: make(map[string]model.Account)}
}

func (dao *InmemAccountDao) Save(account model.Account) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	dao.accounts[account.Id] = account
	return nil
}

func (dao *InmemAccountDao) Delete(id string) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	delete(dao.accounts, id)
	return nil
}

func (dao *InmemAccountDao) Get(id string) (*model.Account, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	account, ok := dao.accounts[id]
	if !ok {
		return nil, persistence.StorageLayerError{Message: fmt.Sprintf("account %s not found", id)}
	}
	return &account, nil
}

func (dao *InmemAccountDao) ListActiveWithWorkflow() ([]model.ActiveAccount, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	var result []model.ActiveAccount
	for _, account := range dao.accounts {
		if !account.Active || account.WorkflowId == "" {
			continue
		}
		result = append(result, model.ActiveAccount{
			AccountId:     account.Id,
			OwnerId:       account.OwnerId,
			WorkflowId:    account.WorkflowId,
			NotifyChannel: account.NotifyChannel,
		})
	}
	return result, nil
}
