package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/flowpilot/engine"
	"github.com/mohitkumar/flowpilot/logger"
	"github.com/mohitkumar/flowpilot/metadata"
	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/node"
	"github.com/mohitkumar/flowpilot/notify"
	"github.com/mohitkumar/flowpilot/persistence"
	"github.com/mohitkumar/flowpilot/util"
	"go.uber.org/zap"
)

// LaunchRequest asks for one execution of the workflow currently assigned to
// (workflow, owner, account). OnFinished, when set, is invoked after the
// run's terminal status has been persisted.
type LaunchRequest struct {
	WorkflowId    string
	OwnerId       string
	AccountId     string
	NotifyChannel string
	Trigger       model.TriggerType
	OnFinished    func(executionId string, err error)
}

// LaunchResult reports the execution identity immediately; the run itself
// proceeds in the background and its final status is observed by re-querying
// the persisted row. Existing is true when a running execution for the same
// dedup key was found and no new row was inserted.
type LaunchResult struct {
	ExecutionId string
	Instance    *engine.WorkflowInstance
	Existing    bool
}

type runTask struct {
	executionId string
	instance    *engine.WorkflowInstance
	onFinished  func(executionId string, err error)
}

// ExecutionService owns the trigger path: duplicate run prevention, the
// execution row insert, and the background run whose completion goes through
// the single guarded Finish transition shared by every completion path.
type ExecutionService struct {
	metadataService metadata.Service
	executions      persistence.ExecutionDao
	registry        *node.Registry
	notifier        notify.Notifier
	capabilities    map[string]any
	inflight        *inflightGuard
	runner          *util.Worker
}

func NewExecutionService(metadataService metadata.Service, executions persistence.ExecutionDao,
	registry *node.Registry, notifier notify.Notifier, capabilities map[string]any,
	wg *sync.WaitGroup, runnerCapacity int) *ExecutionService {
	s := &ExecutionService{
		metadataService: metadataService,
		executions:      executions,
		registry:        registry,
		notifier:        notifier,
		capabilities:    capabilities,
		inflight:        newInflightGuard(),
	}
	s.runner = util.NewWorker("execution-runner", wg, s.runInstance, runnerCapacity)
	return s
}

func (s *ExecutionService) Start() {
	s.runner.Start()
}

func (s *ExecutionService) Stop() error {
	s.runner.Stop()
	return nil
}

// Launch triggers one execution for the dedup key. When a persisted running
// row matches the key, or the key is marked in flight, the existing
// execution's identity is returned and nothing new is inserted or launched.
func (s *ExecutionService) Launch(req LaunchRequest) (*LaunchResult, error) {
	existing, err := s.executions.FindRunning(req.WorkflowId, req.OwnerId, req.AccountId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Debug("execution already running", zap.String("executionId", existing.Id), zap.String("workflow", req.WorkflowId))
		return &LaunchResult{ExecutionId: existing.Id, Existing: true}, nil
	}

	executionId := uuid.New().String()
	key := model.ExecutionDedupKey(req.WorkflowId, req.OwnerId, req.AccountId)
	pendingId, marked := s.inflight.MarkIfAbsent(key, executionId)
	if !marked {
		logger.Debug("execution already in flight", zap.String("executionId", pendingId), zap.String("workflow", req.WorkflowId))
		return &LaunchResult{ExecutionId: pendingId, Existing: true}, nil
	}
	defer s.inflight.Clear(key)

	wf, err := s.metadataService.Get(req.WorkflowId)
	if err != nil {
		return nil, err
	}
	instance, err := engine.NewWorkflowInstance(engine.InstanceConfig{
		ExecutionId:   executionId,
		Definition:    *wf,
		OwnerId:       req.OwnerId,
		AccountId:     req.AccountId,
		Factories:     s.registry.Factories(),
		Capabilities:  s.capabilities,
		Notifier:      s.notifier,
		NotifyChannel: req.NotifyChannel,
	})
	if err != nil {
		return nil, err
	}

	execution := model.Execution{
		Id:         executionId,
		WorkflowId: req.WorkflowId,
		OwnerId:    req.OwnerId,
		AccountId:  req.AccountId,
		Status:     model.EXECUTION_RUNNING,
		Trigger:    req.Trigger,
		Definition: *wf,
		StartedAt:  time.Now(),
	}
	if err := s.executions.Create(execution); err != nil {
		return nil, err
	}
	logger.Info("execution started", zap.String("executionId", executionId), zap.String("workflow", req.WorkflowId),
		zap.String("account", req.AccountId), zap.String("trigger", string(req.Trigger)))

	s.runner.Sender() <- runTask{
		executionId: executionId,
		instance:    instance,
		onFinished:  req.OnFinished,
	}
	return &LaunchResult{ExecutionId: executionId, Instance: instance}, nil
}

// runInstance executes one run on its own runner goroutine and finalizes
// its row through the guarded Finish transition. Runs for distinct dedup
// keys proceed fully concurrently.
func (s *ExecutionService) runInstance(t util.Task) error {
	task := t.(runTask)
	_, runLog, runErr := task.instance.Execute()

	status := model.EXECUTION_COMPLETED
	message := ""
	if runErr != nil {
		status = model.EXECUTION_FAILED
		message = runErr.Error()
		logger.Error("execution failed", zap.String("executionId", task.executionId), zap.Error(runErr))
	} else {
		logger.Info("execution completed", zap.String("executionId", task.executionId))
	}

	updated, err := s.executions.Finish(task.executionId, status, message, runLog)
	if err != nil {
		logger.Error("error finalizing execution", zap.String("executionId", task.executionId), zap.Error(err))
	} else if !updated {
		logger.Debug("execution already finalized by another path", zap.String("executionId", task.executionId))
	}

	if task.onFinished != nil {
		// detached so a slow callback can not stall the runner
		go task.onFinished(task.executionId, runErr)
	}
	return nil
}
