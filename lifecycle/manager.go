package lifecycle

import (
	"sync"
	"time"

	"github.com/mohitkumar/flowpilot/engine"
	"github.com/mohitkumar/flowpilot/logger"
	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/persistence"
	"github.com/mohitkumar/flowpilot/service"
	"github.com/mohitkumar/flowpilot/util"
	"go.uber.org/zap"
)

type trackedRun struct {
	executionId string
	instance    *engine.WorkflowInstance
}

// LifecycleManager keeps one running workflow instance per active, workflow
// assigned account, reconciling its in memory tracking map against the
// persisted desired state. A single cooperative loop runs a pass, then waits
// a fixed delay after the pass completes before the next one.
type LifecycleManager struct {
	accounts persistence.AccountDao
	executor *service.ExecutionService
	interval time.Duration
	wg       *sync.WaitGroup

	mu      sync.Mutex
	tracked map[string]trackedRun

	passMu      sync.Mutex
	passRunning bool

	worker *util.DelayWorker
}

func NewLifecycleManager(accounts persistence.AccountDao, executor *service.ExecutionService,
	interval time.Duration, wg *sync.WaitGroup) *LifecycleManager {
	lm := &LifecycleManager{
		accounts: accounts,
		executor: executor,
		interval: interval,
		wg:       wg,
		tracked:  make(map[string]trackedRun),
	}
	lm.worker = util.NewDelayWorker("lifecycle-reconciler", interval, lm.Reconcile, wg)
	return lm
}

// Start runs one reconciliation pass immediately and schedules the rest.
func (lm *LifecycleManager) Start() {
	lm.worker.Start()
}

func (lm *LifecycleManager) Stop() error {
	lm.worker.Stop()
	return nil
}

// Reconcile runs one pass. A pass already in progress makes this a no-op, so
// overlapping timers or manual invocations can not run two passes at once.
func (lm *LifecycleManager) Reconcile() {
	if !lm.beginPass() {
		return
	}
	defer lm.endPass()

	desired, err := lm.accounts.ListActiveWithWorkflow()
	if err != nil {
		logger.Error("error fetching active accounts", zap.Error(err))
		return
	}
	desiredSet := make(map[string]model.ActiveAccount, len(desired))
	for _, account := range desired {
		desiredSet[account.AccountId] = account
	}

	var toLaunch []model.ActiveAccount
	lm.mu.Lock()
	for accountId, run := range lm.tracked {
		if _, ok := desiredSet[accountId]; !ok {
			logger.Info("stopping workflow for account", zap.String("account", accountId), zap.String("executionId", run.executionId))
			run.instance.Stop()
			delete(lm.tracked, accountId)
		}
	}
	for accountId, account := range desiredSet {
		if _, ok := lm.tracked[accountId]; !ok {
			toLaunch = append(toLaunch, account)
		}
	}
	lm.mu.Unlock()

	for _, account := range toLaunch {
		lm.launch(account)
	}
}

// launch starts an instance for the account and tracks it. The tracking map
// is held locked across the launch so the completion callback can not
// observe an untracked run.
func (lm *LifecycleManager) launch(account model.ActiveAccount) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if _, ok := lm.tracked[account.AccountId]; ok {
		return
	}
	result, err := lm.executor.Launch(service.LaunchRequest{
		WorkflowId:    account.WorkflowId,
		OwnerId:       account.OwnerId,
		AccountId:     account.AccountId,
		NotifyChannel: account.NotifyChannel,
		Trigger:       model.TRIGGER_AUTO,
		OnFinished: func(executionId string, err error) {
			lm.untrack(account.AccountId, executionId)
		},
	})
	if err != nil {
		logger.Error("error launching workflow for account", zap.String("account", account.AccountId), zap.Error(err))
		return
	}
	if result.Existing {
		return
	}
	logger.Info("workflow launched for account", zap.String("account", account.AccountId), zap.String("executionId", result.ExecutionId))
	lm.tracked[account.AccountId] = trackedRun{executionId: result.ExecutionId, instance: result.Instance}
}

// untrack drops the account's tracked run once it finished, allowing a
// relaunch on a later pass if the account is still desired.
func (lm *LifecycleManager) untrack(accountId string, executionId string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if run, ok := lm.tracked[accountId]; ok && run.executionId == executionId {
		delete(lm.tracked, accountId)
	}
}

// StartWorkflowForAccount opportunistically launches the account's workflow
// without waiting for the next pass, for example right after account
// creation. It silently no-ops when the account is not eligible.
func (lm *LifecycleManager) StartWorkflowForAccount(accountId string) {
	desired, err := lm.accounts.ListActiveWithWorkflow()
	if err != nil {
		logger.Error("error fetching active accounts", zap.Error(err))
		return
	}
	for _, account := range desired {
		if account.AccountId == accountId {
			lm.launch(account)
			return
		}
	}
}

// StopWorkflowForAccount untracks and stops the account's instance, for
// example on account deletion. The stop is advisory; an in flight external
// call inside a node is not cancelled.
func (lm *LifecycleManager) StopWorkflowForAccount(accountId string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if run, ok := lm.tracked[accountId]; ok {
		run.instance.Stop()
		delete(lm.tracked, accountId)
	}
}

// TrackedAccounts lists the account ids with a currently tracked instance.
func (lm *LifecycleManager) TrackedAccounts() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]string, 0, len(lm.tracked))
	for accountId := range lm.tracked {
		out = append(out, accountId)
	}
	return out
}

func (lm *LifecycleManager) beginPass() bool {
	lm.passMu.Lock()
	defer lm.passMu.Unlock()
	if lm.passRunning {
		return false
	}
	lm.passRunning = true
	return true
}

func (lm *LifecycleManager) endPass() {
	lm.passMu.Lock()
	lm.passRunning = false
	lm.passMu.Unlock()
}
