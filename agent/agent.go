package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/mohitkumar/flowpilot/config"
	"github.com/mohitkumar/flowpilot/lifecycle"
	"github.com/mohitkumar/flowpilot/logger"
	"github.com/mohitkumar/flowpilot/metadata"
	"github.com/mohitkumar/flowpilot/node"
	"github.com/mohitkumar/flowpilot/notify"
	"github.com/mohitkumar/flowpilot/persistence"
	"github.com/mohitkumar/flowpilot/persistence/inmem"
	rd "github.com/mohitkumar/flowpilot/persistence/redis"
	"github.com/mohitkumar/flowpilot/rest"
	"github.com/mohitkumar/flowpilot/service"
)

// Agent wires the components together in dependency order and owns their
// start/stop lifecycle.
type Agent struct {
	Config config.Config

	workflows  persistence.WorkflowDao
	executions persistence.ExecutionDao
	accounts   persistence.AccountDao

	registry         *node.Registry
	notifier         notify.Notifier
	metadataService  metadata.Service
	executionService *service.ExecutionService
	lifecycleManager *lifecycle.LifecycleManager
	httpServer       *rest.Server

	shutdown     bool
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupStorage,
		a.setupRegistry,
		a.setupNotifier,
		a.setupServices,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		rdConf := rd.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		}
		a.workflows = rd.NewRedisWorkflowDao(rdConf)
		a.executions = rd.NewRedisExecutionDao(rdConf)
		a.accounts = rd.NewRedisAccountDao(rdConf)
	case config.STORAGE_TYPE_INMEM:
		a.workflows = inmem.NewInmemWorkflowDao()
		a.executions = inmem.NewInmemExecutionDao()
		a.accounts = inmem.NewInmemAccountDao()
	default:
		return fmt.Errorf("unknown storage type %s", a.Config.StorageType)
	}
	return nil
}

func (a *Agent) setupRegistry() error {
	a.registry = node.NewRegistry()
	return node.RegisterBuiltins(a.registry)
}

func (a *Agent) setupNotifier() error {
	if a.Config.NotifyLogFile == "" {
		a.notifier = &notify.NoopNotifier{}
		return nil
	}
	notifier, err := notify.NewLogFileNotifier(a.Config.NotifyLogFile)
	if err != nil {
		return err
	}
	a.notifier = notifier
	return nil
}

func (a *Agent) setupServices() error {
	a.metadataService = metadata.NewService(a.workflows, a.registry)
	// capability handles (wallet service, signer) are provider specific and
	// plugged in here when a provider integration is linked in
	capabilities := map[string]any{}
	a.executionService = service.NewExecutionService(a.metadataService, a.executions,
		a.registry, a.notifier, capabilities, &a.wg, a.Config.RunnerCapacity)
	interval := time.Duration(a.Config.ReconcileIntervalSeconds) * time.Second
	a.lifecycleManager = lifecycle.NewLifecycleManager(a.accounts, a.executionService, interval, &a.wg)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.metadataService, a.executionService,
		a.executions, a.accounts, a.lifecycleManager, a.registry)
	return err
}

func (a *Agent) Start() error {
	a.executionService.Start()
	a.lifecycleManager.Start()
	go func() {
		if err := a.httpServer.Start(); err != nil {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.lifecycleManager.Stop,
		a.executionService.Stop,
		a.httpServer.Stop,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
