package util

import (
	"sync"
	"time"

	"github.com/mohitkumar/flowpilot/logger"
	"go.uber.org/zap"
)

// DelayWorker runs fn immediately on Start and then repeatedly with a fixed
// delay after each completion. Unlike a fixed rate ticker this never overlaps
// two invocations when fn runs longer than the delay.
type DelayWorker struct {
	stop  chan struct{}
	delay time.Duration
	wg    *sync.WaitGroup
	name  string
	fn    func()
}

func NewDelayWorker(name string, delay time.Duration, fn func(), wg *sync.WaitGroup) *DelayWorker {
	return &DelayWorker{
		stop:  make(chan struct{}),
		delay: delay,
		wg:    wg,
		fn:    fn,
		name:  name,
	}
}

func (dw *DelayWorker) Start() {
	dw.wg.Add(1)
	go func() {
		defer dw.wg.Done()
		for {
			dw.fn()
			select {
			case <-time.After(dw.delay):
			case <-dw.stop:
				logger.Info("stopping delay worker", zap.String("worker", dw.name))
				return
			}
		}
	}()
	logger.Info("delay worker started", zap.String("worker", dw.name))
}

func (dw *DelayWorker) Stop() {
	dw.stop <- struct{}{}
}
