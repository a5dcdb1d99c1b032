package dns

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"leasesync/internal/lock"
)

// Recorder persists finished pass reports
type Recorder interface {
	Record(ctx context.Context, report *Report) error
}

// Runner serializes sync passes and remembers the last report.
// The CLI, the HTTP API and the periodic worker all go through it.
type Runner struct {
	reconciler *Reconciler
	locker     lock.Locker
	recorder   Recorder
	logger     *logrus.Entry

	mu   sync.RWMutex
	last *Report
}

// NewRunner creates a Runner. A nil locker means an in-process lock; a nil recorder disables history.
func NewRunner(reconciler *Reconciler, locker lock.Locker, recorder Recorder, logger *logrus.Entry) *Runner {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Runner{
		reconciler: reconciler,
		locker:     locker,
		recorder:   recorder,
		logger:     logger.WithField("component", "runner"),
	}
}

// RunOnce runs one pass under the lock. It returns lock.ErrLocked without running
// when another pass holds the lock.
func (r *Runner) RunOnce(ctx context.Context, dryRun bool) (*Report, error) {
	release, err := r.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	report, runErr := r.reconciler.Run(ctx, dryRun)

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	if r.recorder != nil && report != nil {
		if err := r.recorder.Record(ctx, report); err != nil {
			r.logger.Warnf("Failed to record sync history: %v", err)
		}
	}
	return report, runErr
}

// LastReport returns the report of the most recent pass, or nil
func (r *Runner) LastReport() *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// WorkerConfig holds configuration for the periodic sync worker
type WorkerConfig struct {
	Enabled     bool
	IntervalSec int
	DryRun      bool
}

// Worker runs sync passes on a fixed interval
type Worker struct {
	runner *Runner
	config WorkerConfig
	logger *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a new sync worker
func NewWorker(runner *Runner, config WorkerConfig, logger *logrus.Entry) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		runner: runner,
		config: config,
		logger: logger.WithField("component", "sync-worker"),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start starts the worker loop in the background
func (w *Worker) Start() {
	if !w.config.Enabled {
		w.logger.Info("[Sync Worker] Disabled, not starting")
		close(w.done)
		return
	}

	w.logger.Infof("[Sync Worker] Starting with interval=%ds, dry_run=%v", w.config.IntervalSec, w.config.DryRun)
	go w.run()
}

// Stop cancels any running pass and waits for the loop to exit
func (w *Worker) Stop() {
	w.logger.Info("[Sync Worker] Stopping...")
	w.cancel()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)

	ticker := time.NewTicker(time.Duration(w.config.IntervalSec) * time.Second)
	defer ticker.Stop()

	// Run immediately on start
	w.tick()

	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-w.ctx.Done():
			w.logger.Info("[Sync Worker] Stopped")
			return
		}
	}
}

func (w *Worker) tick() {
	_, err := w.runner.RunOnce(w.ctx, w.config.DryRun)
	switch {
	case err == nil:
	case errors.Is(err, lock.ErrLocked):
		w.logger.Info("[Sync Worker] Previous pass still running, skipping tick")
	case errors.Is(err, context.Canceled):
	default:
		// the reconciler already logged the failure with its pass id
		w.logger.Debugf("[Sync Worker] Pass failed: %v", err)
	}
}
