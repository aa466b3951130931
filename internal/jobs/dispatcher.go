// Package jobs defines background tasks such as pull request metadata checks.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/pr-warden/internal/core"
)

// dispatcher implements core.JobDispatcher and manages a pool of worker goroutines
// for processing GitHub events as metadata check jobs.
type dispatcher struct {
	checkJob   core.Job              // Job implementation executed by each worker.
	jobQueue   chan *core.CheckEvent // Queue of incoming check events.
	maxWorkers int                   // Number of concurrent workers.
	wg         sync.WaitGroup        // Tracks active workers for graceful shutdown.
	logger     *slog.Logger          // Logger instance for the dispatcher.
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(checkJob core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		checkJob:   checkJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.CheckEvent, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes events from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting check worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down check worker", "id", workerID)
}

// processEvent logs and runs a metadata check job for a single event.
func (d *dispatcher) processEvent(workerID int, event *core.CheckEvent) {
	d.logger.Info("worker processing job",
		"worker_id", workerID,
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
	)

	err := d.checkJob.Run(context.Background(), event)
	if err != nil {
		d.logger.Error("metadata check job failed",
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
			"error", err,
		)
	}
}

// Dispatch queues a check event for processing by a worker.
func (d *dispatcher) Dispatch(_ context.Context, event *core.CheckEvent) error {
	d.logger.Info("queuing metadata check job", "repo", event.RepoFullName, "pr", event.PRNumber, "action", event.Action)

	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new check job")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all check jobs have finished")
}
