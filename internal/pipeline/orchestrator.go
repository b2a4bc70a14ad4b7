package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/writer"
)

// Orchestrator manages the document chunking pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	store     *writer.Store
	assembler *chunker.Assembler
	stats     *Stats
	log       *slog.Logger
	cfg       config.Config
	opts      WorkerOptions

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, store *writer.Store, assembler *chunker.Assembler, log *slog.Logger) *Orchestrator {
	opts := WorkerOptions{
		StrictLayout:         cfg.StrictLayout,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
		MaxWriteRetries:      cfg.MaxWriteRetries,
	}
	if cfg.EnableDevOutput {
		opts.DevOutputURL = cfg.LogURL
	}
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		store:     store,
		assembler: assembler,
		stats:     NewStats(time.Hour),
		log:       log,
		cfg:       cfg,
		opts:      opts,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := o.NewWorker()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// NewWorker returns a worker sharing the orchestrator's store and stats.
func (o *Orchestrator) NewWorker() *Worker {
	return NewWorker(o.store, o.assembler, o.stats, o.log, o.opts)
}

// Submit queues a new job for processing. A full queue marks the job
// throttled.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	job.SetStatus(StatusQueued, "queued")
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusThrottled, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the processing stats.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// Store returns the chunk store for direct use by API handlers.
func (o *Orchestrator) Store() *writer.Store {
	return o.store
}

// Assembler returns the configured chunk assembler.
func (o *Orchestrator) Assembler() *chunker.Assembler {
	return o.assembler
}
