// Package worker runs periodic maintenance of the board database on a small
// pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

// Job is one maintenance step. Run reports how many rows it touched.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

type Pool struct {
	logger   *zap.Logger
	count    int
	interval time.Duration
	jobs     []Job

	queue    chan Job
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPool(logger *zap.Logger, count int, interval time.Duration, jobs ...Job) *Pool {
	if count < 1 {
		count = 1
	}
	return &Pool{
		logger:   logger,
		count:    count,
		interval: interval,
		jobs:     jobs,
		queue:    make(chan Job, len(jobs)),
		stop:     make(chan struct{}),
	}
}

// Start запускает воркеров и планировщик. Первый прогон - сразу после старта.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool",
		zap.Int("workers", p.count),
		zap.Int("jobs", len(p.jobs)),
		zap.Duration("interval", p.interval),
	)

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.wg.Add(1)
	go p.schedule(ctx)
}

// Stop waits for running jobs to finish. Safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.stop)
		p.wg.Wait()
		p.logger.Info("Worker pool stopped")
	})
}

// RunOnce runs every job in order on the calling goroutine.
func (p *Pool) RunOnce(ctx context.Context) error {
	var errs []error
	for _, job := range p.jobs {
		if err := p.run(ctx, -1, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pool) schedule(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.enqueue()
	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.enqueue()
		}
	}
}

// enqueue не блокируется: если прошлый прогон задачи ещё в очереди, тик пропускается
func (p *Pool) enqueue() {
	for _, job := range p.jobs {
		select {
		case p.queue <- job:
		default:
			p.logger.Warn("job still queued, skipping tick", zap.String("job", job.Name))
		}
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case job := <-p.queue:
			if err := p.run(ctx, id, job); err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Error("worker error", zap.Int("worker", id), zap.Error(err))
			}
		}
	}
}

func (p *Pool) run(ctx context.Context, workerID int, job Job) error {
	start := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}

	p.logger.Debug("Job completed",
		zap.Int("worker", workerID),
		zap.String("job", job.Name),
		zap.Int64("rows", n),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// MaintenanceJobs returns the board housekeeping jobs: expiring idempotency
// keys older than ttl and compacting column and task positions.
func MaintenanceJobs(columns repo.ColumnRepository, tasks repo.TaskRepository, keys repo.IdempotencyRepository, ttl time.Duration) []Job {
	return []Job{
		{
			Name: "purge-idempotency-keys",
			Run: func(ctx context.Context) (int64, error) {
				return keys.PurgeIdempotencyKeys(ctx, time.Now().Add(-ttl))
			},
		},
		{Name: "normalize-column-positions", Run: columns.NormalizePositions},
		{Name: "normalize-task-positions", Run: tasks.NormalizePositions},
	}
}
