// Package worker provides a bounded goroutine pool.
//
// Naked goroutines are not used elsewhere in the module: fan-out work
// (such as generating demo history for every machine) goes through a Pool
// so concurrency stays bounded and panics are recovered and logged.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"cableops.io/dashboard/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Job is a task that reports failure.
type Job func(ctx context.Context) error

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool *ants.Pool
	name string
}

// PoolConfig contains worker pool configuration.
type PoolConfig struct {
	Name string
	Size int
}

// DefaultPoolConfig returns default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Name: "general", Size: 16}
}

// NewPool creates a pool with panic recovery.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Size <= 0 {
		cfg.Size = DefaultPoolConfig().Size
	}
	if cfg.Name == "" {
		cfg.Name = "general"
	}

	panicHandler := func(p interface{}) {
		logger.Error("Worker panic recovered",
			zap.String("pool", cfg.Name),
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	ap, err := ants.NewPool(cfg.Size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", cfg.Name, err)
	}
	return &Pool{pool: ap, name: cfg.Name}, nil
}

// Submit submits a context-aware task. If ctx is already cancelled it
// returns ctx.Err() without submitting; a task still queued when ctx is
// cancelled is skipped.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := p.pool.Submit(func() {
		select {
		case <-ctx.Done():
			logger.Debug("Task skipped: context cancelled",
				zap.String("pool", p.name),
				zap.Error(ctx.Err()),
			)
			return
		default:
		}
		task(ctx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// RunAll runs every job on the pool and waits for all of them. The
// returned error joins every job failure; a job that panics counts as
// failed.
func (p *Pool) RunAll(ctx context.Context, jobs ...Job) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for i, job := range jobs {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					record(fmt.Errorf("job %d panicked: %v", i, r))
				}
			}()
			if err := ctx.Err(); err != nil {
				record(fmt.Errorf("job %d: %w", i, err))
				return
			}
			if err := job(ctx); err != nil {
				record(fmt.Errorf("job %d: %w", i, err))
			}
		})
		if err != nil {
			wg.Done()
			record(fmt.Errorf("submit job %d: %w", i, err))
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Shutdown releases the pool, waiting up to timeout for running tasks.
func (p *Pool) Shutdown(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		logger.Warn("Worker pool shutdown timeout",
			zap.String("pool", p.name),
			zap.Error(err),
		)
	}
}

// Metrics returns pool occupancy for logging.
func (p *Pool) Metrics() map[string]int {
	return map[string]int{
		"running": p.pool.Running(),
		"free":    p.pool.Free(),
		"cap":     p.pool.Cap(),
	}
}
