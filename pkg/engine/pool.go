package engine

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	errPoolClosed = errors.New("analysis pool closed")
	errPoolBusy   = errors.New("analysis pool busy")
)

// analysisTask is one queued pipeline run.
type analysisTask struct {
	run      func() (any, error)
	resultCh chan taskResult
	ctx      context.Context
}

type taskResult struct {
	value any
	err   error
}

// AnalysisPool bounds pipeline concurrency with a fixed set of workers. The
// queue is small; a full queue rejects immediately so callers see back
// pressure instead of unbounded latency.
type AnalysisPool struct {
	taskQueue chan *analysisTask
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *zap.Logger
}

// NewAnalysisPool starts size workers.
func NewAnalysisPool(size int, logger *zap.Logger) *AnalysisPool {
	if size <= 0 {
		size = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &AnalysisPool{
		taskQueue: make(chan *analysisTask, size*2),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
	for i := 0; i < size; i++ {
		pool.wg.Add(1)
		go pool.workerLoop(i)
	}
	logger.Info("analysis pool started", zap.Int("workers", size))
	return pool
}

func (p *AnalysisPool) workerLoop(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.taskQueue:
			result := p.runTask(id, task)
			select {
			case <-task.ctx.Done():
			case task.resultCh <- result:
			}
		}
	}
}

func (p *AnalysisPool) runTask(workerID int, task *analysisTask) (result taskResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("analysis worker panic",
				zap.Int("worker_id", workerID),
				zap.Any("panic", r))
			result = taskResult{err: errors.New("analysis panicked")}
		}
	}()
	value, err := task.run()
	return taskResult{value: value, err: err}
}

// Submit queues a run and waits for its result or context expiry.
func (p *AnalysisPool) Submit(ctx context.Context, run func() (any, error)) (any, error) {
	task := &analysisTask{
		run:      run,
		resultCh: make(chan taskResult, 1),
		ctx:      ctx,
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, errPoolClosed
	case p.taskQueue <- task:
	default:
		return nil, errPoolBusy
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, errPoolClosed
	case result := <-task.resultCh:
		return result.value, result.err
	}
}

// Close stops the workers and waits for in-flight tasks.
func (p *AnalysisPool) Close() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("analysis pool stopped")
}
