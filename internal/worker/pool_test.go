package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type countingJob struct {
	counter *int32
	err     error
}

type countingResult struct {
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	atomic.AddInt32(j.counter, 1)
	return &countingResult{err: j.err}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var executed int32
	const jobs = 10
	for i := 0; i < jobs; i++ {
		pool.Submit(&countingJob{counter: &executed})
	}

	results := pool.Wait()

	if got := atomic.LoadInt32(&executed); got != jobs {
		t.Errorf("Expected %d executions, got %d", jobs, got)
	}
	if len(results) != jobs {
		t.Errorf("Expected %d results, got %d", jobs, len(results))
	}
}

func TestPool_CollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	pool.Submit(&countingJob{counter: &executed})
	pool.Submit(&countingJob{counter: &executed, err: errors.New("job failed")})

	results := pool.Wait()

	var failures int
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Expected 1 failed result, got %d", failures)
	}
}

func TestNewPool_ClampsWorkers(t *testing.T) {
	pool := NewPool(0)
	if pool.workers != 1 {
		t.Errorf("Expected workers clamped to 1, got %d", pool.workers)
	}
}
