package worker

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

// mockJob doubles its value, failing when asked to
type mockJob struct {
	index int
	value int
	fail  bool
	delay time.Duration
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &mockResult{index: j.index, err: ctx.Err()}
		}
	}
	if j.fail {
		return &mockResult{index: j.index, err: errors.New("job failed")}
	}
	return &mockResult{index: j.index, value: j.value * 2}
}

type mockResult struct {
	index int
	value int
	err   error
}

func (r *mockResult) GetError() error { return r.err }
func (r *mockResult) GetIndex() int   { return r.index }

func TestPoolExecutesAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	const n = 20
	for i := 0; i < n; i++ {
		pool.Submit(&mockJob{index: i, value: i})
	}

	results := pool.Wait()
	if len(results) != n {
		t.Fatalf("Wait() returned %d results, want %d", len(results), n)
	}

	// Completion order is unspecified; reassemble by index
	sort.Slice(results, func(i, j int) bool {
		return results[i].GetIndex() < results[j].GetIndex()
	})
	for i, res := range results {
		mr := res.(*mockResult)
		if mr.index != i {
			t.Errorf("missing result for index %d", i)
		}
		if mr.value != i*2 {
			t.Errorf("result[%d].value = %d, want %d", i, mr.value, i*2)
		}
	}
}

func TestPoolJobCountExceedsBuffering(t *testing.T) {
	// Far more jobs than the pool's channel buffers can hold: submission
	// must not wedge against unread results.
	pool := NewPool(2)
	pool.Start()

	const n = 40
	for i := 0; i < n; i++ {
		pool.Submit(&mockJob{index: i, value: i})
	}

	results := pool.Wait()
	if len(results) != n {
		t.Fatalf("Wait() returned %d results, want %d", len(results), n)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].GetIndex() < results[j].GetIndex()
	})
	for i, res := range results {
		if res.(*mockResult).value != i*2 {
			t.Errorf("result[%d].value = %d, want %d", i, res.(*mockResult).value, i*2)
		}
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&mockJob{index: 0, value: 1})
	pool.Submit(&mockJob{index: 1, fail: true})
	pool.Submit(&mockJob{index: 2, value: 3})

	failed := 0
	for _, res := range pool.Wait() {
		if res.GetError() != nil {
			failed++
			if res.GetIndex() != 1 {
				t.Errorf("failed job index = %d, want 1", res.GetIndex())
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed jobs = %d, want 1", failed)
	}
}

func TestPoolZeroWorkers(t *testing.T) {
	// A non-positive worker count still gets one worker
	pool := NewPool(0)
	pool.Start()

	pool.Submit(&mockJob{index: 0, value: 5})
	results := pool.Wait()

	if len(results) != 1 {
		t.Fatalf("Wait() returned %d results, want 1", len(results))
	}
	if results[0].(*mockResult).value != 10 {
		t.Errorf("value = %d, want 10", results[0].(*mockResult).value)
	}
}

func TestPoolNoJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	if results := pool.Wait(); len(results) != 0 {
		t.Errorf("Wait() with no jobs = %v, want empty", results)
	}
}

func TestPoolShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var started int32
	for i := 0; i < 10; i++ {
		idx := i
		pool.Submit(&countingJob{index: idx, started: &started})
	}

	pool.Shutdown()

	// Shutdown must return with workers stopped; not all jobs need to run
	if n := atomic.LoadInt32(&started); n > 10 {
		t.Errorf("started = %d jobs, more than submitted", n)
	}
}

type countingJob struct {
	index   int
	started *int32
}

func (j *countingJob) Execute(ctx context.Context) Result {
	atomic.AddInt32(j.started, 1)
	time.Sleep(5 * time.Millisecond)
	return &mockResult{index: j.index}
}
