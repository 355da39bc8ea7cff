package stt

import (
	"context"
	"sync/atomic"

	"github.com/ilyakh/lectograph/internal/worker"
)

// limiterService is the rate-limiter bucket shared by all STT calls
const limiterService = "stt"

// BatchTranscriber fans transcription calls out over a bounded worker pool.
// Results come back in input order; an individual failure is substituted with
// an empty, zero-confidence result rather than failing the batch.
type BatchTranscriber struct {
	client  Client
	workers int
	limiter *worker.Limiter

	// Progress, when set, is called after each completed slice. It may be
	// invoked from multiple goroutines.
	Progress func(done, total int)
}

// NewBatchTranscriber creates a batch transcriber with the given concurrency
// bound. The limiter may be nil.
func NewBatchTranscriber(client Client, workers int, limiter *worker.Limiter) *BatchTranscriber {
	if workers <= 0 {
		workers = 5
	}
	return &BatchTranscriber{
		client:  client,
		workers: workers,
		limiter: limiter,
	}
}

// TranscribeAll transcribes every path and returns a same-length slice of
// results in the original order.
func (b *BatchTranscriber) TranscribeAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results
	}

	var done int32
	total := len(paths)

	pool := worker.NewPool(b.workers)
	pool.Start()

	for i, path := range paths {
		pool.Submit(&transcribeJob{
			batch: b,
			ctx:   ctx,
			index: i,
			path:  path,
			done:  &done,
			total: total,
		})
	}

	for _, r := range pool.Wait() {
		tr := r.(*transcribeResult)
		if tr.err != nil {
			// Recovered locally: empty text, zero confidence
			results[tr.index] = Result{}
			continue
		}
		results[tr.index] = tr.result
	}
	return results
}

// transcribeJob carries one slice through the worker pool
type transcribeJob struct {
	batch *BatchTranscriber
	ctx   context.Context
	index int
	path  string
	done  *int32
	total int
}

// Execute transcribes one slice, honoring the rate limiter
func (j *transcribeJob) Execute(_ context.Context) worker.Result {
	res := &transcribeResult{index: j.index}

	if j.batch.limiter != nil {
		if err := j.batch.limiter.Wait(j.ctx, limiterService); err != nil {
			res.err = err
			return res
		}
	}

	res.result, res.err = j.batch.client.Transcribe(j.ctx, j.path)

	if j.batch.Progress != nil {
		j.batch.Progress(int(atomic.AddInt32(j.done, 1)), j.total)
	}
	return res
}

// transcribeResult is the indexed result of one transcription job
type transcribeResult struct {
	index  int
	result Result
	err    error
}

func (r *transcribeResult) GetError() error { return r.err }
func (r *transcribeResult) GetIndex() int   { return r.index }
