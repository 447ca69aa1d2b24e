package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gallery/common"
)

// Job is one texture to load. Index identifies the plane the texture belongs to.
type Job struct {
	Index int
	File  string
}

// Result is the outcome of a Job. Err is non-nil when the texture could not be loaded;
// Texture is only valid when Err is nil.
type Result struct {
	Job
	Texture common.TextureStagingData
	Err     error
}

// BatchLoader loads textures in sequential batches. Loads within a batch run concurrently on a
// worker pool, and the next batch starts only after every load of the current one resolved.
type BatchLoader interface {
	// Run loads every job and calls onResult once per job. onResult is called from worker
	// goroutines and must be safe for concurrent use. Run returns after the last batch has
	// completed, or early with the context error if ctx is cancelled between batches.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - jobs: the textures to load, in order
	//   - onResult: callback receiving each result
	//
	// Returns:
	//   - error: ctx.Err() when cancelled, nil otherwise
	Run(ctx context.Context, jobs []Job, onResult func(Result)) error

	// BatchSize returns the number of loads per batch.
	//
	// Returns:
	//   - int: the batch size
	BatchSize() int
}

type batchLoaderImpl struct {
	loader    Loader
	pool      worker.DynamicWorkerPool
	batchSize int
	timeout   time.Duration
	onBatch   func(batch, size int)
	logger    *slog.Logger
}

var _ BatchLoader = &batchLoaderImpl{}

// NewBatchLoader creates a BatchLoader with the defaults of 20 loads per batch and a 30 second
// timeout for each load.
//
// Parameters:
//   - l: the loader that fetches and decodes each texture
//   - options: functional options to configure the batch loader
//
// Returns:
//   - BatchLoader: the configured batch loader
func NewBatchLoader(l Loader, options ...BatchLoaderOption) BatchLoader {
	b := &batchLoaderImpl{
		loader:    l,
		batchSize: 20,
		timeout:   30 * time.Second,
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(b)
	}

	// One worker per concurrent load; idle workers exit between batches.
	b.pool = worker.NewDynamicWorkerPool(b.batchSize, b.batchSize*2, 1*time.Second)
	return b
}

func (b *batchLoaderImpl) BatchSize() int {
	return b.batchSize
}

func (b *batchLoaderImpl) Run(ctx context.Context, jobs []Job, onResult func(Result)) error {
	for start, batch := 0, 0; start < len(jobs); start, batch = start+b.batchSize, batch+1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+b.batchSize, len(jobs))
		if b.onBatch != nil {
			b.onBatch(batch, end-start)
		}

		// A WaitGroup gives a per-batch barrier; the pool itself only drains when workers idle out.
		var wg sync.WaitGroup
		for _, job := range jobs[start:end] {
			wg.Add(1)
			j := job
			b.pool.SubmitTask(worker.Task{
				ID: j.Index,
				Do: func() (any, error) {
					defer wg.Done()
					res := b.load(ctx, j)
					if onResult != nil {
						onResult(res)
					}
					return nil, nil
				},
			})
		}
		wg.Wait()
		b.logger.Debug("texture batch complete", "batch", batch, "size", end-start)
	}
	return nil
}

// load runs a single job under the per-load timeout. Panics while decoding resolve the job
// with an error so the batch barrier is always released.
func (b *batchLoaderImpl) load(ctx context.Context, j Job) (res Result) {
	res.Job = j
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic loading %q: %v", j.File, r)
		}
	}()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	type outcome struct {
		tex common.TextureStagingData
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic loading %q: %v", j.File, r)}
			}
		}()
		tex, err := b.loader.LoadTexture(ctx, j.File)
		done <- outcome{tex: tex, err: err}
	}()

	select {
	case o := <-done:
		res.Texture, res.Err = o.tex, o.err
	case <-ctx.Done():
		res.Err = fmt.Errorf("loading %q: %w", j.File, ctx.Err())
	}
	return res
}
