package loader

import (
	"log/slog"
	"time"
)

// BatchLoaderOption is a functional option for configuring a BatchLoader.
type BatchLoaderOption func(*batchLoaderImpl)

// WithBatchSize sets how many loads run concurrently in each batch.
//
// Parameters:
//   - n: loads per batch, at least 1
//
// Returns:
//   - BatchLoaderOption: functional option to set the batch size
func WithBatchSize(n int) BatchLoaderOption {
	return func(b *batchLoaderImpl) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithLoadTimeout bounds each individual load. A load that runs past the timeout resolves with
// context.DeadlineExceeded. Zero disables the timeout.
//
// Parameters:
//   - d: the per-load timeout
//
// Returns:
//   - BatchLoaderOption: functional option to set the timeout
func WithLoadTimeout(d time.Duration) BatchLoaderOption {
	return func(b *batchLoaderImpl) {
		b.timeout = d
	}
}

// WithBatchHook registers a callback invoked before each batch starts.
//
// Parameters:
//   - fn: receives the zero-based batch number and the number of jobs in it
//
// Returns:
//   - BatchLoaderOption: functional option to set the hook
func WithBatchHook(fn func(batch, size int)) BatchLoaderOption {
	return func(b *batchLoaderImpl) {
		b.onBatch = fn
	}
}

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchLoaderOption {
	return func(b *batchLoaderImpl) {
		if logger != nil {
			b.logger = logger
		}
	}
}
