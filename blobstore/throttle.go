package blobstore

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig holds limits for a ThrottledStore.
type ThrottleConfig struct {
	// BytesPerSec is the maximum combined read/write throughput.
	// If 0, unlimited.
	BytesPerSec int64

	// MaxConcurrent is the maximum number of in-flight store operations.
	// If 0, defaults to 1.
	MaxConcurrent int64
}

// ThrottledStore wraps a Store with throughput and concurrency limits so
// background snapshot traffic does not starve foreground work.
type ThrottledStore struct {
	inner   Store
	sem     *semaphore.Weighted
	limiter *rate.Limiter // nil if unlimited
}

// NewThrottledStore wraps inner with the given limits.
func NewThrottledStore(inner Store, cfg ThrottleConfig) *ThrottledStore {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	s := &ThrottledStore{
		inner: inner,
		sem:   semaphore.NewWeighted(cfg.MaxConcurrent),
	}
	if cfg.BytesPerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), int(cfg.BytesPerSec))
	}

	return s
}

// waitIO blocks until the limiter admits n bytes, splitting requests larger
// than the burst into chunks.
func (s *ThrottledStore) waitIO(ctx context.Context, n int) error {
	if s.limiter == nil || n <= 0 {
		return nil
	}

	burst := s.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Put writes a blob, charged against the throughput limit.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	if err := s.waitIO(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// Get reads a blob, charged against the throughput limit.
func (s *ThrottledStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.waitIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes a blob.
func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	return s.inner.Delete(ctx, name)
}

// List returns all blob names matching the prefix.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	return s.inner.List(ctx, prefix)
}
