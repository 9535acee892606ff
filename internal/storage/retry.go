package storage

import (
	"context"
	"io"

	"github.com/cenkalti/backoff/v4"

	"github.com/stashdrive/service/internal/errs"
)

// retryStorage retries idempotent calls with exponential backoff.
// Rename is passed through untouched: a copy that succeeded before a failed
// remove cannot be replayed safely.
type retryStorage struct {
	Storage
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// WithRetry wraps s so that List, Delete and rewindable Uploads are retried up
// to maxRetries times. maxRetries == 0 returns s unchanged.
func WithRetry(s Storage, maxRetries uint64) Storage {
	if maxRetries == 0 {
		return s
	}
	return &retryStorage{
		Storage:    s,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

func (r *retryStorage) do(ctx context.Context, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

func (r *retryStorage) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := r.do(ctx, func() error {
		objs, err := r.Storage.List(ctx, prefix)
		if err != nil {
			return err
		}
		out = objs
		return nil
	})
	return out, err
}

func (r *retryStorage) Delete(ctx context.Context, key string) error {
	return r.do(ctx, func() error {
		return r.Storage.Delete(ctx, key)
	})
}

// Upload is retried only when reader can be rewound to where it started.
func (r *retryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	seeker, ok := reader.(io.Seeker)
	if !ok {
		return r.Storage.Upload(ctx, key, reader, size, contentType)
	}
	start, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return r.Storage.Upload(ctx, key, reader, size, contentType)
	}

	first := true
	return r.do(ctx, func() error {
		if !first {
			if _, err := seeker.Seek(start, io.SeekStart); err != nil {
				return backoff.Permanent(errs.Wrap(errs.ErrKindOperationFailed, "rewind upload body", err))
			}
		}
		first = false
		return r.Storage.Upload(ctx, key, reader, size, contentType)
	})
}

func retryable(err error) bool {
	switch errs.KindOf(err) {
	case errs.ErrKindNotFound, errs.ErrKindInvalidInput, errs.ErrKindPermissionDenied:
		return false
	}
	return true
}
