package database

import (
	"context"
	"errors"
	"time"

	"skillchain/apperrors"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// MaxRetries bounds how many times a failed store operation is re-run.
var MaxRetries uint64 = 4

// Retry runs op with exponential backoff until it succeeds, fails with a
// non-transient error, or the retry budget or ctx runs out. op must be safe
// to run more than once.
func Retry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, MaxRetries), ctx))
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false
	case apperrors.IsDomain(err):
		return false
	}
	return true
}
