package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ExportPolicy is used by record sinks. Probes never retry.
func ExportPolicy(name string, attempts int, log *zap.Logger) Policy {
	if attempts <= 0 {
		attempts = 1
	}
	return Policy{
		Name:     name,
		Attempts: attempts,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 2 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !IsPermanent(err)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("export retry", zap.String("sink", name), zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("export retries exhausted", zap.String("sink", name), zap.Error(err))
			}
		},
	}
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as deterministic so ExportPolicy gives up at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
