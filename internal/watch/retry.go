package watch

import (
	"context"
	"errors"
	"time"
)

// retry calls fn up to attempts times, sleeping base, 2*base, 4*base, ...
// between failures. It returns nil on the first success, the context error
// if ctx ends while waiting, or the last failure.
func retry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error

	for n := range attempts {
		if err = fn(); err == nil {
			return nil
		}

		if n == attempts-1 {
			break
		}

		t := time.NewTimer(base << n)

		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(ctx.Err(), err)
		case <-t.C:
		}
	}

	return err
}
