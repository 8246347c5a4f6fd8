package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck returns a liveness check failing when the goroutine
// count exceeds max, a cheap proxy for goroutine leaks.
func GoroutineCountCheck(max int) CheckFunc {
	return func(context.Context) error {
		if count := runtime.NumGoroutine(); count > max {
			return errors.Errorf("too many goroutines: %d > %d", count, max)
		}
		return nil
	}
}
