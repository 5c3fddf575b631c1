package background

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Background supervises fire-and-forget goroutines so that the server can
// drain them on shutdown and a panicking task never kills the process.
type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

func (b *Background) Log() logrus.FieldLogger { return b.log }

func (b *Background) Add(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				b.log.WithField("trace", string(debug.Stack())).Errorf("background task panic: %v", rec)
			}
		}()
		fn()
	}()
}

// Shutdown waits for all running tasks, or gives up when ctx expires.
func (b *Background) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
