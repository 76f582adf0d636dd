// Package processing owns the engine's run loop and the OS thread it runs on.
package processing

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/engine"
)

// quitRetryInterval is how often Stop re-issues Quit while waiting for the
// loop to exit. A Quit that lands before the loop is running is lost, so it
// has to be repeated.
const quitRetryInterval = 10 * time.Millisecond

// Runtime is the subset of engine.Runtime the thread needs
type Runtime interface {
	Init() error
	NewRunLoop() engine.RunLoop
}

// Thread runs an engine run loop on a dedicated, locked OS thread.
//
// The loop is independent from any pipeline: it is started once at
// construction and stopped once at teardown.
type Thread struct {
	loop    engine.RunLoop
	started chan struct{} // closed right before loop.Run
	done    chan struct{} // closed when the loop goroutine exits

	stopOnce sync.Once
}

// New initializes the engine runtime and starts the run loop.
//
// Returns an error carrying the engine's diagnostic if initialization fails;
// no thread is started in that case.
func New(rt Runtime) (*Thread, error) {
	if err := rt.Init(); err != nil {
		return nil, fmt.Errorf("processing: engine initialization failed: %w", err)
	}

	loop := rt.NewRunLoop()
	if loop == nil {
		return nil, fmt.Errorf("processing: engine returned no run loop")
	}

	t := &Thread{
		loop:    loop,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}

	go t.run()

	slog.Debug("processing: run loop thread started")
	return t, nil
}

func (t *Thread) run() {
	defer close(t.done)

	// The engine expects its loop to stay on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	close(t.started)
	t.loop.Run()
}

// Stop quits the run loop and waits for its thread to exit.
//
// Stop waits for the start acknowledgement first, then keeps issuing Quit
// until the loop returns. This covers the window between the
// acknowledgement and the loop actually running.
//
// Idempotent.
func (t *Thread) Stop() {
	t.stopOnce.Do(func() {
		<-t.started

		ticker := time.NewTicker(quitRetryInterval)
		defer ticker.Stop()

		for {
			t.loop.Quit()
			select {
			case <-t.done:
				slog.Debug("processing: run loop thread joined")
				return
			case <-ticker.C:
			}
		}
	})
}

// Running reports whether the run loop is currently running.
func (t *Thread) Running() bool {
	select {
	case <-t.done:
		return false
	default:
		return t.loop.IsRunning()
	}
}

// Done is closed once the loop thread has exited.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}
