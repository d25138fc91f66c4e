package ole

import (
	"errors"
	"runtime"
	"sync"
)

var errWorkerStopped = errors.New("automation worker stopped")

// worker runs functions on one locked OS thread.
type worker struct {
	mu      sync.RWMutex
	stopped bool
	calls   chan func()
	done    chan struct{}
}

func newWorker() *worker {
	w := &worker{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	for fn := range w.calls {
		fn()
	}
}

// do runs fn on the worker thread and waits for it.
func (w *worker) do(fn func() error) error {
	w.mu.RLock()
	if w.stopped {
		w.mu.RUnlock()
		return errWorkerStopped
	}
	errc := make(chan error, 1)
	w.calls <- func() { errc <- fn() }
	w.mu.RUnlock()
	return <-errc
}

// stop lets queued calls finish and ends the goroutine.
func (w *worker) stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.calls)
	w.mu.Unlock()
	<-w.done
}
