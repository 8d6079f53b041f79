package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalHandler turns SIGINT/SIGTERM into context cancellation. The
// first signal cancels the context so extraction can stop between
// shards; a second signal force-quits.
type SignalHandler struct {
	ctx    context.Context
	cancel context.CancelFunc
	sigCh  chan os.Signal
	stopCh chan struct{}
	once   sync.Once
}

// NewSignalHandler installs the handler and starts watching.
func NewSignalHandler() *SignalHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &SignalHandler{
		ctx:    ctx,
		cancel: cancel,
		sigCh:  make(chan os.Signal, 1),
		stopCh: make(chan struct{}),
	}
	signal.Notify(h.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go h.watch()
	return h
}

// Context returns the context cancelled by the first signal.
func (h *SignalHandler) Context() context.Context {
	return h.ctx
}

func (h *SignalHandler) watch() {
	interrupted := false
	for {
		select {
		case <-h.sigCh:
			if interrupted {
				fmt.Fprintln(os.Stderr, "\nForce quit")
				os.Exit(130)
			}
			interrupted = true
			fmt.Fprintln(os.Stderr, "\nInterrupted, finishing current shard")
			h.cancel()
		case <-h.stopCh:
			return
		}
	}
}

// Stop releases the signal registration and cancels the context.
func (h *SignalHandler) Stop() {
	h.once.Do(func() {
		signal.Stop(h.sigCh)
		close(h.stopCh)
		h.cancel()
	})
}
