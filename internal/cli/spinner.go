package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// spinnerFrames are drawn in turn while an operation runs.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner draws a progress indicator on the status output until it is
// stopped or its context ends.
type Spinner struct {
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				s.mu.Lock()
				fmt.Fprintf(statusOut, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It may be called more than
// once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(statusOut, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Cancelled reports whether the spinner's context has ended, either by Stop
// or by the parent context.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
