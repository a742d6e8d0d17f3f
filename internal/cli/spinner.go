package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/augmedical/pkg/observability"
)

// Spinner shows a sample counter on stderr while a run is in progress.
// It stops when its context is cancelled.
type Spinner struct {
	message string
	total   atomic.Int64
	count   atomic.Int64

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	frames  []string

	mu    sync.Mutex
	w     io.Writer
	width int // length of the last rendered line, for clearing
}

// newSpinner creates a spinner that counts finished samples.
func newSpinner(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		w:       os.Stderr,
	}
}

// SetTotal sets the number of samples the run will produce.
func (s *Spinner) SetTotal(n int) {
	s.total.Store(int64(n))
}

// Advance records one finished sample.
func (s *Spinner) Advance() {
	s.count.Add(1)
}

// Count returns the number of finished samples.
func (s *Spinner) Count() int {
	return int(s.count.Load())
}

// line renders the status text without the frame.
func (s *Spinner) line() string {
	total := s.total.Load()
	if total == 0 {
		return s.message
	}
	return fmt.Sprintf("%s %d/%d", s.message, s.Count(), total)
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				text := s.line()
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
				s.width = len(text) + 4
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Stop stops the spinner and clears the line. Calling Stop more than once
// is safe.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		<-s.stopped
		s.cancel()
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's parent context has ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// spinnerHooks advances a spinner as the runner finishes samples.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

func (h spinnerHooks) OnRunStart(_ context.Context, _ string, samples int) {
	h.spinner.SetTotal(samples)
}

func (h spinnerHooks) OnSampleComplete(context.Context, string, bool, time.Duration, error) {
	h.spinner.Advance()
}
