package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line on w while a registry call runs. Calls
// slower than a second also show the elapsed time.
type Spinner struct {
	ctx     context.Context
	w       io.Writer
	message string
	started atomic.Bool
	quit    chan struct{}
	done    chan struct{}
	stop    sync.Once
	width   int
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{
		ctx:     ctx,
		w:       w,
		message: message,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins the animation in its own goroutine. It stops on Stop or when
// the context passed to newSpinner is cancelled.
func (s *Spinner) Start() {
	if s.started.CompareAndSwap(false, true) {
		go s.run(time.Now())
	}
}

func (s *Spinner) run(start time.Time) {
	defer close(s.done)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
		case <-s.ctx.Done():
		case <-tick.C:
			line := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]) + " " + StyleDim.Render(s.message)
			if elapsed := time.Since(start); elapsed >= time.Second {
				line += StyleDim.Render(fmt.Sprintf(" (%ds)", int(elapsed.Seconds())))
			}
			s.width = max(s.width, len(line))
			fmt.Fprint(s.w, "\r"+line)
			continue
		}
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		return
	}
}

// Stop ends the animation, clears the line and waits for the goroutine to
// exit. Extra calls are no-ops.
func (s *Spinner) Stop() {
	s.stop.Do(func() { close(s.quit) })
	if s.started.Load() {
		<-s.done
	}
}

// spin runs fn behind a spinner and reports a failure on w.
func spin(ctx context.Context, w io.Writer, message string, fn func() error) error {
	s := newSpinner(ctx, w, message)
	s.Start()
	err := fn()
	s.Stop()
	if err != nil && ctx.Err() == nil {
		printError(w, "%s", message)
	}
	return err
}
