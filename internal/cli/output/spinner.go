package output

import (
	"fmt"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress for a long-running step. On a terminal it
// animates in place; when piped it degrades to a single message line.
type Spinner struct {
	r   *Renderer
	msg string

	mu     sync.Mutex
	active bool
	done   chan struct{}
}

// NewSpinner creates a spinner with the given in-progress message.
// Call Start to begin and Success or Fail to finish.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return &Spinner{r: r, msg: msg}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	if !s.r.isTTY {
		fmt.Fprintln(s.r.out, s.msg)
		return
	}

	s.done = make(chan struct{})
	go s.spin(s.done)
}

func (s *Spinner) spin(done chan struct{}) {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-done:
			// Clear the spinner line before the final message.
			fmt.Fprintf(s.r.out, "\r%*s\r", len(s.msg)+2, "")
			return
		case <-ticker.C:
			fmt.Fprintf(s.r.out, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], s.msg)
			frame++
		}
	}
}

func (s *Spinner) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	if s.done != nil {
		close(s.done)
		// Give the goroutine a tick to clear the line.
		time.Sleep(10 * time.Millisecond)
		s.done = nil
	}
}

// Success stops the spinner with a confirmation line.
func (s *Spinner) Success(msg string) {
	s.stop()
	s.r.Success(msg)
}

// Fail stops the spinner with an error line.
func (s *Spinner) Fail(msg string) {
	s.stop()
	s.r.Println(s.r.styles.Error.Render("✗ " + msg))
}
