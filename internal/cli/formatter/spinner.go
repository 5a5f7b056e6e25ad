package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner redraws one status line, with the time spent waiting, until
// stopped. It is used while a browser sign-in is pending.
type Spinner struct {
	w       io.Writer
	message string
	now     func() time.Time

	stopOnce sync.Once
	quit     chan struct{}
	finished chan struct{}
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		now:      time.Now,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// frame renders the line shown after waited has elapsed.
func (s *Spinner) frame(i int, waited time.Duration) string {
	glyph := spinnerFrames[i%len(spinnerFrames)]
	return fmt.Sprintf("\r  %s %s %s", StylePurple.Render(glyph), Dim(s.message), Dim(Duration(int64(waited/time.Second))))
}

// Start draws in the background until Stop.
func (s *Spinner) Start() {
	started := s.now()
	go func() {
		defer close(s.finished)
		t := time.NewTicker(spinnerInterval)
		defer t.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.quit:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-t.C:
				fmt.Fprint(s.w, s.frame(i, s.now().Sub(started)))
			}
		}
	}()
}

// Stop clears the line and waits for the drawing goroutine. Repeated calls
// are no-ops.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.finished
}

// StartSpinner starts a spinner on w and returns its Stop.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
