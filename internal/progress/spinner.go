// Package progress shows activity on the terminal while the directory API
// is being queried.
package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/sofiamatics/hospdir/internal/constants"
)

// Spinner is an indeterminate progress indicator. A disabled spinner ignores
// Start and Stop, which keeps piped output free of control sequences.
type Spinner struct {
	out     io.Writer
	enabled bool

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, enabled bool) *Spinner {
	return &Spinner{out: out, enabled: enabled}
}

// NewStderrSpinner creates a spinner on stderr, enabled only when stderr is a terminal.
func NewStderrSpinner() *Spinner {
	return NewSpinner(os.Stderr, StderrIsTerminal())
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Start shows the spinner with the given description. Starting a running
// spinner only updates its description.
func (s *Spinner) Start(description string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		s.bar.Describe(description)
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(constants.SpinnerRefreshInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.spin(s.bar, s.stop, s.done)
}

func (s *Spinner) spin(bar *progressbar.ProgressBar, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(constants.SpinnerRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

// Stop hides the spinner. Stopping an idle spinner is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar == nil {
		return
	}
	close(s.stop)
	<-s.done
	_ = s.bar.Finish()
	s.bar = nil
}

// Active reports whether the spinner is showing.
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bar != nil
}

// Follow starts the spinner while loading is true and stops it otherwise.
// It suits state subscriptions that deliver a loading flag.
func (s *Spinner) Follow(loading bool, description string) {
	if loading {
		s.Start(description)
		return
	}
	s.Stop()
}
