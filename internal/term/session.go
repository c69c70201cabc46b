// Package term provides a scoped terminal session: raw input mode, the
// alternate screen and a hidden cursor on entry, with teardown guaranteed to
// run exactly once on every exit path.
package term

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
)

// Session owns the terminal for the lifetime of the control loop.
type Session struct {
	screen    tcell.Screen
	events    chan tcell.Event
	quit      chan struct{}
	closeOnce sync.Once
}

// New acquires the terminal: alternate screen, raw input, hidden cursor.
func New() (*Session, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return start(screen)
}

// NewWithScreen runs a session on a caller-provided screen. Used by tests
// with tcell's simulation screen.
func NewWithScreen(screen tcell.Screen) (*Session, error) {
	return start(screen)
}

func start(screen tcell.Screen) (*Session, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.HideCursor()
	screen.Clear()

	s := &Session{
		screen: screen,
		events: make(chan tcell.Event, 16),
		quit:   make(chan struct{}),
	}
	go screen.ChannelEvents(s.events, s.quit)

	log.Debug().Msg("Terminal session started")
	return s, nil
}

// Screen exposes the underlying screen for drawing.
func (s *Session) Screen() tcell.Screen {
	return s.screen
}

// PollKey waits up to timeout for a key event. Resize events are absorbed
// and trigger a screen resync; the deadline still applies.
func (s *Session) PollKey(timeout time.Duration) (*tcell.EventKey, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return nil, false
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				return ev, true
			case *tcell.EventResize:
				s.screen.Sync()
			}
		case <-deadline.C:
			return nil, false
		}
	}
}

// Close restores the terminal. Safe to call multiple times and from deferred
// paths; teardown runs exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.screen.Fini()
		log.Debug().Msg("Terminal session closed")
	})
}
