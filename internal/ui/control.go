// Package ui renders the playback screen and runs the foreground control
// loop that translates key events into pause/resume and quit commands.
package ui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/localfm-cli/internal/config"
	"github.com/glebovdev/localfm-cli/internal/library"
	"github.com/glebovdev/localfm-cli/internal/playback"
	"github.com/glebovdev/localfm-cli/internal/term"
	"github.com/rs/zerolog/log"
)

// ControlLoop polls the terminal for key events on a fixed tick, toggles the
// shared playback state, and renders the progress view. It has two states:
// running, and terminating once the quit key is seen. The end of the track
// does not terminate the loop; the user quits explicitly.
type ControlLoop struct {
	session  *term.Session
	state    *playback.State
	track    library.Track
	cancel   context.CancelFunc
	cfg      *config.Config
	quitting bool
}

func NewControlLoop(session *term.Session, state *playback.State, track library.Track, cfg *config.Config, cancel context.CancelFunc) *ControlLoop {
	return &ControlLoop{
		session: session,
		state:   state,
		track:   track,
		cancel:  cancel,
		cfg:     cfg,
	}
}

// Run drives the loop until the quit key is pressed or ctx is cancelled.
// On exit it cancels the stream worker's context; terminal restoration is
// the caller's deferred Session.Close.
func (c *ControlLoop) Run(ctx context.Context) {
	defer c.cancel()

	for !c.quitting {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Control loop stopped by context")
			return
		default:
		}

		if ev, ok := c.session.PollKey(c.cfg.TickInterval()); ok {
			c.handleKey(ev)
		}
		if c.quitting {
			log.Debug().Msg("Control loop quitting")
			return
		}

		c.render()
	}
}

func (c *ControlLoop) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		c.quitting = true
	case tcell.KeyCtrlC:
		// Raw mode turns Ctrl+C into a key event; same semantics as the
		// pause key
		c.state.Toggle()
	case tcell.KeyRune:
		switch ev.Rune() {
		case c.cfg.PauseRune():
			c.state.Toggle()
		case c.cfg.QuitRune():
			c.quitting = true
		}
	}
}

func (c *ControlLoop) statusText() string {
	switch {
	case c.state.Failed():
		return "ERROR"
	case c.state.Finished():
		return "FINISHED"
	case c.state.IsPaused():
		return "PAUSED"
	default:
		return "PLAYING"
	}
}

func (c *ControlLoop) render() {
	screen := c.session.Screen()
	width, height := screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	screen.Clear()

	header := config.AppName + " · " + config.AppTagline
	drawText(screen, 1, 0, width, header, tcell.StyleDefault.Dim(true))

	title := "♪ " + c.track.DisplayName()
	drawText(screen, 1, 2, width, title, tcell.StyleDefault.Bold(true))

	if c.track.Album != "" {
		drawText(screen, 1, 3, width, c.track.Album, tcell.StyleDefault.Dim(true))
	}

	// Unknown total duration skips the bar line for this tick
	if line := FormatProgress(c.state.Progress(), c.cfg.BarWidth); line != "" {
		drawText(screen, 1, 5, width, line, tcell.StyleDefault)
	}

	drawText(screen, 1, 7, width, c.statusText(), tcell.StyleDefault.Bold(true))

	help := string(c.cfg.PauseRune()) + " pause/resume · " + string(c.cfg.QuitRune()) + "/esc quit"
	drawText(screen, 1, height-1, width, help, tcell.StyleDefault.Dim(true))

	screen.Show()
}

func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}
