package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/localfm-cli/internal/config"
	"github.com/glebovdev/localfm-cli/internal/library"
	"github.com/glebovdev/localfm-cli/internal/playback"
	"github.com/glebovdev/localfm-cli/internal/term"
)

func testLoop(t *testing.T) (*ControlLoop, tcell.SimulationScreen, *playback.State, context.Context, context.CancelFunc) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	session, err := term.NewWithScreen(screen)
	if err != nil {
		t.Fatalf("NewWithScreen() error = %v", err)
	}
	t.Cleanup(session.Close)

	cfg := config.DefaultConfig()
	cfg.TickMillis = config.MinTickMillis

	state := playback.NewState()
	track := library.Track{Path: "/m/a.flac", Artist: "A", Title: "First", Album: "Album"}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loop := NewControlLoop(session, state, track, cfg, cancel)
	return loop, screen, state, ctx, cancel
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestControlLoopPauseToggle(t *testing.T) {
	loop, screen, state, ctx, _ := testLoop(t)

	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()

	screen.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)
	waitFor(t, "pause", state.IsPaused)

	screen.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)
	waitFor(t, "resume", func() bool { return !state.IsPaused() })

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not quit on Escape")
	}
}

func TestControlLoopCtrlCToggles(t *testing.T) {
	loop, screen, state, ctx, _ := testLoop(t)

	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()

	// In raw mode Ctrl+C arrives as a key event and acts as pause, not quit
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	waitFor(t, "pause via Ctrl+C", state.IsPaused)

	select {
	case <-finished:
		t.Fatal("Ctrl+C terminated the loop")
	default:
	}

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not quit on q")
	}
}

func TestControlLoopQuitCancelsWorker(t *testing.T) {
	loop, screen, _, ctx, _ := testLoop(t)

	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not quit on Escape")
	}

	// Quitting must propagate cancellation to the stream worker
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("quit did not cancel the worker context")
	}
}

func TestControlLoopStopsOnContextCancel(t *testing.T) {
	loop, _, _, ctx, cancel := testLoop(t)

	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()

	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after context cancellation")
	}
}

func TestControlLoopIgnoresOtherKeys(t *testing.T) {
	loop, screen, state, ctx, _ := testLoop(t)

	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyUp, 0, tcell.ModNone)

	time.Sleep(100 * time.Millisecond)

	if state.IsPaused() {
		t.Error("unrelated key toggled pause")
	}
	select {
	case <-finished:
		t.Fatal("unrelated key terminated the loop")
	default:
	}

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	<-finished
}

func screenText(screen tcell.SimulationScreen) string {
	cells, width, _ := screen.GetContents()
	var b strings.Builder
	for i, cell := range cells {
		if len(cell.Runes) > 0 {
			b.WriteRune(cell.Runes[0])
		}
		if (i+1)%width == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func TestRenderShowsTrackAndProgress(t *testing.T) {
	loop, screen, state, _, _ := testLoop(t)

	state.SetProgress(playback.Snapshot{Elapsed: 30 * time.Second, Total: time.Minute})
	loop.render()

	content := screenText(screen)

	for _, want := range []string{"A - First", "Album", "PLAYING", "00:30/01:00"} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered screen missing %q:\n%s", want, content)
		}
	}
}

func TestRenderSkipsBarForUnknownTotal(t *testing.T) {
	loop, screen, state, _, _ := testLoop(t)

	state.SetProgress(playback.Snapshot{Elapsed: 30 * time.Second})
	loop.render()

	if content := screenText(screen); strings.Contains(content, "[") {
		t.Errorf("rendered a bar despite unknown total:\n%s", content)
	}
}

func TestStatusText(t *testing.T) {
	loop, _, state, _, _ := testLoop(t)

	if got := loop.statusText(); got != "PLAYING" {
		t.Errorf("statusText() = %q, want PLAYING", got)
	}

	state.Toggle()
	if got := loop.statusText(); got != "PAUSED" {
		t.Errorf("statusText() while paused = %q, want PAUSED", got)
	}

	state.MarkFinished()
	if got := loop.statusText(); got != "FINISHED" {
		t.Errorf("statusText() after completion = %q, want FINISHED", got)
	}

	// A worker failure outranks every other status
	state.MarkFailed()
	if got := loop.statusText(); got != "ERROR" {
		t.Errorf("statusText() after worker failure = %q, want ERROR", got)
	}
}
