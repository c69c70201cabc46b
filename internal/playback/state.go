// Package playback owns the shared playback state and the audio stream
// worker that decodes a track and feeds the speaker.
package playback

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is the progress published by the stream worker each tick, derived
// from the decoder's actual sample position rather than wall-clock time.
type Snapshot struct {
	Elapsed time.Duration
	Total   time.Duration
}

// Ratio returns playback progress in [0, 1]. Unknown total yields 0.
func (s Snapshot) Ratio() float64 {
	if s.Total <= 0 {
		return 0
	}
	ratio := float64(s.Elapsed) / float64(s.Total)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// State is the playback state shared between the control loop, the signal
// handler goroutine and the stream worker. The pause intent is a single
// atomic flag; readers always observe the pre- or post-toggle value, never a
// torn one, and the last toggle wins.
type State struct {
	paused   atomic.Bool
	finished atomic.Bool
	failed   atomic.Bool

	mu   sync.RWMutex
	snap Snapshot
}

func NewState() *State {
	return &State{}
}

// Toggle flips paused<->playing and returns the new value. Safe to call from
// any goroutine, including the signal handler; the body is a single CAS loop
// with no allocation or blocking.
func (s *State) Toggle() bool {
	for {
		old := s.paused.Load()
		if s.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *State) IsPaused() bool {
	return s.paused.Load()
}

// SetProgress publishes a new snapshot. Called only by the stream worker.
func (s *State) SetProgress(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Progress returns the most recently published snapshot.
func (s *State) Progress() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// MarkFinished records that the track played to its end. The control loop
// keeps running after this; the user still quits explicitly.
func (s *State) MarkFinished() {
	s.finished.Store(true)
}

func (s *State) Finished() bool {
	return s.finished.Load()
}

// MarkFailed records that the stream worker gave up on the track. The status
// line reports the failure while the full error waits for the UI to exit.
func (s *State) MarkFailed() {
	s.failed.Store(true)
}

func (s *State) Failed() bool {
	return s.failed.Load()
}
