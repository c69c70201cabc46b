package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebovdev/localfm-cli/internal/library"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog/log"
)

const (
	// SpeakerBufferSize is the output device buffer length.
	SpeakerBufferSize = time.Millisecond * 250
	// DefaultTickInterval is how often the worker reconciles the pause
	// intent and publishes progress.
	DefaultTickInterval = time.Millisecond * 100
)

// ErrUnsupportedFormat is returned when a track's extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Worker streams one decoded track to the speaker while reconciling playback
// with the shared pause intent every tick.
type Worker struct {
	tick time.Duration
}

func NewWorker(tick time.Duration) *Worker {
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &Worker{tick: tick}
}

func decodeTrack(track library.Track, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch track.Ext() {
	case ".flac":
		return flac.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, track.Ext())
	}
}

// Run decodes track and streams it until it ends or ctx is cancelled.
// Open, decode and device failures are fatal to this playback context: they
// flip the state's failed latch so the status line reports the error at once,
// and surface as the returned error. Cancellation is a clean nil return.
//
// Progress is published into state from the decoder's sample position, so
// the control loop renders the actual audio position and stops advancing
// while paused. The end of the track is signalled by a callback appended
// after the streamer, not by comparing elapsed time against the total, so
// tracks with unknown duration still terminate.
func (w *Worker) Run(ctx context.Context, track library.Track, state *State) (err error) {
	defer func() {
		if err != nil {
			state.MarkFailed()
		}
	}()

	f, err := os.Open(track.Path)
	if err != nil {
		return fmt.Errorf("failed to open track: %w", err)
	}

	streamer, format, err := decodeTrack(track, f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode track: %w", err)
	}
	// Closing the streamer closes the file as well

	var total time.Duration
	if n := streamer.Len(); n > 0 {
		total = format.SampleRate.D(n)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(SpeakerBufferSize)); err != nil {
		streamer.Close()
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}

	log.Debug().
		Str("path", track.Path).
		Int("sample_rate", int(format.SampleRate)).
		Dur("total", total).
		Msg("Starting playback")

	ctrl := &beep.Ctrl{Streamer: streamer}
	done := make(chan struct{})
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		close(done)
	})))

	state.SetProgress(Snapshot{Total: total})

	stop := func() {
		// Clear before locking; speaker.Clear takes the lock itself
		speaker.Clear()
		speaker.Lock()
		streamer.Close()
		speaker.Unlock()
	}

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			state.SetProgress(Snapshot{Elapsed: total, Total: total})
			state.MarkFinished()
			stop()
			log.Debug().Str("path", track.Path).Msg("Track finished")
			return nil
		case <-ctx.Done():
			stop()
			log.Debug().Str("path", track.Path).Msg("Playback cancelled")
			return nil
		case <-ticker.C:
			speaker.Lock()
			ctrl.Paused = state.IsPaused()
			pos := streamer.Position()
			speaker.Unlock()

			state.SetProgress(Snapshot{
				Elapsed: format.SampleRate.D(pos),
				Total:   total,
			})
		}
	}
}
