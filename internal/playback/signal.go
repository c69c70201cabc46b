package playback

import (
	"context"
	"os"
	"syscall"

	"github.com/rs/zerolog/log"
)

// Bridge applies out-of-band signals to the shared playback state: an
// interrupt toggles pause exactly like the pause key, SIGTERM requests a
// clean quit. The handler body is a single atomic toggle; no allocation or
// blocking. Returns after SIGTERM or once sigs is closed.
func Bridge(sigs <-chan os.Signal, state *State, quit context.CancelFunc) {
	for sig := range sigs {
		if sig == syscall.SIGTERM {
			log.Info().Msg("Received SIGTERM, shutting down")
			quit()
			return
		}
		state.Toggle()
	}
}
