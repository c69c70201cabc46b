package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebovdev/localfm-cli/internal/playback"
)

const (
	barFilledCell = '='
	barEmptyCell  = '-'
)

// RenderBar renders a fixed-width progress bar like "[=====-----]". The
// filled cell count is floor(ratio*width). An unknown total renders nothing;
// the caller skips the bar line for that tick.
func RenderBar(snap playback.Snapshot, width int) string {
	if snap.Total <= 0 || width <= 0 {
		return ""
	}

	filled := int(snap.Ratio() * float64(width))
	if filled > width {
		filled = width
	}

	var b strings.Builder
	b.Grow(width + 2)
	b.WriteByte('[')
	b.WriteString(strings.Repeat(string(barFilledCell), filled))
	b.WriteString(strings.Repeat(string(barEmptyCell), width-filled))
	b.WriteByte(']')
	return b.String()
}

// FormatClock formats a duration as MM:SS, truncated to whole seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// FormatProgress renders the full progress line: bar plus elapsed/total
// clock. Empty when the total duration is unknown.
func FormatProgress(snap playback.Snapshot, width int) string {
	bar := RenderBar(snap, width)
	if bar == "" {
		return ""
	}
	return fmt.Sprintf("%s %s/%s", bar, FormatClock(snap.Elapsed), FormatClock(snap.Total))
}
