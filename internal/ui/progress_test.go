package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/glebovdev/localfm-cli/internal/playback"
)

func countFilled(bar string) int {
	return strings.Count(bar, string(barFilledCell))
}

func TestRenderBarFill(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		total   time.Duration
		width   int
		filled  int
	}{
		{"start", 0, 100 * time.Second, 50, 0},
		{"half", 50 * time.Second, 100 * time.Second, 50, 25},
		{"complete", 100 * time.Second, 100 * time.Second, 50, 50},
		{"floor rounding", 33 * time.Second, 100 * time.Second, 50, 16}, // 0.33*50 = 16.5
		{"one third of ten", 1 * time.Second, 3 * time.Second, 10, 3},
		{"past the end clamps", 2 * time.Minute, time.Minute, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := playback.Snapshot{Elapsed: tt.elapsed, Total: tt.total}
			bar := RenderBar(snap, tt.width)

			if len([]rune(bar)) != tt.width+2 {
				t.Fatalf("bar length = %d, want %d", len([]rune(bar)), tt.width+2)
			}

			if got := countFilled(bar); got != tt.filled {
				t.Errorf("filled cells = %d, want %d (bar: %s)", got, tt.filled, bar)
			}
		})
	}
}

func TestRenderBarMonotonic(t *testing.T) {
	const width = 50
	total := 137 * time.Second

	prev := -1
	for e := time.Duration(0); e <= total; e += time.Second {
		bar := RenderBar(playback.Snapshot{Elapsed: e, Total: total}, width)
		filled := countFilled(bar)

		if filled < prev {
			t.Fatalf("filled cells decreased from %d to %d at elapsed %v", prev, filled, e)
		}
		prev = filled
	}

	if prev != width {
		t.Errorf("final filled cells = %d, want %d", prev, width)
	}
}

func TestRenderBarUnknownTotal(t *testing.T) {
	snap := playback.Snapshot{Elapsed: 10 * time.Second}
	if got := RenderBar(snap, 50); got != "" {
		t.Errorf("RenderBar() with zero total = %q, want empty", got)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{time.Minute, "01:00"},
		{4*time.Minute + 56*time.Second, "04:56"},
		{90 * time.Minute, "90:00"},
		{-time.Second, "00:00"},
		{time.Second + 700*time.Millisecond, "00:01"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatClock(tt.d); got != tt.expected {
				t.Errorf("FormatClock(%v) = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}

func TestFormatProgress(t *testing.T) {
	snap := playback.Snapshot{Elapsed: 30 * time.Second, Total: 2 * time.Minute}
	line := FormatProgress(snap, 10)

	if !strings.HasSuffix(line, " 00:30/02:00") {
		t.Errorf("FormatProgress() = %q, want clock suffix 00:30/02:00", line)
	}

	if !strings.HasPrefix(line, "[") {
		t.Errorf("FormatProgress() = %q, want leading bar", line)
	}
}

func TestFormatProgressUnknownTotal(t *testing.T) {
	if got := FormatProgress(playback.Snapshot{Elapsed: time.Second}, 50); got != "" {
		t.Errorf("FormatProgress() with zero total = %q, want empty", got)
	}
}
