package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidSelection is returned when the entered index is not a number or
// is out of range for the track listing.
var ErrInvalidSelection = errors.New("invalid selection")

// WriteListing prints the numbered track listing.
func WriteListing(w io.Writer, tracks []Track) {
	fmt.Fprintln(w, "Found the following music files:")
	for i, track := range tracks {
		if size := track.HumanSize(); size != "" {
			fmt.Fprintf(w, "%3d: %s (%s)\n", i, track.DisplayName(), size)
		} else {
			fmt.Fprintf(w, "%3d: %s\n", i, track.DisplayName())
		}
	}
}

// PromptSelect writes the listing and prompt to w, reads one line from r and
// returns the selected index. The caller starts no playback when
// ErrInvalidSelection is returned.
func PromptSelect(r io.Reader, w io.Writer, tracks []Track) (int, error) {
	WriteListing(w, tracks)
	fmt.Fprintln(w, "Enter the number of the file you want to play:")

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}

	index, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, strings.TrimSpace(line))
	}
	if index < 0 || index >= len(tracks) {
		return 0, fmt.Errorf("%w: %d is out of range [0, %d]", ErrInvalidSelection, index, len(tracks)-1)
	}

	return index, nil
}
