// Package mp3info computes MP3 durations natively by walking frame headers,
// so chapter timelines and feed metadata do not depend on an external probe
// being installed.
package mp3info

import (
	"errors"
	"io"
	"os"

	"github.com/tcolgate/mp3"
)

// Duration returns the playback length of the MP3 at path in seconds,
// summed across all audio frames. ID3 tags and other non-frame bytes are
// skipped by the decoder.
func Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return DurationFrom(f)
}

// DurationFrom walks MP3 frames from r and sums their durations.
func DurationFrom(r io.Reader) (float64, error) {
	decoder := mp3.NewDecoder(r)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
