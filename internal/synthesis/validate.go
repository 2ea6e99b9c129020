package synthesis

import (
	"errors"
	"fmt"
	"os"
)

// Clip sanity bounds. A normal 128kbps MP3 runs around 16KB per second;
// renders far outside that band are garbled or stuck output.
const (
	minClipBytes      = 1000
	minClipSeconds    = 0.5
	minBytesPerSecond = 2000
	maxBytesPerSecond = 100000
	longClipFloorSecs = 30
	maxSecondsPerChar = 0.2
)

// ValidateClip checks a rendered clip against size, duration, and bitrate
// heuristics. textLen is the rune length of the synthesized text. A non-nil
// error carries the rejection reason.
func ValidateClip(path string, textLen int, durationSeconds float64) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.New("file missing")
	}
	size := info.Size()

	if size < minClipBytes {
		return fmt.Errorf("file too small (%d bytes)", size)
	}
	if durationSeconds < minClipSeconds {
		return fmt.Errorf("duration too short (%.1fs)", durationSeconds)
	}
	if durationSeconds > 0 {
		bytesPerSec := float64(size) / durationSeconds
		if bytesPerSec < minBytesPerSecond || bytesPerSec > maxBytesPerSecond {
			return fmt.Errorf("abnormal bitrate (%.0f B/s)", bytesPerSec)
		}
	}
	maxDuration := float64(textLen) * maxSecondsPerChar
	if durationSeconds > maxDuration && durationSeconds > longClipFloorSecs {
		return fmt.Errorf("duration too long (%.1fs for %d chars)", durationSeconds, textLen)
	}
	return nil
}
