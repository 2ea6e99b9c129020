// Package timeline derives per-section chapter timestamps from measured clip
// durations. The running clock mirrors the concatenated track exactly: the
// configured silence gap follows every clip except the final one, so the
// accumulated total equals the real track length.
package timeline

import (
	"errors"
	"fmt"
	"time"

	"paperweights/internal/script"
	"paperweights/internal/synthesis"
)

// Mark is one chapter entry.
type Mark struct {
	SectionIndex int
	Title        string
	Start        time.Duration
	End          time.Duration
}

// Timeline is the computed chapter structure for one episode.
type Timeline struct {
	Marks []Mark
	Total time.Duration
}

// Compute walks the ordered clips against the parsed section structure and
// returns one mark per section, in document order. Sections whose every
// chunk failed synthesis collapse to zero width but keep their position on
// the clock.
func Compute(doc script.Document, clips []synthesis.Clip, gap time.Duration) (Timeline, error) {
	if len(clips) == 0 {
		return Timeline{}, errors.New("no clips to place on timeline")
	}
	if gap < 0 {
		return Timeline{}, errors.New("silence gap must not be negative")
	}
	for i := 1; i < len(clips); i++ {
		if clips[i].ChunkIndex <= clips[i-1].ChunkIndex {
			return Timeline{}, fmt.Errorf("clips out of order at position %d", i)
		}
	}

	var tl Timeline
	clock := time.Duration(0)
	pos := 0
	for sectionIdx, section := range doc.Sections {
		mark := Mark{SectionIndex: sectionIdx, Title: section.Title, Start: clock}
		for pos < len(clips) && clips[pos].SectionIndex == sectionIdx {
			clock += secondsToDuration(clips[pos].DurationSeconds)
			if pos < len(clips)-1 {
				clock += gap
			}
			pos++
		}
		mark.End = clock
		tl.Marks = append(tl.Marks, mark)
	}
	if pos != len(clips) {
		return Timeline{}, fmt.Errorf("%d clips reference sections beyond the document", len(clips)-pos)
	}
	tl.Total = clock
	return tl, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// FormatTimestamp renders a clock position as MM:SS, rolling over to
// H:MM:SS past the hour.
func FormatTimestamp(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
