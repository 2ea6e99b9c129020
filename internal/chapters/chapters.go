// Package chapters embeds ID3v2 chapter frames (CHAP plus a CTOC table of
// contents) into a finished episode so podcast players can jump between
// sections.
package chapters

import (
	"fmt"
	"io"

	id3v2 "github.com/bogem/id3v2/v2"

	"paperweights/internal/timeline"
)

// Write replaces any existing chapter frames in the MP3 at path with one
// CHAP frame per timeline mark and a top-level ordered CTOC referencing
// them.
func Write(path string, tl timeline.Timeline) error {
	if len(tl.Marks) == 0 {
		return fmt.Errorf("no chapter marks to write")
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.DeleteFrames("CHAP")
	tag.DeleteFrames("CTOC")

	ids := make([]string, 0, len(tl.Marks))
	for i, mark := range tl.Marks {
		id := fmt.Sprintf("chp%d", i)
		ids = append(ids, id)
		tag.AddChapterFrame(id3v2.ChapterFrame{
			ElementID:   id,
			StartTime:   mark.Start,
			EndTime:     mark.End,
			StartOffset: id3v2.IgnoredOffset,
			EndOffset:   id3v2.IgnoredOffset,
			Title: &id3v2.TextFrame{
				Encoding: id3v2.EncodingUTF8,
				Text:     mark.Title,
			},
		})
	}
	tag.AddFrame("CTOC", tocFrame{elementID: "toc", childIDs: ids})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tag: %w", err)
	}
	return nil
}

// tocFrame serializes a CTOC frame body. The tagging library ships CHAP
// support but no CTOC type, so the body is written by hand: element ID,
// flags, entry count, then the child element IDs, all IDs null-terminated.
type tocFrame struct {
	elementID string
	childIDs  []string
}

const (
	ctocFlagTopLevel = 0x02
	ctocFlagOrdered  = 0x01
)

func (f tocFrame) Size() int {
	size := len(f.elementID) + 1 + 1 + 1
	for _, id := range f.childIDs {
		size += len(id) + 1
	}
	return size
}

func (f tocFrame) UniqueIdentifier() string {
	return f.elementID
}

func (f tocFrame) WriteTo(w io.Writer) (int64, error) {
	body := make([]byte, 0, f.Size())
	body = append(body, f.elementID...)
	body = append(body, 0)
	body = append(body, ctocFlagTopLevel|ctocFlagOrdered)
	body = append(body, byte(len(f.childIDs)))
	for _, id := range f.childIDs {
		body = append(body, id...)
		body = append(body, 0)
	}
	n, err := w.Write(body)
	return int64(n), err
}
