package chapters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	id3v2 "github.com/bogem/id3v2/v2"

	"paperweights/internal/timeline"
)

func testTimeline() timeline.Timeline {
	return timeline.Timeline{
		Marks: []timeline.Mark{
			{SectionIndex: 0, Title: "Cold Open", Start: 0, End: 45 * time.Second},
			{SectionIndex: 1, Title: "Deep Dives", Start: 45 * time.Second, End: 10 * time.Minute},
		},
		Total: 10 * time.Minute,
	}
}

func writeBlankMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.mp3")
	// A tagless file is enough; the tag is prepended on save.
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 256), 0o644); err != nil {
		t.Fatalf("write mp3: %v", err)
	}
	return path
}

func TestWriteAddsChapterFrames(t *testing.T) {
	path := writeBlankMP3(t)
	if err := Write(path, testTimeline()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen tag: %v", err)
	}
	defer tag.Close()

	frames := tag.GetFrames("CHAP")
	if len(frames) != 2 {
		t.Fatalf("expected 2 CHAP frames, got %d", len(frames))
	}
	first, ok := frames[0].(id3v2.ChapterFrame)
	if !ok {
		t.Fatalf("expected ChapterFrame, got %T", frames[0])
	}
	if first.Title == nil || first.Title.Text != "Cold Open" {
		t.Fatalf("unexpected first chapter title: %+v", first.Title)
	}
	if first.StartTime != 0 || first.EndTime != 45*time.Second {
		t.Fatalf("unexpected first chapter bounds: %s..%s", first.StartTime, first.EndTime)
	}
}

func TestWriteReplacesExistingChapters(t *testing.T) {
	path := writeBlankMP3(t)
	if err := Write(path, testTimeline()); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := Write(path, testTimeline()); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen tag: %v", err)
	}
	defer tag.Close()

	if got := len(tag.GetFrames("CHAP")); got != 2 {
		t.Fatalf("expected chapters to be replaced not accumulated, got %d CHAP frames", got)
	}
}

func TestWriteRejectsEmptyTimeline(t *testing.T) {
	if err := Write(writeBlankMP3(t), timeline.Timeline{}); err == nil {
		t.Fatal("expected error for empty timeline")
	}
}

func TestTocFrameSerialization(t *testing.T) {
	frame := tocFrame{elementID: "toc", childIDs: []string{"chp0", "chp1"}}

	var buf bytes.Buffer
	n, err := frame.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo returned error: %v", err)
	}
	if int(n) != frame.Size() {
		t.Fatalf("wrote %d bytes, Size() reports %d", n, frame.Size())
	}

	want := append([]byte("toc\x00"), ctocFlagTopLevel|ctocFlagOrdered, 2)
	want = append(want, []byte("chp0\x00chp1\x00")...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("unexpected CTOC body:\n%v\nwant:\n%v", buf.Bytes(), want)
	}
}
