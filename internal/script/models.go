package script

// Document is a fully parsed dialogue script for one episode date.
type Document struct {
	Date     string
	Sections []Section
}

// Section is one chapter-sized block of the script, in document order.
type Section struct {
	// Title is the heading text with any trailing duration hint stripped.
	Title   string
	Ordinal int
	// Segments holds this section's dialogue turns in document order.
	Segments []Segment
}

// Segment is one attributed speaker utterance.
type Segment struct {
	// Index is the global, zero-based position of the segment across the
	// whole document.
	Index   int
	Speaker string
	Text    string
}

// Chunk is a length-bounded subdivision of a segment's text.
type Chunk struct {
	// Index is the global, zero-based position of the chunk across the
	// whole document, assigned after chunking.
	Index        int
	SectionIndex int
	SegmentIndex int
	Speaker      string
	Text         string
	// Continuation marks a chunk produced by hard-splitting a sentence that
	// exceeded the chunk limit; it continues the previous chunk mid-sentence
	// and must be rejoined without a separating space.
	Continuation bool
}

// Segments returns every segment of the document in global order.
func (d Document) Segments() []Segment {
	var out []Segment
	for _, section := range d.Sections {
		out = append(out, section.Segments...)
	}
	return out
}

// SegmentCount returns the total number of segments in the document.
func (d Document) SegmentCount() int {
	count := 0
	for _, section := range d.Sections {
		count += len(section.Segments)
	}
	return count
}
