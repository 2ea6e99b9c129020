package script

import "strings"

// DefaultMaxChunkChars is the synthesis unit limit applied when no explicit
// limit is configured.
const DefaultMaxChunkChars = 2500

// ChunkDocument subdivides every segment of the document and assigns global
// chunk indexes. Chunk order reproduces document order exactly.
func ChunkDocument(doc Document, limit int) []Chunk {
	var chunks []Chunk
	for sectionIdx, section := range doc.Sections {
		for _, segment := range section.Segments {
			for _, chunk := range SplitSegment(segment, limit) {
				chunk.Index = len(chunks)
				chunk.SectionIndex = sectionIdx
				chunks = append(chunks, chunk)
			}
		}
	}
	return chunks
}

// SplitSegment subdivides one segment into chunks of at most limit runes.
// Splits land on sentence boundaries when possible. A single sentence longer
// than the limit is hard-split at the limit; the follow-on pieces carry the
// Continuation flag so the original text remains reconstructable. No text is
// ever discarded.
func SplitSegment(segment Segment, limit int) []Chunk {
	if limit <= 0 {
		limit = DefaultMaxChunkChars
	}

	text := strings.TrimSpace(segment.Text)
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= limit {
		return []Chunk{{SegmentIndex: segment.Index, Speaker: segment.Speaker, Text: text}}
	}

	var (
		chunks  []Chunk
		current strings.Builder
		curLen  int
	)
	emit := func(text string, continuation bool) {
		chunks = append(chunks, Chunk{
			SegmentIndex: segment.Index,
			Speaker:      segment.Speaker,
			Text:         text,
			Continuation: continuation,
		})
	}
	flush := func() {
		if curLen == 0 {
			return
		}
		emit(current.String(), false)
		current.Reset()
		curLen = 0
	}

	for _, sentence := range splitSentences(text) {
		runes := []rune(sentence)
		if len(runes) > limit {
			// No usable boundary inside this sentence: emit what we have,
			// then hard-split the sentence itself.
			flush()
			for start := 0; start < len(runes); start += limit {
				end := start + limit
				if end > len(runes) {
					end = len(runes)
				}
				emit(string(runes[start:end]), start > 0)
			}
			continue
		}

		// +1 accounts for the joining space.
		if curLen > 0 && curLen+1+len(runes) > limit {
			flush()
		}
		if curLen > 0 {
			current.WriteByte(' ')
			curLen++
		}
		current.WriteString(sentence)
		curLen += len(runes)
	}
	flush()
	return chunks
}

// Reconstruct joins chunk texts back into the segment text they were split
// from. Continuation chunks rejoin without a separating space.
func Reconstruct(chunks []Chunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 && !chunk.Continuation {
			b.WriteByte(' ')
		}
		b.WriteString(chunk.Text)
	}
	return b.String()
}

// splitSentences breaks text on sentence-terminal punctuation followed by
// whitespace. The terminal punctuation stays with its sentence.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Consume a run of terminal punctuation.
		end := i
		for end+1 < len(runes) && (runes[end+1] == '.' || runes[end+1] == '!' || runes[end+1] == '?') {
			end++
		}
		if end+1 >= len(runes) {
			break
		}
		if runes[end+1] == ' ' || runes[end+1] == '\t' || runes[end+1] == '\n' {
			sentence := strings.TrimSpace(string(runes[start : end+1]))
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			i = end + 1
			start = i + 1
		} else {
			i = end
		}
	}
	if start < len(runes) {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}
