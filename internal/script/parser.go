package script

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"paperweights/internal/textutil"
)

var (
	headingPattern = regexp.MustCompile(`^#{2,3}\s+(.*\S)\s*$`)
	turnPattern    = regexp.MustCompile(`^\*\*([A-Za-z]+)\*\*:\s*(.*)$`)
	// durationHintPattern matches trailing "(N min)" / "(N sec, qualifier)"
	// annotations that script authors attach to headings.
	durationHintPattern = regexp.MustCompile(`\s*\(\d+ (?:min|sec)(?:, [^)]+)?\)\s*$`)
)

// UnknownSpeakerError reports speaker labels outside the configured roster.
// The document is rejected rather than misattributing or silently dropping
// dialogue.
type UnknownSpeakerError struct {
	Labels []string
}

func (e *UnknownSpeakerError) Error() string {
	return fmt.Sprintf("script references unknown speakers: %s", strings.Join(e.Labels, ", "))
}

// Parser turns raw script text into an ordered Document. The roster is the
// fixed set of valid speaker names.
type Parser struct {
	roster map[string]struct{}
}

// NewParser constructs a parser for the given speaker roster.
func NewParser(speakers []string) *Parser {
	roster := make(map[string]struct{}, len(speakers))
	for _, s := range speakers {
		s = strings.TrimSpace(s)
		if s != "" {
			roster[s] = struct{}{}
		}
	}
	return &Parser{roster: roster}
}

// Parse scans content line by line. Three token classes exist, in precedence
// order: heading, turn start, plain text. A heading opens a new section and
// terminates the running turn. A turn-start line terminates the running turn
// and opens a new one. A "---" rule terminates the running turn without
// opening anything. Plain text accumulates into the running turn. Dialogue
// before the first heading has no section to belong to and is dropped;
// whitespace-only utterances are dropped.
func (p *Parser) Parse(date, content string) (Document, error) {
	doc := Document{Date: date}

	var (
		current        *Section
		turnSpeaker    string
		turnLines      []string
		unknown        = map[string]struct{}{}
		globalSegments int
	)

	flushTurn := func() {
		if turnSpeaker == "" {
			return
		}
		text := textutil.FlattenMarkdown(strings.Join(turnLines, "\n"))
		speaker := turnSpeaker
		turnSpeaker = ""
		turnLines = nil
		if text == "" || current == nil {
			return
		}
		current.Segments = append(current.Segments, Segment{
			Index:   globalSegments,
			Speaker: speaker,
			Text:    text,
		})
		globalSegments++
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
			flushTurn()
			title := durationHintPattern.ReplaceAllString(m[1], "")
			doc.Sections = append(doc.Sections, Section{
				Title:   strings.TrimSpace(title),
				Ordinal: len(doc.Sections),
			})
			current = &doc.Sections[len(doc.Sections)-1]
			continue
		}

		if strings.HasPrefix(trimmed, "---") {
			flushTurn()
			continue
		}

		if m := turnPattern.FindStringSubmatch(trimmed); m != nil {
			flushTurn()
			speaker := m[1]
			if _, ok := p.roster[speaker]; !ok {
				unknown[speaker] = struct{}{}
				continue
			}
			turnSpeaker = speaker
			turnLines = []string{m[2]}
			continue
		}

		if turnSpeaker != "" {
			turnLines = append(turnLines, line)
		}
	}
	flushTurn()

	if len(unknown) > 0 {
		labels := make([]string, 0, len(unknown))
		for label := range unknown {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		return Document{}, &UnknownSpeakerError{Labels: labels}
	}

	return doc, nil
}
