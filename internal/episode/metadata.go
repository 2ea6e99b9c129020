package episode

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"paperweights/internal/digest"
	"paperweights/internal/script"
	"paperweights/internal/textutil"
	"paperweights/internal/timeline"
)

// Metadata is the publishable description of one episode.
type Metadata struct {
	Date            string
	Title           string
	Description     string
	DurationSeconds float64
	SizeBytes       int64
	AudioFile       string
}

// GenericTitle is used when no lead topic can be identified.
const GenericTitle = "AI Research Briefing"

const maxTitleChars = 80

var (
	topicHeaderPattern = regexp.MustCompile(`(?i)^(?:deep dive|paper|segment:\s*paper)\s*\d+\s*(?:\([^)]*\))?\s*[:—–-]\s*(.+)$`)
	quickHitsPattern   = regexp.MustCompile(`(?i)^quick hits?\b`)
)

var titleCaser = cases.Title(language.AmericanEnglish)

// Input bundles everything metadata derivation reads.
type Input struct {
	Date            string
	Document        script.Document
	Digest          digest.Digest
	Timeline        timeline.Timeline
	DurationSeconds float64
	SizeBytes       int64
	AudioFile       string
	MaxListedPapers int
}

// Build derives the episode metadata. The title is the lead deep-dive topic
// (falling back to the digest, then to a generic label) and the description
// is a summary paragraph followed by the covered-paper lists with arXiv
// links and inline chapter timestamps.
func Build(in Input) Metadata {
	lead, deepDives, quickHits := topics(in.Document, in.Digest)

	return Metadata{
		Date:            in.Date,
		Title:           buildTitle(lead),
		Description:     buildDescription(lead, deepDives, quickHits, in),
		DurationSeconds: in.DurationSeconds,
		SizeBytes:       in.SizeBytes,
		AudioFile:       in.AudioFile,
	}
}

// topics extracts the covered paper names, preferring explicit per-paper
// section headers and falling back to the digest partition when the script
// uses freeform sections.
func topics(doc script.Document, dg digest.Digest) (lead string, deepDives, quickHits []string) {
	for _, section := range doc.Sections {
		if m := topicHeaderPattern.FindStringSubmatch(section.Title); m != nil {
			deepDives = append(deepDives, displayTitle(m[1]))
		}
	}
	if len(deepDives) == 0 {
		for _, p := range dg.DeepDives() {
			deepDives = append(deepDives, p.Title)
		}
	}
	for _, p := range dg.QuickHits() {
		quickHits = append(quickHits, p.Title)
	}
	if len(deepDives) > 0 {
		lead = deepDives[0]
	}
	return lead, deepDives, quickHits
}

func buildTitle(lead string) string {
	lead = strings.TrimRight(strings.TrimSpace(lead), ".")
	if lead == "" {
		return GenericTitle
	}
	return textutil.Ellipsize(lead, maxTitleChars)
}

func buildDescription(lead string, deepDives, quickHits []string, in Input) string {
	var parts []string
	parts = append(parts, summaryParagraph(lead, deepDives, quickHits))
	parts = append(parts, "")

	limit := in.MaxListedPapers
	if limit <= 0 {
		limit = len(deepDives) + len(quickHits)
	}

	formatPaper := func(name, timestamp string) string {
		prefix := ""
		if timestamp != "" {
			prefix = fmt.Sprintf("[%s] ", timestamp)
		}
		if url := in.Digest.MatchLink(name); url != "" {
			return fmt.Sprintf("• %s%s — %s", prefix, name, url)
		}
		return fmt.Sprintf("• %s%s (link unavailable)", prefix, name)
	}

	listed := 0
	if len(deepDives) > 0 {
		if len(quickHits) > 0 {
			parts = append(parts, "Deep Dives:")
		} else {
			parts = append(parts, "Papers discussed:")
		}
		for _, name := range deepDives {
			if listed >= limit {
				break
			}
			parts = append(parts, formatPaper(name, topicTimestamp(in.Timeline, name)))
			listed++
		}
		if len(quickHits) > 0 && listed < limit {
			parts = append(parts, "", "Quick Hits:")
			for i, name := range quickHits {
				if listed >= limit {
					break
				}
				ts := ""
				if i == 0 {
					ts = quickHitsTimestamp(in.Timeline)
				}
				parts = append(parts, formatPaper(name, ts))
				listed++
			}
		}
	}
	return strings.Join(parts, "\n")
}

func summaryParagraph(lead string, deepDives, quickHits []string) string {
	total := len(deepDives) + len(quickHits)
	if len(deepDives) == 0 {
		return "Alex and Maya break down the AI papers that actually matter — one explains the science, one asks where the money is. No filler."
	}
	if len(deepDives) == 1 {
		return fmt.Sprintf("Today we're breaking down %s. Alex explains the science, Maya asks where the money is. %d papers that could change how you build.", lead, total)
	}

	others := deepDives[1:]
	if len(others) > 2 {
		others = others[:2]
	}
	summary := fmt.Sprintf("Today's episode dives deep into %s, along with %s", lead, strings.Join(others, ", "))
	if len(quickHits) > 0 {
		summary += fmt.Sprintf(". Plus %d quick hits covering the rest of what dropped on arXiv.", len(quickHits))
	} else {
		summary += "."
	}
	summary += fmt.Sprintf(" Alex breaks down the technical details while Maya asks the hard questions about what actually matters for building products and making money. %d papers, zero filler.", total)
	return summary
}

// topicTimestamp finds the chapter whose title names the paper.
func topicTimestamp(tl timeline.Timeline, name string) string {
	for _, mark := range tl.Marks {
		if textutil.TitlesMatch(mark.Title, name) {
			return timeline.FormatTimestamp(mark.Start)
		}
	}
	return ""
}

// quickHitsTimestamp finds the chapter that opens the quick-hits run.
func quickHitsTimestamp(tl timeline.Timeline) string {
	for _, mark := range tl.Marks {
		if quickHitsPattern.MatchString(strings.TrimSpace(mark.Title)) {
			return timeline.FormatTimestamp(mark.Start)
		}
	}
	return ""
}

// displayTitle tames shouted all-caps headers into title case; mixed-case
// titles pass through untouched.
func displayTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" || !isShouted(title) {
		return title
	}
	return titleCaser.String(strings.ToLower(title))
}

func isShouted(s string) bool {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters > 0 && upper == letters
}
