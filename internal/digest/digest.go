// Package digest reads the daily arXiv digest document that episode scripts
// are written from. It recovers the ordered paper list (title plus arXiv
// link) so episode descriptions can cite the covered papers, and offers
// fuzzy title matching because script dialogue rarely quotes titles
// verbatim.
package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"paperweights/internal/textutil"
)

// deepDiveCutoff is the highest digest position still treated as a deep-dive
// paper; later entries are quick hits.
const deepDiveCutoff = 7

var (
	headingEntryPattern = regexp.MustCompile(`^#{1,4}\s*(\d+)\.\s*(.+)$`)
	boldEntryPattern    = regexp.MustCompile(`^\*\*(\d+)\.\s*(.+?)\*\*`)
	arxivURLPattern     = regexp.MustCompile(`https?://arxiv\.org/abs/[\w.]+`)
)

// Paper is one digest entry in document order.
type Paper struct {
	Number int
	Title  string
	URL    string
}

// Digest is the parsed paper collection for one date.
type Digest struct {
	Papers []Paper
}

// Load reads and parses the digest for the given date from dir. A missing
// digest is not an error; it yields an empty digest since episodes can ship
// without paper links.
func Load(dir, date string) (Digest, error) {
	if strings.TrimSpace(dir) == "" {
		return Digest{}, nil
	}
	path := filepath.Join(dir, date+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Digest{}, nil
		}
		return Digest{}, fmt.Errorf("read digest: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse extracts numbered paper entries from digest markdown. Two entry
// shapes occur in practice: "#### N. Title" with the arXiv link on one of
// the next few lines, and "**N. Title** — Author | [arXiv](url)" with the
// link inline or on a following line. Duplicate titles are kept once, first
// occurrence wins.
func Parse(content string) Digest {
	lines := strings.Split(content, "\n")
	var digest Digest
	seen := map[string]struct{}{}

	add := func(number int, title, url string) {
		title = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(title), "*"))
		if title == "" {
			return
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		digest.Papers = append(digest.Papers, Paper{Number: number, Title: title, URL: url})
	}

	lookahead := func(from, count int) string {
		for j := from; j < len(lines) && j < from+count; j++ {
			if m := arxivURLPattern.FindString(lines[j]); m != "" {
				return m
			}
		}
		return ""
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		if m := headingEntryPattern.FindStringSubmatch(line); m != nil {
			number, _ := strconv.Atoi(m[1])
			add(number, m[2], lookahead(i+1, 5))
			continue
		}
		if m := boldEntryPattern.FindStringSubmatch(line); m != nil {
			number, _ := strconv.Atoi(m[1])
			url := arxivURLPattern.FindString(line)
			if url == "" {
				url = lookahead(i+1, 3)
			}
			add(number, m[2], url)
		}
	}
	return digest
}

// DeepDives returns the papers at the front of the digest ordering.
func (d Digest) DeepDives() []Paper {
	var out []Paper
	for _, p := range d.Papers {
		if p.Number <= deepDiveCutoff {
			out = append(out, p)
		}
	}
	return out
}

// QuickHits returns the papers past the deep-dive cutoff.
func (d Digest) QuickHits() []Paper {
	var out []Paper
	for _, p := range d.Papers {
		if p.Number > deepDiveCutoff {
			out = append(out, p)
		}
	}
	return out
}

// MatchLink resolves a paper name quoted in a script to a digest entry's
// arXiv URL. Returns the empty string when no entry matches.
func (d Digest) MatchLink(name string) string {
	for _, p := range d.Papers {
		if textutil.TitlesMatch(name, p.Title) {
			return p.URL
		}
	}
	return ""
}
