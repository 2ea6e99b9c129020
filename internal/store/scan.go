package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"paperweights/internal/media/mp3info"
)

var episodeFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-podcast(-v2)?\.mp3$`)

// ScanResult reports what a directory scan found.
type ScanResult struct {
	Added   []string
	Skipped []string
}

// DescribeFunc derives display metadata for an artifact discovered on disk.
// Scan calls it once per newly registered date so the ledger row carries a
// usable title and description instead of empty strings.
type DescribeFunc func(date, audioPath string) (title, description string)

// BestAudioFile picks the artifact for a date inside dir, preferring a
// revised "-v2" render over the original.
func BestAudioFile(dir, date string) (string, bool) {
	for _, name := range []string{date + "-podcast-v2.mp3", date + "-podcast.mp3"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// BestScriptFile picks the script for a date inside dir with the same
// "-v2" preference.
func BestScriptFile(dir, date string) (string, bool) {
	for _, name := range []string{date + "-script-v2.md", date + "-script.md"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Scan walks the episodes directory and registers any episode artifacts the
// ledger does not know yet. Already-known dates are left untouched so
// publish state survives rescans. Each new row gets its duration probed from
// the artifact's frames and its title and description filled by describe
// (when non-nil); an unreadable artifact degrades to duration 0.
func (s *Store) Scan(ctx context.Context, episodesDir string, describe DescribeFunc) (ScanResult, error) {
	entries, err := os.ReadDir(episodesDir)
	if err != nil {
		return ScanResult{}, fmt.Errorf("read episodes directory: %w", err)
	}

	dates := map[string]struct{}{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if m := episodeFilePattern.FindStringSubmatch(entry.Name()); m != nil {
			dates[m[1]] = struct{}{}
		}
	}

	ordered := make([]string, 0, len(dates))
	for date := range dates {
		ordered = append(ordered, date)
	}
	sort.Strings(ordered)

	var result ScanResult
	for _, date := range ordered {
		if _, err := s.Get(ctx, date); err == nil {
			result.Skipped = append(result.Skipped, date)
			continue
		}
		path, ok := BestAudioFile(episodesDir, date)
		if !ok {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return result, fmt.Errorf("stat %s: %w", path, err)
		}
		ep := Episode{
			Date:      date,
			AudioFile: filepath.Base(path),
			SizeBytes: info.Size(),
		}
		if duration, err := mp3info.Duration(path); err == nil {
			ep.DurationSeconds = duration
		}
		if describe != nil {
			ep.Title, ep.Description = describe(date, path)
		}
		if err := s.Upsert(ctx, ep); err != nil {
			return result, fmt.Errorf("register %s: %w", date, err)
		}
		result.Added = append(result.Added, date)
	}
	return result, nil
}
