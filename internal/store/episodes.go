package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const episodeColumns = `date, title, description, audio_file, duration_seconds, size_bytes,
	failure_count, release_tag, published_at, created_at, updated_at`

// Upsert inserts or replaces the row for ep.Date, preserving the original
// creation time and publish state of an existing row.
func (s *Store) Upsert(ctx context.Context, ep Episode) error {
	if ep.Date == "" {
		return errors.New("episode date required")
	}
	now := time.Now().UTC()
	query := `INSERT INTO episodes (date, title, description, audio_file, duration_seconds, size_bytes,
		failure_count, release_tag, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			audio_file = excluded.audio_file,
			duration_seconds = excluded.duration_seconds,
			size_bytes = excluded.size_bytes,
			failure_count = excluded.failure_count,
			updated_at = excluded.updated_at`
	return s.execWithRetry(ctx, query,
		ep.Date, ep.Title, ep.Description, ep.AudioFile, ep.DurationSeconds, ep.SizeBytes,
		ep.FailureCount, ep.ReleaseTag, formatTime(ep.PublishedAt), now.Format(time.RFC3339), now.Format(time.RFC3339))
}

// MarkPublished records a completed publish for the date.
func (s *Store) MarkPublished(ctx context.Context, date, releaseTag string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.execWithRetry(ctx,
		`UPDATE episodes SET release_tag = ?, published_at = ?, updated_at = ? WHERE date = ?`,
		releaseTag, now, now, date)
}

// Get returns the episode for date, or ErrNotFound.
func (s *Store) Get(ctx context.Context, date string) (Episode, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM episodes WHERE date = ?", episodeColumns), date)
	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Episode{}, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	return ep, err
}

// List returns all episodes ordered newest first.
func (s *Store) List(ctx context.Context) ([]Episode, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM episodes ORDER BY date DESC", episodeColumns))
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// Published returns the published episodes ordered newest first; this is the
// collection the feed is built from.
func (s *Store) Published(ctx context.Context) ([]Episode, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM episodes WHERE published_at IS NOT NULL ORDER BY date DESC", episodeColumns))
	if err != nil {
		return nil, fmt.Errorf("list published episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// Delete removes the episode row for date.
func (s *Store) Delete(ctx context.Context, date string) error {
	return s.execWithRetry(ctx, "DELETE FROM episodes WHERE date = ?", date)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (Episode, error) {
	var (
		ep          Episode
		publishedAt sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&ep.Date, &ep.Title, &ep.Description, &ep.AudioFile, &ep.DurationSeconds,
		&ep.SizeBytes, &ep.FailureCount, &ep.ReleaseTag, &publishedAt, &createdAt, &updatedAt)
	if err != nil {
		return Episode{}, err
	}
	if publishedAt.Valid {
		if parsed, parseErr := time.Parse(time.RFC3339, publishedAt.String); parseErr == nil {
			ep.PublishedAt = &parsed
		}
	}
	if parsed, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		ep.CreatedAt = parsed
	}
	if parsed, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		ep.UpdatedAt = parsed
	}
	return ep, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
