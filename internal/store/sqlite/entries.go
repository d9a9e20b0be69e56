package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/store"
)

// entryColumns is the ordered list of columns selected in entry queries.
// Must match the scan order in scanEntry.
const entryColumns = `id, created_at, updated_at, project_id, user_id, type, url, notes,
	timestamp, is_public, category, color, duration_ms, blur_hash`

// scanEntry scans a sql.Row (or sql.Rows via its Scan method) into a domain.Entry.
func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.Entry, error) {
	var e domain.Entry

	var (
		createdAt  string
		updatedAt  string
		entryType  string
		url        sql.NullString
		timestamp  string
		isPublic   int
		category   sql.NullString
		color      sql.NullString
		durationMs sql.NullInt64
		blurHash   sql.NullString
	)

	err := scanner.Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
		&e.ProjectID,
		&e.UserID,
		&entryType,
		&url,
		&e.Notes,
		&timestamp,
		&isPublic,
		&category,
		&color,
		&durationMs,
		&blurHash,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.Timestamp, err = parseTime(timestamp)
	if err != nil {
		return nil, err
	}

	e.Type = domain.EntryType(entryType)
	e.IsPublic = isPublic != 0

	// Optional fields.
	if url.Valid {
		e.URL = url.String
	}
	if category.Valid {
		e.Category = category.String
	}
	if color.Valid {
		e.Color = color.String
	}
	if durationMs.Valid {
		e.DurationMs = durationMs.Int64
	}
	if blurHash.Valid {
		e.BlurHash = blurHash.String
	}

	return &e, nil
}

// CreateEntry inserts a new progress entry into the database.
// Returns store.ErrAlreadyExists if the entry ID already exists.
func (s *Store) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress_entries (
			id, created_at, updated_at, project_id, user_id, type, url, notes,
			timestamp, is_public, category, color, duration_ms, blur_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
		entry.ProjectID,
		entry.UserID,
		string(entry.Type),
		nullString(entry.URL),
		entry.Notes,
		formatTime(entry.Timestamp),
		boolToInt(entry.IsPublic),
		nullString(entry.Category),
		nullString(entry.Color),
		nullInt64(entry.DurationMs),
		nullString(entry.BlurHash),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.searchIndexer.IndexEntry(ctx, entry); err != nil {
		s.logger.Warn("index entry failed", "entry_id", entry.ID, "error", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM progress_entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry performs a full row update on an existing entry.
// project_id and timestamp are deliberately written back too: callers
// carry them over from the stored row, never from client input.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) UpdateEntry(ctx context.Context, entry *domain.Entry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE progress_entries SET
			created_at = ?,
			updated_at = ?,
			project_id = ?,
			user_id = ?,
			type = ?,
			url = ?,
			notes = ?,
			timestamp = ?,
			is_public = ?,
			category = ?,
			color = ?,
			duration_ms = ?,
			blur_hash = ?
		WHERE id = ?`,
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
		entry.ProjectID,
		entry.UserID,
		string(entry.Type),
		nullString(entry.URL),
		entry.Notes,
		formatTime(entry.Timestamp),
		boolToInt(entry.IsPublic),
		nullString(entry.Category),
		nullString(entry.Color),
		nullInt64(entry.DurationMs),
		nullString(entry.BlurHash),
		entry.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.IndexEntry(ctx, entry); err != nil {
		s.logger.Warn("index entry failed", "entry_id", entry.ID, "error", err)
	}
	return nil
}

// DeleteEntry removes an entry by ID.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM progress_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.DeleteEntry(ctx, id); err != nil {
		s.logger.Warn("unindex entry failed", "entry_id", id, "error", err)
	}
	return nil
}

// ListEntriesByProject returns a project's entries, newest timestamp first.
// An empty category returns everything; otherwise only matching entries.
func (s *Store) ListEntriesByProject(ctx context.Context, projectID, category string) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM progress_entries WHERE project_id = ?`
	args := []any{projectID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY timestamp DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListEntriesByUser returns all entries a user created across their
// projects, newest timestamp first.
func (s *Store) ListEntriesByUser(ctx context.Context, userID string) ([]*domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM progress_entries WHERE user_id = ? ORDER BY timestamp DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListPublicEntries returns public entries across all users, newest
// timestamp first. A limit <= 0 returns everything.
func (s *Store) ListPublicEntries(ctx context.Context, limit int) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM progress_entries WHERE is_public = 1 ORDER BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListMediaURLs returns the distinct media URLs referenced by entries.
// Used by the media watcher to report files that went missing on disk.
func (s *Store) ListMediaURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT url FROM progress_entries WHERE url IS NOT NULL AND url != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// CountEntriesByDay aggregates a user's entry counts per calendar day
// from since onward. Days with no entries produce no bucket; the
// domain layer fills gaps when a dense series is needed.
func (s *Store) CountEntriesByDay(ctx context.Context, userID string, since time.Time) ([]domain.DayCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(timestamp) AS day, COUNT(*) AS n
		FROM progress_entries
		WHERE user_id = ? AND timestamp >= ?
		GROUP BY day
		ORDER BY day ASC`,
		userID, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.DayCount
	for rows.Next() {
		var b domain.DayCount
		if err := rows.Scan(&b.Date, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// collectEntries drains rows into a slice of entries.
func collectEntries(rows *sql.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
