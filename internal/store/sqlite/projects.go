package sqlite

import (
	"context"
	"database/sql"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/store"
)

// projectColumns is the ordered list of columns selected in project queries.
// Must match the scan order in scanProject.
const projectColumns = `id, created_at, updated_at, user_id, name, description, share_id`

// scanProject scans a sql.Row (or sql.Rows via its Scan method) into a domain.Project.
func scanProject(scanner interface{ Scan(dest ...any) error }) (*domain.Project, error) {
	var p domain.Project

	var (
		createdAt string
		updatedAt string
		shareID   sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
		&p.UserID,
		&p.Name,
		&p.Description,
		&shareID,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if shareID.Valid {
		p.ShareID = shareID.String
	}

	return &p, nil
}

// CreateProject inserts a new project into the database.
// Returns store.ErrAlreadyExists if the ID or share token already exists.
func (s *Store) CreateProject(ctx context.Context, project *domain.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (
			id, created_at, updated_at, user_id, name, description, share_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
		project.UserID,
		project.Name,
		project.Description,
		nullString(project.ShareID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.searchIndexer.IndexProject(ctx, project); err != nil {
		s.logger.Warn("index project failed", "project_id", project.ID, "error", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
// Returns store.ErrNotFound if the project does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProjectByShareID retrieves a project by its share token.
// Returns store.ErrNotFound for unknown tokens; callers must treat the
// result as read-only access, not ownership.
func (s *Store) GetProjectByShareID(ctx context.Context, shareID string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE share_id = ?`, shareID)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject performs a full row update on an existing project.
// Returns store.ErrNotFound if the project does not exist.
func (s *Store) UpdateProject(ctx context.Context, project *domain.Project) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET
			created_at = ?,
			updated_at = ?,
			user_id = ?,
			name = ?,
			description = ?,
			share_id = ?
		WHERE id = ?`,
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
		project.UserID,
		project.Name,
		project.Description,
		nullString(project.ShareID),
		project.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.IndexProject(ctx, project); err != nil {
		s.logger.Warn("index project failed", "project_id", project.ID, "error", err)
	}
	return nil
}

// DeleteProject removes a project and, via foreign keys, all of its entries.
// Returns store.ErrNotFound if the project does not exist.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	// Collect entry IDs first so the search index can be pruned after
	// the cascade removes the rows.
	entryIDs, err := s.entryIDsByProject(ctx, id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
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

	if err := s.searchIndexer.DeleteProject(ctx, id); err != nil {
		s.logger.Warn("unindex project failed", "project_id", id, "error", err)
	}
	for _, entryID := range entryIDs {
		if err := s.searchIndexer.DeleteEntry(ctx, entryID); err != nil {
			s.logger.Warn("unindex entry failed", "entry_id", entryID, "error", err)
		}
	}
	return nil
}

// ListProjectsByUser returns all of a user's projects, newest first.
func (s *Store) ListProjectsByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// entryIDsByProject returns the IDs of all entries attached to a project.
func (s *Store) entryIDsByProject(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM progress_entries WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
