package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodtune/internal/models"
)

const exportColumns = `id, sequence, playlist_id, title, mood, url, track_count, created_at, updated_at`

// ExportRepository implements models.Repository[*models.ExportRecord] for export history.
//
// Records are soft-deleted and excluded from queries once deleted_at is set.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new ExportRepository with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a new [models.ExportRecord] with a generated sequence.
func (r *ExportRepository) Create(e *models.ExportRecord) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "exports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	e.Sequence = sequence

	query := `
		INSERT INTO exports (id, sequence, playlist_id, title, mood, url, track_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		e.ID(), sequence, e.PlaylistID, e.Title, e.Mood, e.URL, e.TrackCount, e.CreatedAt(), e.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}
	return nil
}

// Get retrieves an export by ID, excluding soft-deleted records
func (r *ExportRepository) Get(id string) (*models.ExportRecord, error) {
	query := `SELECT ` + exportColumns + ` FROM exports WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// Update modifies the descriptive fields of an export.
func (r *ExportRepository) Update(e *models.ExportRecord) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	e.Touch()

	query := `
		UPDATE exports
		SET title = ?, mood = ?, url = ?, track_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, e.Title, e.Mood, e.URL, e.TrackCount, e.UpdatedAt(), e.ID())
	if err != nil {
		return fmt.Errorf("failed to update export: %w", err)
	}
	return affectedOne(result, "export", e.ID())
}

// Delete soft-deletes an export by ID
func (r *ExportRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE exports SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	return affectedOne(result, "export", id)
}

// List returns exports, most recent first.
//
// Supported criteria: "playlist_id" (string) and "limit" (int).
func (r *ExportRepository) List(criteria map[string]any) ([]*models.ExportRecord, error) {
	query := `SELECT ` + exportColumns + ` FROM exports WHERE deleted_at IS NULL`
	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY sequence DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var records []*models.ExportRecord
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

func (r *ExportRepository) scan(row rowScanner) (*models.ExportRecord, error) {
	var (
		id, playlistID, title, mood, url string
		sequence                         int64
		trackCount                       int
		createdAt, updatedAt             time.Time
	)
	if err := row.Scan(&id, &sequence, &playlistID, &title, &mood, &url, &trackCount, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}

	e := models.RestoreExportRecord(id, createdAt, updatedAt)
	e.Sequence = sequence
	e.PlaylistID = playlistID
	e.Title = title
	e.Mood = mood
	e.URL = url
	e.TrackCount = trackCount
	return e, nil
}
