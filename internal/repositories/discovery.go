package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

const discoveryColumns = `id, sequence, query, normalized_query, language, payload, hits, created_at, updated_at`

// DiscoveryRepository implements models.Repository[*models.CachedDiscovery] for the discovery cache.
type DiscoveryRepository struct {
	db *sql.DB
}

// NewDiscoveryRepository creates a new DiscoveryRepository with the given database connection
func NewDiscoveryRepository(db *sql.DB) *DiscoveryRepository {
	return &DiscoveryRepository{db: db}
}

// Create inserts a new cache entry.
func (r *DiscoveryRepository) Create(c *models.CachedDiscovery) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	payload, err := c.Payload()
	if err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "discoveries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	c.Sequence = sequence

	query := `
		INSERT INTO discoveries (id, sequence, query, normalized_query, language, payload, track_count, hits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		c.ID(), sequence, c.Query, c.NormalizedQuery, string(c.Language), payload,
		len(c.Result.Tracks), c.Hits, c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert discovery: %w", err)
	}
	return nil
}

// Get retrieves a cache entry by ID.
func (r *DiscoveryRepository) Get(id string) (*models.CachedDiscovery, error) {
	query := `SELECT ` + discoveryColumns + ` FROM discoveries WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// FindByQuery retrieves the entry for an already-normalized query.
func (r *DiscoveryRepository) FindByQuery(normalized string, lang models.Language) (*models.CachedDiscovery, error) {
	query := `SELECT ` + discoveryColumns + ` FROM discoveries WHERE normalized_query = ? AND language = ?`
	return r.scan(r.db.QueryRow(query, normalized, string(lang)))
}

// Update replaces the stored result and hit count.
func (r *DiscoveryRepository) Update(c *models.CachedDiscovery) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	payload, err := c.Payload()
	if err != nil {
		return err
	}
	c.Touch()

	query := `
		UPDATE discoveries
		SET query = ?, payload = ?, track_count = ?, hits = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query, c.Query, payload, len(c.Result.Tracks), c.Hits, c.UpdatedAt(), c.ID())
	if err != nil {
		return fmt.Errorf("failed to update discovery: %w", err)
	}
	return affectedOne(result, "discovery", c.ID())
}

// Delete removes a cache entry.
func (r *DiscoveryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM discoveries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete discovery: %w", err)
	}
	return affectedOne(result, "discovery", id)
}

// List returns cache entries, most recent first.
//
// Supported criteria: "language" (string or models.Language) and "limit" (int).
func (r *DiscoveryRepository) List(criteria map[string]any) ([]*models.CachedDiscovery, error) {
	query := `SELECT ` + discoveryColumns + ` FROM discoveries WHERE 1 = 1`
	args := []any{}

	switch lang := criteria["language"].(type) {
	case string:
		if lang != "" {
			query += " AND language = ?"
			args = append(args, lang)
		}
	case models.Language:
		query += " AND language = ?"
		args = append(args, string(lang))
	}

	query += " ORDER BY sequence DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query discoveries: %w", err)
	}
	defer rows.Close()

	var entries []*models.CachedDiscovery
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Save inserts c, or refreshes the existing entry for the same normalized query and language.
func (r *DiscoveryRepository) Save(c *models.CachedDiscovery) error {
	existing, err := r.FindByQuery(c.NormalizedQuery, c.Language)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return r.Create(c)
	case err != nil:
		return err
	}

	existing.Query = c.Query
	existing.Result = c.Result
	return r.Update(existing)
}

// FindSimilar returns the best cached entry for query in lang and its similarity in [0,1].
//
// An exact normalized match wins outright. Otherwise the entry with the highest
// Levenshtein ratio is returned if it reaches threshold; if none does the error is
// [shared.ErrCacheMiss].
func (r *DiscoveryRepository) FindSimilar(query string, lang models.Language, threshold float64) (*models.CachedDiscovery, float64, error) {
	normalized := shared.NormalizeQuery(query)

	exact, err := r.FindByQuery(normalized, lang)
	if err == nil {
		return exact, 1, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, err
	}

	candidates, err := r.List(map[string]any{"language": lang})
	if err != nil {
		return nil, 0, err
	}

	var best *models.CachedDiscovery
	bestScore := 0.0
	for _, c := range candidates {
		if score := Similarity(normalized, c.NormalizedQuery); score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == nil || bestScore < threshold {
		return nil, bestScore, shared.ErrCacheMiss
	}
	return best, bestScore, nil
}

// RecordHit increments the hit counter of an entry.
func (r *DiscoveryRepository) RecordHit(id string) error {
	result, err := r.db.Exec(`UPDATE discoveries SET hits = hits + 1, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	return affectedOne(result, "discovery", id)
}

// Clear removes every cache entry and returns how many were deleted.
func (r *DiscoveryRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM discoveries`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear discoveries: %w", err)
	}
	return result.RowsAffected()
}

func (r *DiscoveryRepository) scan(row rowScanner) (*models.CachedDiscovery, error) {
	var (
		id, query, normalized, lang, payload string
		sequence                             int64
		hits                                 int
		createdAt, updatedAt                 time.Time
	)
	if err := row.Scan(&id, &sequence, &query, &normalized, &lang, &payload, &hits, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan discovery: %w", err)
	}

	c := models.RestoreCachedDiscovery(id, createdAt, updatedAt)
	c.Sequence = sequence
	c.Query = query
	c.NormalizedQuery = normalized
	c.Language = models.Language(lang)
	c.Hits = hits
	if err := c.SetPayload(payload); err != nil {
		return nil, err
	}
	return c, nil
}

// Similarity is 1 minus the Levenshtein distance over the longer string's length.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
