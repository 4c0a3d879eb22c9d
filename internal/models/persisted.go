package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/moodtune/internal/shared"
)

// CachedDiscovery is a stored discovery result.
type CachedDiscovery struct {
	id              string
	Query           string
	NormalizedQuery string
	Language        Language
	Result          DiscoverResult
	Hits            int
	Sequence        int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewCachedDiscovery builds a cache entry for query with a fresh ID.
func NewCachedDiscovery(query string, lang Language, result DiscoverResult) *CachedDiscovery {
	now := time.Now()
	return &CachedDiscovery{
		id:              shared.GenerateID(),
		Query:           query,
		NormalizedQuery: shared.NormalizeQuery(query),
		Language:        lang,
		Result:          result,
		createdAt:       now,
		updatedAt:       now,
	}
}

// RestoreCachedDiscovery rebuilds a cache entry loaded from storage.
func RestoreCachedDiscovery(id string, createdAt, updatedAt time.Time) *CachedDiscovery {
	return &CachedDiscovery{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (c *CachedDiscovery) ID() string           { return c.id }
func (c *CachedDiscovery) CreatedAt() time.Time { return c.createdAt }
func (c *CachedDiscovery) UpdatedAt() time.Time { return c.updatedAt }

// Touch bumps the update timestamp.
func (c *CachedDiscovery) Touch() { c.updatedAt = time.Now() }

func (c *CachedDiscovery) Validate() error {
	if c.id == "" {
		return fmt.Errorf("%w: cached discovery id is required", shared.ErrInvalidInput)
	}
	if c.NormalizedQuery == "" {
		return fmt.Errorf("%w: cached discovery query is required", shared.ErrInvalidInput)
	}
	if _, err := ParseLanguage(string(c.Language)); err != nil {
		return err
	}
	return nil
}

// Payload encodes the result for storage.
func (c *CachedDiscovery) Payload() (string, error) {
	b, err := json.Marshal(c.Result)
	if err != nil {
		return "", fmt.Errorf("failed to encode discovery: %w", err)
	}
	return string(b), nil
}

// SetPayload decodes a stored result.
func (c *CachedDiscovery) SetPayload(s string) error {
	if err := json.Unmarshal([]byte(s), &c.Result); err != nil {
		return fmt.Errorf("failed to decode discovery: %w", err)
	}
	return nil
}

// ExportRecord remembers a playlist exported to Deezer.
type ExportRecord struct {
	id         string
	PlaylistID string
	Title      string
	Mood       string
	URL        string
	TrackCount int
	Sequence   int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewExportRecord records p, exported for mood.
func NewExportRecord(p *ExportedPlaylist, mood string) *ExportRecord {
	now := time.Now()
	return &ExportRecord{
		id:         shared.GenerateID(),
		PlaylistID: p.ID,
		Title:      p.Title,
		Mood:       mood,
		URL:        p.URL,
		TrackCount: p.TrackCount,
		createdAt:  now,
		updatedAt:  now,
	}
}

// RestoreExportRecord rebuilds a record loaded from storage.
func RestoreExportRecord(id string, createdAt, updatedAt time.Time) *ExportRecord {
	return &ExportRecord{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e *ExportRecord) ID() string           { return e.id }
func (e *ExportRecord) CreatedAt() time.Time { return e.createdAt }
func (e *ExportRecord) UpdatedAt() time.Time { return e.updatedAt }

// Touch bumps the update timestamp.
func (e *ExportRecord) Touch() { e.updatedAt = time.Now() }

func (e *ExportRecord) Validate() error {
	if e.id == "" || e.PlaylistID == "" {
		return fmt.Errorf("%w: export record requires id and playlist id", shared.ErrInvalidInput)
	}
	if e.URL == "" {
		return fmt.Errorf("%w: export record requires a url", shared.ErrInvalidInput)
	}
	return nil
}
