package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

var (
	_ models.DiscoveryStore                   = (*DiscoveryRepository)(nil)
	_ models.Repository[*models.ExportRecord] = (*ExportRepository)(nil)
)

// DiscoveryCacheAdapter implements tasks.DiscoveryCache on a [models.DiscoveryStore].
type DiscoveryCacheAdapter struct {
	repo      models.DiscoveryStore
	threshold float64
}

// NewDiscoveryCacheAdapter creates an adapter that accepts similar queries scoring at least threshold.
func NewDiscoveryCacheAdapter(repo models.DiscoveryStore, threshold float64) *DiscoveryCacheAdapter {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.75
	}
	return &DiscoveryCacheAdapter{repo: repo, threshold: threshold}
}

// Lookup returns a cached result for query, exact or similar. A miss is (nil, false, nil).
func (a *DiscoveryCacheAdapter) Lookup(query string, lang models.Language) (*models.DiscoverResult, bool, error) {
	entry, _, err := a.repo.FindSimilar(query, lang, a.threshold)
	if errors.Is(err, shared.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if err := a.repo.RecordHit(entry.ID()); err != nil {
		return nil, false, err
	}
	result := entry.Result
	return &result, true, nil
}

// Store saves result under query.
func (a *DiscoveryCacheAdapter) Store(query string, lang models.Language, result *models.DiscoverResult) error {
	if result == nil {
		return nil
	}
	if err := a.repo.Save(models.NewCachedDiscovery(query, lang, *result)); err != nil {
		return fmt.Errorf("failed to cache discovery: %w", err)
	}
	return nil
}

// ExportHistoryAdapter implements tasks.ExportHistory on any export record repository.
type ExportHistoryAdapter struct {
	repo models.Repository[*models.ExportRecord]
}

// NewExportHistoryAdapter creates a new ExportHistoryAdapter with the given repository
func NewExportHistoryAdapter(repo models.Repository[*models.ExportRecord]) *ExportHistoryAdapter {
	return &ExportHistoryAdapter{repo: repo}
}

// Record stores an exported playlist.
func (a *ExportHistoryAdapter) Record(p *models.ExportedPlaylist, mood string) error {
	return a.repo.Create(models.NewExportRecord(p, mood))
}
