// package models defines the data model for the mood discovery client
package models

import "time"

// Model is a record stored in the local database: [CachedDiscovery] or [ExportRecord].
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is CRUD access for one [Model] type. List criteria are column
// filters plus an optional "limit".
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// DiscoveryStore adds the lookups the discovery cache needs.
//
// FindSimilar returns the closest entry in lang whose normalized query scores
// at least threshold in [0,1], with its score.
type DiscoveryStore interface {
	Repository[*CachedDiscovery]
	Save(c *CachedDiscovery) error
	FindByQuery(normalized string, lang Language) (*CachedDiscovery, error)
	FindSimilar(query string, lang Language, threshold float64) (*CachedDiscovery, float64, error)
	RecordHit(id string) error
	Clear() (int64, error)
}
