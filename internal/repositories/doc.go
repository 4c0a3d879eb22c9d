// Package repositories implements SQLite persistence for the discovery cache and export history.
//
// Each repository handles CRUD operations with atomic sequence generation for stable ordering.
//
// Key Implementations:
//   - [DiscoveryRepository] : cached discovery results keyed by normalized query and language,
//     with Levenshtein-based lookup of similar queries
//   - [ExportRepository] : playlists exported to Deezer, soft-deleted via deleted_at
//   - [DiscoveryCacheAdapter] : adapts DiscoveryRepository to the tasks.DiscoveryCache interface
//   - [ExportHistoryAdapter] : adapts ExportRepository to the tasks.ExportHistory interface
//
// Sequence numbers are kept in dedicated single-row <table>_sequence tables and advanced by [NextSequence].
package repositories
