// Package models defines domain entities and persistence interfaces for MoodTune.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs exchanged with the discovery backend and Deezer
//   - [Track] : a recommended song with an optional preview URL
//   - [Playlist] : an ordered, read-only sequence of tracks handed to the player
//   - [Metadata] : the backend's interpretation of the mood (energy, genres)
//   - [DiscoverRequest] / [DiscoverResult] : the discovery exchange
//   - [ExportRequest] / [ExportedPlaylist] : the Deezer export exchange
//
// 2. Persistent Entities: database-backed records
//   - [CachedDiscovery] : a stored discovery result keyed by normalized query and language
//   - [ExportRecord] : a playlist previously exported to Deezer
//
// All persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access,
// and DiscoveryStore adds the cache lookups.
package models
