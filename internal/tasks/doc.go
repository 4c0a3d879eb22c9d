// Package tasks orchestrates the multi-step operations behind the CLI and TUI.
//
// # Core Operations
//
//  1. [DiscoveryEngine.Discover] : mood description to tracks
//     - Validates the query locally (no request is sent for invalid input)
//     - Consults the optional [DiscoveryCache] (exact, then similar queries)
//     - Calls the discovery backend and stores successful results
//
//  2. [DiscoveryEngine.Batch] : many descriptions at once
//     - Worker pool bounded by a rate limiter
//     - Writes each result with the formatter and a manifest summarizing the run
//
//  3. [ExportEngine.Export] : tracks to a Deezer playlist
//     - Rejects the request from local session state before any network call
//     - Resolves the user, creates the playlist and records it in [ExportHistory]
//
// # Progress Reporting
//
// Operations accept an optional progress channel. [ProgressUpdate] values are sent
// with select/default so a slow reader never blocks an operation.
//
// # Persistence
//
// Cache and history failures are logged and never fail the operation they decorate.
package tasks
