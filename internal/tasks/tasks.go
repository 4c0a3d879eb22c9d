// package tasks implements the discovery and export workflows.
//
// Engines emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
)

// DiscoveryCache stores discovery results keyed by query and language.
type DiscoveryCache interface {
	Lookup(query string, lang models.Language) (*models.DiscoverResult, bool, error)
	Store(query string, lang models.Language, result *models.DiscoverResult) error
}

// ExportHistory records playlists created on Deezer.
type ExportHistory interface {
	Record(p *models.ExportedPlaylist, mood string) error
}

// DiscoveryRun is the outcome of [DiscoveryEngine.Discover].
type DiscoveryRun struct {
	Query    string
	Language models.Language
	Result   *models.DiscoverResult
	Cached   bool // served from the local cache
}

// ExportRun is the outcome of [ExportEngine.Export].
type ExportRun struct {
	User     *models.DeezerUser
	Playlist *models.ExportedPlaylist
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// DiscoveryEngine runs mood discovery with an optional cache in front of the backend.
type DiscoveryEngine struct {
	discoverer services.Discoverer
	cache      DiscoveryCache
	logger     *log.Logger
}

// NewDiscoveryEngine creates an engine. cache may be nil.
func NewDiscoveryEngine(d services.Discoverer, cache DiscoveryCache, logger *log.Logger) *DiscoveryEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &DiscoveryEngine{discoverer: d, cache: cache, logger: logger}
}

// Discover validates the description, then serves it from the cache or the backend.
//
// Validation errors are returned before any lookup or request is made.
func (e *DiscoveryEngine) Discover(ctx context.Context, query string, lang models.Language, progress chan<- ProgressUpdate) (*DiscoveryRun, error) {
	const total = 3

	if e.discoverer == nil {
		return nil, fmt.Errorf("%w: discovery service not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, validateUpdate(1, total, query))
	req := models.DiscoverRequest{Query: strings.TrimSpace(query), Language: lang}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	run := &DiscoveryRun{Query: req.Query, Language: lang}

	if e.cache != nil {
		cached, ok, err := e.cache.Lookup(req.Query, lang)
		switch {
		case err != nil:
			e.logger.Warn("cache lookup failed", "error", err)
		case ok:
			e.logger.Debug("cache hit", "query", shared.Truncate(req.Query, 40), "tracks", len(cached.Tracks))
			sendProgress(progress, cacheHitUpdate(total, total, cached))
			run.Result, run.Cached = cached, true
			return run, nil
		}
	}

	sendProgress(progress, discoverUpdate(2, total, lang))
	result, err := e.discoverer.Discover(ctx, req)
	if err != nil {
		return nil, err
	}
	run.Result = result

	if e.cache != nil {
		if err := e.cache.Store(req.Query, lang, result); err != nil {
			e.logger.Warn("cache store failed", "error", err)
		}
	}

	sendProgress(progress, discoveredUpdate(3, total, result))
	return run, nil
}

// ExportEngine turns discovery results into Deezer playlists.
type ExportEngine struct {
	exporter services.PlaylistExporter
	history  ExportHistory
	logger   *log.Logger
}

// NewExportEngine creates an engine. history may be nil.
func NewExportEngine(exp services.PlaylistExporter, history ExportHistory, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &ExportEngine{exporter: exp, history: history, logger: logger}
}

// Export creates a playlist from result.
//
// A missing OAuth configuration or session is reported from local state, so
// the rejection never reaches the network.
func (e *ExportEngine) Export(ctx context.Context, result *models.DiscoverResult, progress chan<- ProgressUpdate) (*ExportRun, error) {
	const total = 4

	if e.exporter == nil {
		return nil, fmt.Errorf("%w: exporter not initialized", shared.ErrServiceUnavailable)
	}
	if result == nil {
		return nil, shared.ErrNoTracks
	}

	req := models.NewExportRequest(*result)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sendProgress(progress, sessionUpdate(1, total))
	status := e.exporter.Status()
	if !status.Enabled {
		return nil, shared.ErrOAuthDisabled
	}
	if !status.Authenticated {
		return nil, shared.ErrNotAuthenticated
	}

	user, err := e.exporter.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}
	sendProgress(progress, userUpdate(2, total, user))

	sendProgress(progress, createPlaylistUpdate(3, total, req))
	playlist, err := e.exporter.CreateMoodPlaylist(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}
	if playlist == nil {
		return nil, fmt.Errorf("%w: no playlist returned", shared.ErrExportFailed)
	}

	if e.history != nil {
		if err := e.history.Record(playlist, req.MoodName); err != nil {
			e.logger.Warn("failed to record export", "playlist", playlist.ID, "error", err)
		}
	}

	sendProgress(progress, playlistCreatedUpdate(4, total, playlist))
	e.logger.Info("playlist exported", "id", playlist.ID, "tracks", playlist.TrackCount, "user", user.Name)
	return &ExportRun{User: user, Playlist: playlist}, nil
}

// Open shows the exported playlist, preferring the Deezer app over the browser.
func Open(p *models.ExportedPlaylist) (string, error) {
	if p == nil {
		return "", shared.ErrPlaylistNotFound
	}
	return shared.OpenWithFallback(p.AppURL, p.URL)
}
