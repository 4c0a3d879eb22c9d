package tasks

import (
	"fmt"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within the operation
	Total   int    // Total steps
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific payload
}

// Operation phase enumeration
type Phase int

const (
	Validate Phase = iota
	CacheLookup
	Discover
	CacheStore
	CheckSession
	FetchUser
	CreatePlaylist
	RecordHistory
	BatchDiscover
)

func (p Phase) String() string {
	switch p {
	case Validate:
		return "validate"
	case CacheLookup:
		return "cache_lookup"
	case Discover:
		return "discover"
	case CacheStore:
		return "cache_store"
	case CheckSession:
		return "check_session"
	case FetchUser:
		return "fetch_user"
	case CreatePlaylist:
		return "create_playlist"
	case RecordHistory:
		return "record_history"
	case BatchDiscover:
		return "batch_discover"
	default:
		return ""
	}
}

func validateUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Checking %q...", shared.Truncate(query, 40)),
	}
}

func cacheHitUpdate(step, total int, result *models.DiscoverResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheLookup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %d cached tracks", len(result.Tracks)),
		Data:    result,
	}
}

func discoverUpdate(step, total int, lang models.Language) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Discover,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Finding music for your mood (%s)...", lang),
	}
}

func discoveredUpdate(step, total int, result *models.DiscoverResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheStore,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: %d tracks", result.Playlist().Name, len(result.Tracks)),
		Data:    result,
	}
}

func sessionUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckSession,
		Step:    step,
		Total:   total,
		Message: "Checking Deezer session...",
	}
}

func userUpdate(step, total int, user *models.DeezerUser) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchUser,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Signed in as %s", user.Name),
		Data:    user,
	}
}

func createPlaylistUpdate(step, total int, req models.ExportRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating %q with %d tracks...", req.Title(), len(req.TrackIDs)),
	}
}

func playlistCreatedUpdate(step, total int, p *models.ExportedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", p.Title, p.ID),
		Data:    p,
	}
}

func batchQueuedUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchDiscover,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Discovering: %s...", step, total, shared.Truncate(query, 40)),
	}
}

func batchCompletedUpdate(step, total int, res BatchItem) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   BatchDiscover,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, shared.Truncate(res.Query, 40), res.Error),
		}
	}
	return ProgressUpdate{
		Phase:   BatchDiscover,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, res.Mood, len(res.Files)),
	}
}
