package main

import (
	"context"
	"time"

	"github.com/desertthunder/moodtune/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheList shows cached discoveries, most recent first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if lang := cmd.String("lang"); lang != "" {
		criteria["language"] = lang
	}

	entries, err := repositories.NewDiscoveryRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type row struct {
			Query     string    `json:"query"`
			Language  string    `json:"language"`
			Mood      string    `json:"mood"`
			Tracks    int       `json:"tracks"`
			Hits      int       `json:"hits"`
			UpdatedAt time.Time `json:"updated_at"`
		}
		rows := make([]row, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, row{e.Query, string(e.Language), e.Result.Playlist().Name, len(e.Result.Tracks), e.Hits, e.UpdatedAt()})
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(entries) == 0 {
		return r.writePlain("Cache is empty.\n")
	}
	r.writePlain("Cached discoveries (%d):\n\n", len(entries))
	for i, e := range entries {
		r.writePlain("%d. [%s] %s\n", i+1, e.Language, e.Query)
		r.writePlain("   Mood: %s, %d tracks, %d hits\n", e.Result.Playlist().Name, len(e.Result.Tracks), e.Hits)
	}
	return nil
}

// CacheClear removes every cached discovery.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	n, err := repositories.NewDiscoveryRepository(db).Clear()
	if err != nil {
		return err
	}
	r.logger.Info("cache cleared", "entries", n)
	return r.writePlain("✓ Removed %d cached discoveries\n", n)
}
