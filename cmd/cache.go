package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/outside/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheVenues lists venues saved from earlier search results.
func (r *Runner) CacheVenues(ctx context.Context, cmd *cli.Command) error {
	if r.venues == nil {
		return fmt.Errorf("%w: database not initialized, run 'outside setup database'", shared.ErrServiceUnavailable)
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if category := cmd.String("category"); category != "" {
		criteria["category"] = category
	}

	cached, err := r.venues.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list cached venues: %w", err)
	}

	if cmd.Bool("json") {
		type row struct {
			Sequence int    `json:"sequence"`
			Category string `json:"category"`
			CachedAt string `json:"cached_at"`
			Venue    any    `json:"venue"`
		}
		rows := make([]row, len(cached))
		for i, c := range cached {
			rows[i] = row{Sequence: c.Sequence(), Category: c.Category(), CachedAt: c.UpdatedAt().Format("2006-01-02 15:04"), Venue: c.Venue()}
		}
		return r.writeJSON(rows, true)
	}

	if len(cached) == 0 {
		return r.writePlain("No cached venues. Run a search to fill the cache.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Cached venues (%d)", len(cached)))
	for _, c := range cached {
		v := c.Venue()
		r.writePlain("%4d  %s %s (#%d) · %s\n", c.Sequence(), v.Icon(), v.Name, v.ID, c.Category())
		r.writePlain("      %s\n", v.Summary())
	}
	return nil
}
