package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/outside/internal/models"
)

// VenueCacheAdapter implements tasks.VenueCacher using VenueRepository.
//
// A venue seen again refreshes its snapshot. Invalid records are skipped and concurrent duplicate
// inserts (UNIQUE constraint violations) are ignored.
type VenueCacheAdapter struct {
	repo *VenueRepository
}

// NewVenueCacheAdapter creates a new VenueCacheAdapter with the given repository
func NewVenueCacheAdapter(repo *VenueRepository) *VenueCacheAdapter {
	return &VenueCacheAdapter{repo: repo}
}

// CacheVenues stores every venue under category and returns the joined failures.
func (a *VenueCacheAdapter) CacheVenues(ctx context.Context, category string, venues []models.Venue) error {
	var errs []error
	for _, v := range venues {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.cacheVenue(category, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *VenueCacheAdapter) cacheVenue(category string, v models.Venue) error {
	existing, err := a.repo.GetByRemoteID(v.ID)
	if err == nil {
		existing.SetVenue(v)
		existing.SetCategory(category)
		return a.repo.Update(existing)
	}
	if !errors.Is(err, ErrCachedVenueNotFound) {
		return err
	}

	cached := models.NewCachedVenue(0, category, v)
	if cached.Validate() != nil {
		return nil
	}

	if err := a.repo.Create(cached); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache venue %d: %w", v.ID, err)
	}
	return nil
}
