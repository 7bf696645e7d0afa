package models

import (
	"fmt"
	"strings"
	"time"
)

// CachedVenue is a venue seen in search results and persisted locally.
//
// The remote ID is unique; repeated sightings refresh the stored snapshot.
type CachedVenue struct {
	id        string
	sequence  int
	remoteID  int
	category  string
	venue     Venue
	createdAt time.Time
	updatedAt time.Time
}

// NewCachedVenue creates a cached snapshot of v found under category.
func NewCachedVenue(sequence int, category string, v Venue) *CachedVenue {
	now := time.Now()
	return &CachedVenue{
		sequence:  sequence,
		remoteID:  v.ID,
		category:  category,
		venue:     v,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *CachedVenue) ID() string           { return c.id }
func (c *CachedVenue) CreatedAt() time.Time { return c.createdAt }
func (c *CachedVenue) UpdatedAt() time.Time { return c.updatedAt }
func (c *CachedVenue) Sequence() int        { return c.sequence }
func (c *CachedVenue) RemoteID() int        { return c.remoteID }
func (c *CachedVenue) Category() string     { return c.category }
func (c *CachedVenue) Venue() Venue         { return c.venue }

func (c *CachedVenue) SetID(id string)             { c.id = id }
func (c *CachedVenue) SetSequence(seq int)         { c.sequence = seq }
func (c *CachedVenue) SetCreatedAt(t time.Time)    { c.createdAt = t }
func (c *CachedVenue) SetUpdatedAt(t time.Time)    { c.updatedAt = t }
func (c *CachedVenue) SetVenue(v Venue)            { c.venue = v; c.remoteID = v.ID }
func (c *CachedVenue) SetCategory(category string) { c.category = category }

// Validate checks that the snapshot refers to a remote venue.
func (c *CachedVenue) Validate() error {
	if c.remoteID <= 0 {
		return fmt.Errorf("remote venue id is required")
	}
	if strings.TrimSpace(c.venue.Name) == "" {
		return fmt.Errorf("venue name is required")
	}
	if strings.TrimSpace(c.venue.City) == "" {
		return fmt.Errorf("venue city is required")
	}
	return nil
}
