package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/shared"
)

// ErrCachedVenueNotFound is returned when no live row matches a lookup.
var ErrCachedVenueNotFound = errors.New("cached venue not found")

// VenueRepository implements models.Repository[*models.CachedVenue] for the local venue cache.
//
// The full venue record is stored as a JSON payload; name and category are denormalized for listing.
type VenueRepository struct {
	db *sql.DB
}

// NewVenueRepository creates a new VenueRepository with the given database connection
func NewVenueRepository(db *sql.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

const venueColumns = `id, sequence, remote_id, category, payload, created_at, updated_at`

// Create inserts a new [models.CachedVenue] with generated ID and sequence
func (r *VenueRepository) Create(v *models.CachedVenue) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "cached_venues")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	payload, err := json.Marshal(v.Venue())
	if err != nil {
		return fmt.Errorf("failed to encode venue: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO cached_venues (id, sequence, remote_id, category, name, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		v.RemoteID(),
		v.Category(),
		v.Venue().Name,
		string(payload),
		v.CreatedAt(),
		v.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cached venue: %w", err)
	}

	v.SetID(id)
	v.SetSequence(sequence)
	return nil
}

// Get retrieves a cached venue by ID, excluding deleted rows
func (r *VenueRepository) Get(id string) (*models.CachedVenue, error) {
	query := `SELECT ` + venueColumns + ` FROM cached_venues WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByRemoteID retrieves the cached snapshot of the API venue remoteID
func (r *VenueRepository) GetByRemoteID(remoteID int) (*models.CachedVenue, error) {
	query := `SELECT ` + venueColumns + ` FROM cached_venues WHERE remote_id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, remoteID))
}

// Update replaces the stored snapshot and category
func (r *VenueRepository) Update(v *models.CachedVenue) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	payload, err := json.Marshal(v.Venue())
	if err != nil {
		return fmt.Errorf("failed to encode venue: %w", err)
	}

	now := time.Now()
	v.SetUpdatedAt(now)

	query := `
		UPDATE cached_venues
		SET category = ?, name = ?, payload = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, v.Category(), v.Venue().Name, string(payload), now, v.ID())
	if err != nil {
		return fmt.Errorf("failed to update cached venue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrCachedVenueNotFound, v.ID())
	}

	return nil
}

// Delete soft-deletes a cached venue by ID
func (r *VenueRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE cached_venues SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete cached venue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrCachedVenueNotFound, id)
	}

	return nil
}

// List retrieves cached venues in insertion order. Supported criteria: "category" (string) and "limit" (int).
func (r *VenueRepository) List(criteria map[string]any) ([]*models.CachedVenue, error) {
	query := `SELECT ` + venueColumns + ` FROM cached_venues WHERE deleted_at IS NULL`
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached venues: %w", err)
	}
	defer rows.Close()

	var venues []*models.CachedVenue
	for rows.Next() {
		v, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return venues, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *VenueRepository) scan(row scanner) (*models.CachedVenue, error) {
	var (
		id        string
		sequence  int
		remoteID  int
		category  string
		payload   string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &remoteID, &category, &payload, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCachedVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cached venue: %w", err)
	}

	var venue models.Venue
	if err := json.Unmarshal([]byte(payload), &venue); err != nil {
		return nil, fmt.Errorf("failed to decode cached venue %s: %w", id, err)
	}
	venue.ID = remoteID

	v := models.NewCachedVenue(sequence, category, venue)
	v.SetID(id)
	v.SetCreatedAt(createdAt)
	v.SetUpdatedAt(updatedAt)
	return v, nil
}
