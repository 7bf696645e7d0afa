package repositories

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/outside/internal/shared"
)

// CookieRepository implements services.CookieStore on the cookies table.
//
// Cookies are keyed by (host, name, path). Saving a cookie that is already expired, or that has a
// negative MaxAge, deletes it.
type CookieRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCookieRepository creates a new CookieRepository with the given database connection
func NewCookieRepository(db *sql.DB) *CookieRepository {
	return &CookieRepository{db: db, now: time.Now}
}

// SaveCookies upserts cookies for host
func (r *CookieRepository) SaveCookies(host string, cookies []*http.Cookie) error {
	now := r.now()

	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}

		expires := sql.NullTime{}
		switch {
		case c.MaxAge < 0:
			if err := r.deleteCookie(host, c.Name, path); err != nil {
				return err
			}
			continue
		case c.MaxAge > 0:
			expires = sql.NullTime{Time: now.Add(time.Duration(c.MaxAge) * time.Second), Valid: true}
		case !c.Expires.IsZero():
			expires = sql.NullTime{Time: c.Expires, Valid: true}
		}

		if expires.Valid && !expires.Time.After(now) {
			if err := r.deleteCookie(host, c.Name, path); err != nil {
				return err
			}
			continue
		}

		sequence, err := NextSequence(r.db, "cookies")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `
			INSERT INTO cookies (id, sequence, host, name, value, path, domain, expires_at, secure, http_only, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (host, name, path) DO UPDATE SET
				value = excluded.value,
				domain = excluded.domain,
				expires_at = excluded.expires_at,
				secure = excluded.secure,
				http_only = excluded.http_only,
				updated_at = excluded.updated_at
		`

		_, err = r.db.Exec(query,
			shared.GenerateID(),
			sequence,
			host,
			c.Name,
			c.Value,
			path,
			c.Domain,
			expires,
			c.Secure,
			c.HttpOnly,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to save cookie %s: %w", c.Name, err)
		}
	}

	return nil
}

// LoadCookies returns the unexpired cookies stored for host in insertion order
func (r *CookieRepository) LoadCookies(host string) ([]*http.Cookie, error) {
	query := `
		SELECT name, value, path, domain, expires_at, secure, http_only
		FROM cookies
		WHERE host = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query, host)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer rows.Close()

	now := r.now()
	var cookies []*http.Cookie
	for rows.Next() {
		var (
			c       http.Cookie
			expires sql.NullTime
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Path, &c.Domain, &expires, &c.Secure, &c.HttpOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expires.Valid {
			if !expires.Time.After(now) {
				continue
			}
			c.Expires = expires.Time
		}
		cookies = append(cookies, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return cookies, nil
}

// ClearCookies deletes every cookie stored for host
func (r *CookieRepository) ClearCookies(host string) error {
	if _, err := r.db.Exec(`DELETE FROM cookies WHERE host = ?`, host); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

// Hosts lists the hosts with stored cookies
func (r *CookieRepository) Hosts() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT host FROM cookies ORDER BY host`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookie hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}
	return hosts, rows.Err()
}

func (r *CookieRepository) deleteCookie(host, name, path string) error {
	if _, err := r.db.Exec(`DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`, host, name, path); err != nil {
		return fmt.Errorf("failed to delete cookie %s: %w", name, err)
	}
	return nil
}
