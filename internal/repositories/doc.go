// Package repositories implements SQLite persistence for session cookies and cached venues.
//
// Key Implementations:
//   - [CookieRepository] : the services.CookieStore behind the persistent cookie jar
//   - [VenueRepository] : venues seen in search results, stored as JSON snapshots
//   - [VenueCacheAdapter] : the tasks.VenueCacher used by the search controller
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
