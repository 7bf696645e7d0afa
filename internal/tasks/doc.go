// Package tasks holds the controllers that drive venue discovery, with real-time progress reporting.
//
// # Controllers
//
//  1. [AuthController] : session lifecycle
//     - [AuthController.CheckStatus] rebuilds the session at start-up
//     - Login and Signup validate locally before any request
//     - Logout treats 401 as success; other failures schedule a [AuthController.Reload]
//
//  2. [SearchController] : category and location search
//     - Every search takes a new generation; responses from older generations are dropped
//     - The venue list and the map markers are replaced under one lock
//     - Card selection, card hover and marker clicks keep the highlight and popup in sync
//
//  3. [DetailLoader] : the venue detail panel, with placeholders for missing fields
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Venue Caching
//
// The optional [VenueCacher] interface persists venues seen in results.
//
// Venues are cached silently (errors logged at debug level) so a full disk never fails a search.
//
// # Tile Export
//
// [ExportTiles] downloads the tiles of a viewport with a small worker pool and writes a manifest.
package tasks
