// Package models defines domain entities and persistence interfaces for the outside venue discovery client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs decoded from the remote venue API
//   - [Venue] : list record returned by search
//   - [VenueDetail] : full record returned by the venue endpoint
//   - [Category], [Amenity], [HistoryEntry] : supporting records
//   - [Session], [UserRef] : current identity as reported by the API
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [CachedVenue] : venues seen in search results, kept for offline listing
//
// Coordinates and ratings are serialized by the API as decimal strings; [Decimal] decodes them leniently
// so that one bad value never fails a whole result list.
package models
