package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// SearchSelection is the category chosen for the next search.
type SearchSelection struct {
	Category     string `json:"category"`
	CategoryIcon string `json:"category_icon"`
	CategoryName string `json:"category_name"`
}

// Empty reports whether no category has been selected.
func (s SearchSelection) Empty() bool {
	return strings.TrimSpace(s.Category) == ""
}

// SearchQuery is the city and optional area parsed from free-text location input.
type SearchQuery struct {
	City string
	Area string
}

// ParseLocation splits text on the first comma into city and area, trimming both halves.
//
// No other normalization is applied.
func ParseLocation(text string) SearchQuery {
	city, area, _ := strings.Cut(text, ",")
	return SearchQuery{City: strings.TrimSpace(city), Area: strings.TrimSpace(area)}
}

// String formats the query as "city, area" or "city".
func (q SearchQuery) String() string {
	if q.Area == "" {
		return q.City
	}
	return q.City + ", " + q.Area
}

// HistoryEntry is a prior search returned by /api/search-history/.
type HistoryEntry struct {
	ID         int       `json:"id"`
	Category   string    `json:"category"`
	City       string    `json:"city"`
	Area       string    `json:"area"`
	SearchedAt time.Time `json:"searched_at"`
}

// Query returns the location of the entry.
func (h HistoryEntry) Query() SearchQuery {
	return SearchQuery{City: h.City, Area: h.Area}
}

// Label formats the entry as "{icon} {Category} in {city[, area]}".
func (h HistoryEntry) Label() string {
	name := h.Category
	if r, size := utf8.DecodeRuneInString(name); r != utf8.RuneError {
		name = strings.ToUpper(string(r)) + name[size:]
	}
	return IconFor(h.Category) + " " + name + " in " + h.Query().String()
}

// CountText formats n as "Showing 1 place" or "Showing N places".
func CountText(n int) string {
	if n == 1 {
		return "Showing 1 place"
	}
	return fmt.Sprintf("Showing %d places", n)
}
