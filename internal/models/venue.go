package models

import (
	"fmt"
	"strings"
)

// DefaultIcon is shown for categories without a mapped glyph.
const DefaultIcon = "📍"

// CategoryIcons maps category slugs to their display glyph.
var CategoryIcons = map[string]string{
	"restaurant":    "🍽️",
	"cafe":          "☕",
	"entertainment": "🎪",
	"lounge":        "🛋️",
	"cinema":        "🎬",
	"bar":           "🍺",
}

// IconFor returns the glyph for slug, or [DefaultIcon].
func IconFor(slug string) string {
	if icon, ok := CategoryIcons[slug]; ok {
		return icon
	}
	return DefaultIcon
}

// DefaultCategories is the catalog used when the categories endpoint cannot be reached.
var DefaultCategories = []Category{
	{ID: 1, Slug: "restaurant", Name: "Restaurants", Icon: "🍽️"},
	{ID: 2, Slug: "cafe", Name: "Cafes", Icon: "☕"},
	{ID: 3, Slug: "entertainment", Name: "Entertainment", Icon: "🎪"},
	{ID: 4, Slug: "lounge", Name: "Lounges", Icon: "🛋️"},
	{ID: 5, Slug: "cinema", Name: "Cinemas", Icon: "🎬"},
	{ID: 6, Slug: "bar", Name: "Bars", Icon: "🍺"},
}

// Category is a venue category as returned by /api/categories/.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
}

// Glyph returns the category icon, falling back to the static table.
func (c Category) Glyph() string {
	if c.Icon != "" {
		return c.Icon
	}
	return IconFor(c.Slug)
}

// Amenity is a feature offered by a venue (WiFi, parking, ...).
type Amenity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// VenueImage is an additional photo attached to a venue.
type VenueImage struct {
	ID        int    `json:"id"`
	Image     string `json:"image"`
	Caption   string `json:"caption,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

// Venue is the list record returned by the search endpoint.
type Venue struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	CategoryName string  `json:"category_name"`
	CategoryIcon string  `json:"category_icon"`
	City         string  `json:"city"`
	Area         string  `json:"area"`
	Address      string  `json:"address"`
	Latitude     Decimal `json:"latitude"`
	Longitude    Decimal `json:"longitude"`
	PriceRange   string  `json:"price_range"`
	Rating       Decimal `json:"rating"`
	Thumbnail    *string `json:"thumbnail"`
}

// Position returns the venue coordinate and whether both parts are finite numbers.
func (v Venue) Position() (lat, lng float64, ok bool) {
	if !v.Latitude.Valid || !v.Longitude.Valid {
		return 0, 0, false
	}
	return v.Latitude.Value, v.Longitude.Value, true
}

// LocationText formats "{area, }city".
func (v Venue) LocationText() string {
	return locationText(v.Area, v.City)
}

// Summary is the one-line card description: "📍 {area, }city • 💰 price[ • ⭐ rating]".
func (v Venue) Summary() string {
	s := fmt.Sprintf("📍 %s • 💰 %s", v.LocationText(), v.PriceRange)
	if v.Rating.Positive() {
		s += " • ⭐ " + v.Rating.String()
	}
	return s
}

// Icon returns the category glyph carried on the record, or [DefaultIcon].
func (v Venue) Icon() string {
	if v.CategoryIcon != "" {
		return v.CategoryIcon
	}
	return DefaultIcon
}

// VenueDetail is the full record returned by /api/venues/<id>/.
type VenueDetail struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Category     *Category      `json:"category"`
	Description  string         `json:"description"`
	City         string         `json:"city"`
	Area         string         `json:"area"`
	Address      string         `json:"address"`
	Latitude     Decimal        `json:"latitude"`
	Longitude    Decimal        `json:"longitude"`
	PriceRange   string         `json:"price_range"`
	Rating       Decimal        `json:"rating"`
	PhoneNumber  string         `json:"phone_number"`
	Website      string         `json:"website"`
	OpeningHours map[string]any `json:"opening_hours"`
	Images       []VenueImage   `json:"images"`
	Amenities    []Amenity      `json:"amenities_list"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// LocationText formats "{area, }city".
func (v VenueDetail) LocationText() string {
	return locationText(v.Area, v.City)
}

// Summary converts the detail into a list record.
func (v VenueDetail) Summary() Venue {
	out := Venue{
		ID:         v.ID,
		Name:       v.Name,
		City:       v.City,
		Area:       v.Area,
		Address:    v.Address,
		Latitude:   v.Latitude,
		Longitude:  v.Longitude,
		PriceRange: v.PriceRange,
		Rating:     v.Rating,
	}
	if v.Category != nil {
		out.CategoryName = v.Category.Name
		out.CategoryIcon = v.Category.Icon
	}
	return out
}

// SearchResult is the body of a successful search.
type SearchResult struct {
	Count   int     `json:"count"`
	Results []Venue `json:"results"`
}

func locationText(area, city string) string {
	if strings.TrimSpace(area) == "" {
		return city
	}
	return area + ", " + city
}
