// Package mapview keeps the state of the results map: viewport, venue markers and the open popup.
//
// A [Renderer] owns a single map instance. Venue lists replace the marker set wholesale; venues
// without usable coordinates are skipped. The map is drawn for terminals with [Renderer.Render] and
// its imagery is described by [Renderer.Tiles].
package mapview

import (
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/shared"
)

// FocusTolerance is how close, in degrees on both axes, a marker must be to a focused coordinate
// for its popup to open.
const FocusTolerance = 0.0001

// Options configures the map instance.
type Options struct {
	Center      LatLng
	Zoom        int
	MaxZoom     int
	FitMaxZoom  int
	FitPadding  int
	FocusZoom   int
	Width       int
	Height      int
	TileURL     string
	Attribution string
}

// DefaultOptions centers the map on Accra.
func DefaultOptions() Options {
	return Options{
		Center:      LatLng{Lat: 5.6037, Lng: -0.1870},
		Zoom:        12,
		MaxZoom:     18,
		FitMaxZoom:  14,
		FitPadding:  50,
		FocusZoom:   16,
		Width:       800,
		Height:      600,
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	}
}

// OptionsFromConfig builds [Options] from the map section of the config file.
func OptionsFromConfig(c shared.MapConfig) Options {
	o := DefaultOptions()
	o.Center = LatLng{Lat: c.CenterLat, Lng: c.CenterLng}
	if c.DefaultZoom > 0 {
		o.Zoom = c.DefaultZoom
	}
	if c.MaxZoom > 0 {
		o.MaxZoom = c.MaxZoom
	}
	if c.FitMaxZoom > 0 {
		o.FitMaxZoom = c.FitMaxZoom
	}
	if c.FitPadding >= 0 {
		o.FitPadding = c.FitPadding
	}
	if c.FocusZoom > 0 {
		o.FocusZoom = c.FocusZoom
	}
	if c.Width > 0 {
		o.Width = c.Width
	}
	if c.Height > 0 {
		o.Height = c.Height
	}
	if c.TileURL != "" {
		o.TileURL = c.TileURL
	}
	if c.Attribution != "" {
		o.Attribution = c.Attribution
	}
	return o
}

// Viewport is the visible center and zoom.
type Viewport struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

// Popup is the summary shown for a marker.
type Popup struct {
	VenueID  int    `json:"venue_id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Location string `json:"location"`
	Details  string `json:"details"`
	Action   string `json:"action"`
}

// Lines returns the popup content, one field per line.
func (p Popup) Lines() []string {
	return []string{p.Title, p.Category, p.Location, p.Details, "[" + p.Action + "]"}
}

// PopupFor builds the popup of v.
func PopupFor(v models.Venue) Popup {
	rating := v.Rating.String()
	if rating == "" {
		rating = "N/A"
	}
	return Popup{
		VenueID:  v.ID,
		Title:    v.Name,
		Category: v.Icon() + " " + v.CategoryName,
		Location: "📍 " + v.LocationText(),
		Details:  "💰 " + v.PriceRange + " • ⭐ " + rating,
		Action:   "View Details",
	}
}

// Marker is a venue placed on the map.
type Marker struct {
	VenueID  int    `json:"venue_id"`
	Title    string `json:"title"`
	Position LatLng `json:"position"`
	Popup    Popup  `json:"popup"`
}

type instance struct {
	generation int
	view       Viewport
	markers    []Marker
	open       int
}

// Renderer owns the map instance. It is safe for concurrent use.
type Renderer struct {
	mu            sync.Mutex
	opts          Options
	m             *instance
	generations   int
	onMarkerClick func(venueID int)
	logger        *log.Logger
}

// New creates a renderer. Call [Renderer.Init] before use; [Renderer.SetVenues] initializes on demand.
func New(opts Options, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = DefaultOptions().MaxZoom
	}
	return &Renderer{opts: opts, logger: logger}
}

// OnMarkerClick registers the handler invoked by [Renderer.ClickMarker].
func (r *Renderer) OnMarkerClick(fn func(venueID int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onMarkerClick = fn
}

// Init creates the map centered on the default coordinate, destroying any existing instance.
func (r *Renderer) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initLocked()
}

func (r *Renderer) initLocked() {
	r.generations++
	r.m = &instance{
		generation: r.generations,
		view:       Viewport{Center: r.opts.Center, Zoom: r.clampZoom(r.opts.Zoom)},
		open:       -1,
	}
	r.logger.Debug("map initialized", "generation", r.generations, "center", r.opts.Center, "zoom", r.m.view.Zoom)
}

// Ready reports whether a map instance exists.
func (r *Renderer) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m != nil
}

// Generation identifies the current map instance; it changes on every [Renderer.Init].
func (r *Renderer) Generation() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		return 0
	}
	return r.m.generation
}

// SetVenues replaces every marker with one per venue that has finite coordinates and fits the
// viewport to them. With no placeable venue the viewport is left as it was.
//
// It returns the number of markers placed.
func (r *Renderer) SetVenues(venues []models.Venue) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.m == nil {
		r.initLocked()
	}

	r.m.markers = nil
	r.m.open = -1

	points := make([]LatLng, 0, len(venues))
	for _, v := range venues {
		lat, lng, ok := v.Position()
		if !ok {
			r.logger.Warn("invalid coordinates", "venue", v.Name, "id", v.ID)
			continue
		}
		pos := LatLng{Lat: lat, Lng: lng}
		r.m.markers = append(r.m.markers, Marker{VenueID: v.ID, Title: v.Name, Position: pos, Popup: PopupFor(v)})
		points = append(points, pos)
	}

	if b, ok := BoundsOf(points); ok {
		r.fitBoundsLocked(b)
	}
	return len(r.m.markers)
}

// FitBounds sets the viewport to show b with the configured padding, no closer than the fit zoom cap.
func (r *Renderer) FitBounds(b Bounds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		r.initLocked()
	}
	r.fitBoundsLocked(b)
}

func (r *Renderer) fitBoundsLocked(b Bounds) {
	zoom := boundsZoom(b, r.opts.Width, r.opts.Height, r.opts.FitPadding, r.opts.MaxZoom)
	if r.opts.FitMaxZoom > 0 {
		zoom = min(zoom, r.opts.FitMaxZoom)
	}
	r.m.view = Viewport{Center: boundsCenter(b, zoom), Zoom: zoom}
}

// Focus centers the map on lat,lng at the focus zoom and opens the popup of the marker at that
// position, if any. It returns the venue whose popup opened.
func (r *Renderer) Focus(lat, lng float64) (venueID int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.m == nil || math.IsNaN(lat) || math.IsNaN(lng) {
		return 0, false
	}

	r.m.view = Viewport{Center: LatLng{Lat: lat, Lng: lng}, Zoom: r.clampZoom(r.opts.FocusZoom)}

	// Opening a popup closes the previous one, so the last match wins.
	found := -1
	for i, m := range r.m.markers {
		if math.Abs(m.Position.Lat-lat) < FocusTolerance && math.Abs(m.Position.Lng-lng) < FocusTolerance {
			found = i
		}
	}
	if found < 0 {
		return 0, false
	}
	r.m.open = found
	return r.m.markers[found].VenueID, true
}

// FocusVenue focuses the marker of venueID. It is a no-op for venues without a marker.
func (r *Renderer) FocusVenue(venueID int) (int, bool) {
	m, ok := r.Marker(venueID)
	if !ok {
		return 0, false
	}
	return r.Focus(m.Position.Lat, m.Position.Lng)
}

// ClickMarker opens the popup of venueID's marker and notifies the click handler.
func (r *Renderer) ClickMarker(venueID int) bool {
	r.mu.Lock()
	if r.m == nil {
		r.mu.Unlock()
		return false
	}
	idx := r.indexLocked(venueID)
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	r.m.open = idx
	handler := r.onMarkerClick
	r.mu.Unlock()

	if handler != nil {
		handler(venueID)
	}
	return true
}

// ClosePopup closes the open popup.
func (r *Renderer) ClosePopup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m != nil {
		r.m.open = -1
	}
}

// OpenPopup returns the open popup.
func (r *Renderer) OpenPopup() (Popup, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil || r.m.open < 0 {
		return Popup{}, false
	}
	return r.m.markers[r.m.open].Popup, true
}

// Marker returns the marker of venueID.
func (r *Renderer) Marker(venueID int) (Marker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		return Marker{}, false
	}
	if idx := r.indexLocked(venueID); idx >= 0 {
		return r.m.markers[idx], true
	}
	return Marker{}, false
}

// Markers returns a copy of the marker set in list order.
func (r *Renderer) Markers() []Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		return nil
	}
	return append([]Marker(nil), r.m.markers...)
}

// View returns the current viewport.
func (r *Renderer) View() Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		return Viewport{Center: r.opts.Center, Zoom: r.clampZoom(r.opts.Zoom)}
	}
	return r.m.view
}

// Options returns the map options.
func (r *Renderer) Options() Options {
	return r.opts
}

// VisibleBounds returns the geographic area covered by the viewport.
func (r *Renderer) VisibleBounds() Bounds {
	v := r.View()
	c := Project(v.Center, float64(v.Zoom))
	hw, hh := float64(r.opts.Width)/2, float64(r.opts.Height)/2
	nw := Unproject(Point{X: c.X - hw, Y: c.Y - hh}, float64(v.Zoom))
	se := Unproject(Point{X: c.X + hw, Y: c.Y + hh}, float64(v.Zoom))
	return Bounds{SouthWest: LatLng{Lat: se.Lat, Lng: nw.Lng}, NorthEast: LatLng{Lat: nw.Lat, Lng: se.Lng}}
}

func (r *Renderer) indexLocked(venueID int) int {
	for i, m := range r.m.markers {
		if m.VenueID == venueID {
			return i
		}
	}
	return -1
}

func (r *Renderer) clampZoom(z int) int {
	return max(0, min(z, r.opts.MaxZoom))
}
