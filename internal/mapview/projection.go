package mapview

import "math"

// TileSize is the edge length of a map tile in pixels.
const TileSize = 256

const maxLatitude = 85.0511287798

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point is a position in projected pixel space at some zoom level.
type Point struct {
	X, Y float64
}

// Bounds is a geographic bounding box.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// BoundsOf returns the smallest box containing every point. ok is false for an empty slice.
func BoundsOf(points []LatLng) (b Bounds, ok bool) {
	for i, p := range points {
		if i == 0 {
			b = Bounds{SouthWest: p, NorthEast: p}
			continue
		}
		b.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lng = math.Min(b.SouthWest.Lng, p.Lng)
		b.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lng = math.Max(b.NorthEast.Lng, p.Lng)
	}
	return b, len(points) > 0
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

func scale(zoom float64) float64 {
	return TileSize * math.Pow(2, zoom)
}

// Project converts a coordinate to Web Mercator pixel space at zoom.
func Project(ll LatLng, zoom float64) Point {
	lat := math.Max(math.Min(ll.Lat, maxLatitude), -maxLatitude)
	sin := math.Sin(lat * math.Pi / 180)
	s := scale(zoom)
	return Point{
		X: (ll.Lng + 180) / 360 * s,
		Y: (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * s,
	}
}

// Unproject converts a pixel position at zoom back to a coordinate.
func Unproject(p Point, zoom float64) LatLng {
	s := scale(zoom)
	n := math.Pi - 2*math.Pi*p.Y/s
	return LatLng{
		Lat: 180 / math.Pi * math.Atan(math.Sinh(n)),
		Lng: p.X/s*360 - 180,
	}
}

// boundsZoom returns the highest integer zoom at which b fits in a width x height viewport
// after subtracting padding from every side, clamped to [0, maxZoom].
func boundsZoom(b Bounds, width, height, padding, maxZoom int) int {
	const ref = 0.0
	nw := Project(LatLng{Lat: b.NorthEast.Lat, Lng: b.SouthWest.Lng}, ref)
	se := Project(LatLng{Lat: b.SouthWest.Lat, Lng: b.NorthEast.Lng}, ref)

	availX := float64(width - 2*padding)
	availY := float64(height - 2*padding)
	spanX := se.X - nw.X
	spanY := se.Y - nw.Y

	sx, sy := math.Inf(1), math.Inf(1)
	if spanX > 0 {
		sx = availX / spanX
	}
	if spanY > 0 {
		sy = availY / spanY
	}
	s := math.Min(sx, sy)
	if math.IsInf(s, 1) {
		return maxZoom
	}
	if s <= 0 {
		return 0
	}

	z := ref + math.Log2(s)
	z = math.Round(z*100) / 100
	zoom := int(math.Floor(z))
	return max(0, min(maxZoom, zoom))
}

// boundsCenter is the midpoint of b in projected space.
func boundsCenter(b Bounds, zoom int) LatLng {
	sw := Project(b.SouthWest, float64(zoom))
	ne := Project(b.NorthEast, float64(zoom))
	return Unproject(Point{X: (sw.X + ne.X) / 2, Y: (sw.Y + ne.Y) / 2}, float64(zoom))
}
