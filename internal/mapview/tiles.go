package mapview

import (
	"math"
	"strconv"
	"strings"
)

const subdomains = "abc"

// Tile addresses one slippy-map tile.
type Tile struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

// TileURL expands a template such as "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png".
// The {s} subdomain rotates over a, b and c by tile position.
func TileURL(template string, t Tile) string {
	s := string(subdomains[((t.X+t.Y)%len(subdomains)+len(subdomains))%len(subdomains)])
	return strings.NewReplacer(
		"{s}", s,
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	).Replace(template)
}

// Tiles lists the tiles covering the viewport, row by row. Columns wrap around the antimeridian
// and rows outside the world are dropped.
func (r *Renderer) Tiles() []Tile {
	v := r.View()
	z := float64(v.Zoom)
	c := Project(v.Center, z)
	hw, hh := float64(r.opts.Width)/2, float64(r.opts.Height)/2

	minX := int(math.Floor((c.X - hw) / TileSize))
	maxX := int(math.Floor((c.X + hw - 1) / TileSize))
	minY := int(math.Floor((c.Y - hh) / TileSize))
	maxY := int(math.Floor((c.Y + hh - 1) / TileSize))

	n := 1 << v.Zoom
	seen := make(map[Tile]bool)
	var tiles []Tile
	for y := max(minY, 0); y <= min(maxY, n-1); y++ {
		for x := minX; x <= maxX; x++ {
			t := Tile{Z: v.Zoom, X: ((x % n) + n) % n, Y: y}
			if seen[t] {
				continue
			}
			seen[t] = true
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// TileURLs expands the tile template for every visible tile.
func (r *Renderer) TileURLs() []string {
	tiles := r.Tiles()
	urls := make([]string, len(tiles))
	for i, t := range tiles {
		urls[i] = TileURL(r.opts.TileURL, t)
	}
	return urls
}

// Attribution is the credit line for the tile imagery.
func (r *Renderer) Attribution() string {
	return r.opts.Attribution
}
