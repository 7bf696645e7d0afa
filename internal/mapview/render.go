package mapview

import (
	"strings"
)

const markerGlyphs = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Glyph returns the character drawn for the i-th marker.
func Glyph(i int) rune {
	if i < 0 || i >= len(markerGlyphs) {
		return '*'
	}
	return rune(markerGlyphs[i])
}

// Render draws the viewport as a cols x rows character grid. Markers are drawn with their list
// index glyph, the marker with the open popup as '@', and markers outside the viewport are omitted.
func (r *Renderer) Render(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	r.mu.Lock()
	var (
		markers []Marker
		open    = -1
	)
	if r.m != nil {
		markers = append(markers, r.m.markers...)
		open = r.m.open
	}
	r.mu.Unlock()

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat("·", cols))
	}

	v := r.View()
	z := float64(v.Zoom)
	c := Project(v.Center, z)
	w, h := float64(r.opts.Width), float64(r.opts.Height)

	place := func(i int, glyph rune) {
		p := Project(markers[i].Position, z)
		fx := (p.X - c.X + w/2) / w
		fy := (p.Y - c.Y + h/2) / h
		if fx < 0 || fx >= 1 || fy < 0 || fy >= 1 {
			return
		}
		grid[int(fy*float64(rows))][int(fx*float64(cols))] = glyph
	}

	for i := range markers {
		if i != open {
			place(i, Glyph(i))
		}
	}
	if open >= 0 && open < len(markers) {
		place(open, '@')
	}

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}
