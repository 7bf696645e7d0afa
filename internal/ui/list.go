package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/outside/internal/models"
)

var (
	_ list.Item         = categoryItem{}
	_ list.Item         = venueItem{}
	_ list.ItemDelegate = venueDelegate{}
)

// categoryItem wraps [models.Category] to implement [list.Item].
type categoryItem struct {
	category models.Category
}

func (i categoryItem) FilterValue() string { return i.category.Name }
func (i categoryItem) Title() string       { return i.category.Glyph() + " " + i.category.Name }
func (i categoryItem) Description() string {
	if i.category.Description != "" {
		return i.category.Description
	}
	return i.category.Slug
}

// venueItem wraps [models.Venue] to implement [list.Item].
type venueItem struct {
	venue models.Venue
}

func (i venueItem) FilterValue() string { return i.venue.Name }

// venueDelegate draws result cards with their marker glyph and the cross-highlight from the map.
type venueDelegate struct {
	m *Model
}

func (d venueDelegate) Height() int                         { return 2 }
func (d venueDelegate) Spacing() int                        { return 1 }
func (d venueDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d venueDelegate) Render(w io.Writer, l list.Model, index int, item list.Item) {
	v, ok := item.(venueItem)
	if !ok {
		return
	}

	glyph := "-"
	if g, ok := d.m.glyphs[v.venue.ID]; ok {
		glyph = string(g)
	}

	title := fmt.Sprintf("[%s] %s %s", glyph, v.venue.Icon(), v.venue.Name)
	switch {
	case v.venue.ID == d.m.search.Highlight:
		title = styles.highlight.Render("▶ " + title)
	case index == l.Index():
		title = styles.ok.Render("› " + title)
	default:
		title = "  " + title
	}

	fmt.Fprintf(w, "%s\n%s", title, styles.help.Render(strings.Repeat(" ", 4)+v.venue.Summary()))
}

func categoryItems(categories []models.Category) []list.Item {
	items := make([]list.Item, len(categories))
	for i, c := range categories {
		items[i] = categoryItem{category: c}
	}
	return items
}

func venueItems(venues []models.Venue) []list.Item {
	items := make([]list.Item, len(venues))
	for i, v := range venues {
		items[i] = venueItem{venue: v}
	}
	return items
}
