package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/outside/internal/tasks"
)

const appTitle = "📍 outside"

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	var keys []key.Binding

	switch m.view {
	case CategoryView:
		body = m.renderCategories()
		keys = []key.Binding{m.keys.enter, m.keys.repeat, m.keys.results}
		if m.session.Authenticated {
			keys = append(keys, m.keys.logout)
		} else {
			keys = append(keys, m.keys.login, m.keys.signup)
		}
	case LocationView:
		body = m.renderLocation()
		keys = []key.Binding{m.keys.enter, m.keys.back}
	case ResultsView:
		body = m.renderResults()
		keys = []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.marker, m.keys.search, m.keys.back}
	case VenueView:
		body = m.renderVenue()
		keys = []key.Binding{m.keys.directions, m.keys.back}
	case LoginView, SignupView:
		body = m.renderForm()
		keys = []key.Binding{m.keys.next, m.keys.enter, m.keys.back}
	}
	keys = append(keys, m.keys.quit)

	sections := []string{m.renderHeader()}
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, body)
	if status := m.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, m.help.ShortHelpView(keys))

	return strings.Join(sections, "\n\n")
}

func (m *Model) renderHeader() string {
	nav := strings.Join(m.session.Actions, " · ")
	if m.session.Authenticated {
		nav = fmt.Sprintf("(%s) %s · %s", m.session.Initial, m.session.Greeting, nav)
	}
	return styles.title.UnsetMarginBottom().Render(appTitle) + "  " + styles.help.Render(nav)
}

func (m *Model) renderBanner() string {
	if m.banner == nil {
		return ""
	}
	style, ok := styles.banner[m.banner.Kind]
	if !ok {
		style = NewBanner("#7D56F4")
	}
	return style.Render(m.banner.Kind.Glyph() + " " + m.banner.Message)
}

func (m *Model) renderStatus() string {
	switch {
	case m.search.Loading:
		return m.spinner.View() + " Searching for venues..."
	case m.status != "":
		return styles.help.Render(m.status)
	}
	return ""
}

func (m *Model) renderCategories() string {
	var b strings.Builder
	b.WriteString(m.categories.View())

	if len(m.search.History) > 0 {
		b.WriteString("\n\n" + styles.title.Render("Recent searches"))
		for i, h := range m.search.History {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, h.Label())
		}
	}
	return b.String()
}

func (m *Model) renderLocation() string {
	sel := m.search.Selection
	title := styles.title.Render(fmt.Sprintf("%s Where should we look for %s?", sel.CategoryIcon, sel.CategoryName))
	return title + "\n" + m.location.View() + "\n\n" + styles.help.Render("Enter a city, optionally followed by a comma and an area.")
}

func (m *Model) renderResults() string {
	header := styles.title.Render(m.search.Title) + "\n" + styles.help.Render(m.search.CountText())

	if m.search.Empty() {
		return header + "\n\n" + styles.warn.Render("🔍 "+tasks.MsgNoVenues) + "\n" + styles.help.Render(tasks.MsgNoVenuesHint)
	}

	left := lipgloss.NewStyle().Width(m.listWidth()).Render(m.venues.View())
	return header + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderMap())
}

// renderMap draws the marker grid, the open popup and the tile attribution.
func (m *Model) renderMap() string {
	cols := max(m.width-m.listWidth()-8, 20)
	rows := max(m.height-16, 8)

	var b strings.Builder
	b.WriteString(m.renderer.Render(cols, rows))

	if p, ok := m.renderer.OpenPopup(); ok {
		lines := p.Lines()
		b.WriteString("\n\n" + styles.ok.Render(lines[0]))
		for _, line := range lines[1:] {
			b.WriteString("\n" + line)
		}
	}
	b.WriteString("\n" + styles.help.Render(m.renderer.Attribution()))

	return styles.pane.Render(b.String())
}

func (m *Model) renderVenue() string {
	d := m.detail
	switch d.Status {
	case tasks.DetailLoading:
		return m.spinner.View() + " " + d.Message
	case tasks.DetailFailed:
		return styles.err.Render("❌ " + d.Message)
	case tasks.DetailClosed:
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s %s", d.Icon, d.Name)))
	b.WriteString("\n" + styles.help.Render(d.CategoryName))
	b.WriteString("\n\n" + d.Description + "\n")

	for _, row := range d.Fields() {
		fmt.Fprintf(&b, "\n%-12s %s", row[0], row[1])
	}

	if len(d.Amenities) > 0 {
		b.WriteString("\n\n" + styles.ok.Render("Amenities") + "\n  " + strings.Join(d.Amenities, "  "))
	}
	if d.DirectionsURL != "" {
		b.WriteString("\n\n" + styles.help.Render("🧭 "+d.DirectionsURL))
	}
	return b.String()
}

func (m *Model) renderForm() string {
	title := "Login"
	if m.form.signup {
		title = "Create an account"
	}
	return styles.title.Render(title) + "\n" + m.form.view()
}
