package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/outside/internal/formatter"
	"github.com/desertthunder/outside/internal/mapview"
	"github.com/desertthunder/outside/internal/shared"
	"github.com/desertthunder/outside/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Size of the character map printed by search --map.
const (
	mapCols = 72
	mapRows = 20
)

// Categories lists the venue categories, falling back to the built-in table when the API is unreachable.
func (r *Runner) Categories(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	categories := r.ctrl.Search.LoadCategories(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}

	r.writePlainHeader("Categories")
	for _, c := range categories {
		r.writePlain("%s %-16s %s\n", c.Glyph(), c.Name, c.Slug)
	}
	return nil
}

// Search runs a venue search for the category and location arguments.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	state, err := r.runSearch(ctx, cmd.StringArg("category"), cmd.StringArg("location"))
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		return r.exportResults(state, cmd.String("format"), path)
	}
	if cmd.Bool("json") {
		return r.writeJSON(resultsExport(state), cmd.Bool("pretty"))
	}

	r.printResults(state)
	if cmd.Bool("map") && !state.Empty() {
		r.printMap()
	}
	return nil
}

// History lists recent searches, or reruns one of them with --repeat.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	history := r.ctrl.Search.State().History
	if n := cmd.Int("repeat"); n != 0 {
		if n < 1 || n > len(history) {
			return fmt.Errorf("%w: --repeat must be between 1 and %d", shared.ErrInvalidFlag, len(history))
		}
		if _, err := r.ctrl.Search.RepeatHistory(ctx, n-1); err != nil {
			return err
		}
		r.printResults(r.ctrl.Search.State())
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(history, true)
	}

	if len(history) == 0 {
		return r.writePlain("No recent searches\n")
	}
	r.writePlainHeader("Recent searches")
	for i, h := range history {
		r.writePlain("%d. %s\n", i+1, h.Label())
	}
	return nil
}

// Venue prints the details of one venue.
func (r *Runner) Venue(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	arg := cmd.StringArg("id")
	if arg == "" {
		return fmt.Errorf("%w: venue id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: venue id must be a positive integer, got %q", shared.ErrInvalidArgument, arg)
	}

	view, err := r.ctrl.Detail.Show(ctx, id)
	if err != nil {
		return fmt.Errorf("venue %d: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}
	r.printVenue(view)

	if cmd.Bool("directions") {
		if view.DirectionsURL == "" {
			return fmt.Errorf("%w: venue %d has no coordinates", shared.ErrInvalidArgument, id)
		}
		r.logger.Info("opening directions", "url", view.DirectionsURL)
		if err := r.openURL(view.DirectionsURL); err != nil {
			return fmt.Errorf("could not open directions: %w", err)
		}
	}
	return nil
}

// MapTiles searches, fits the map to the results and downloads the tiles covering the view.
func (r *Runner) MapTiles(ctx context.Context, cmd *cli.Command) error {
	state, err := r.runSearch(ctx, cmd.StringArg("category"), cmd.StringArg("location"))
	if err != nil {
		return err
	}
	if state.Empty() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidArgument, tasks.MsgNoVenues)
	}

	tiles := r.renderer.Tiles()
	r.writePlain("Downloading %d tiles for %s...\n\n", len(tiles), state.Title)

	progressCh := make(chan tasks.ProgressUpdate, len(tiles)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	result, err := tasks.ExportTiles(ctx, progressCh, r.tiles, tiles, tasks.TileExportOpts{
		Template:   r.renderer.Options().TileURL,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Tiles downloaded")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Success rate: %d/%d\n", result.SuccessfulTiles, result.TotalTiles)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	r.writePlain("%s\n", r.renderer.Attribution())

	if result.FailedTiles > 0 {
		return fmt.Errorf("%w: %d of %d tiles failed", shared.ErrTileFetch, result.FailedTiles, result.TotalTiles)
	}
	return nil
}

// runSearch resolves the category against the catalog and searches. Unknown categories are sent
// to the API as given.
func (r *Runner) runSearch(ctx context.Context, category, location string) (tasks.SearchState, error) {
	if err := r.requireAPI(); err != nil {
		return tasks.SearchState{}, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return tasks.SearchState{}, fmt.Errorf("%w: category", shared.ErrMissingArgument)
	}

	r.ctrl.Search.LoadCategories(ctx)
	if c, ok := r.ctrl.Search.FindCategory(category); ok {
		r.ctrl.Search.SelectCategory(c.Slug, c.Glyph(), c.Name)
	} else {
		r.logger.Warn("unknown category, searching anyway", "category", category)
		r.ctrl.Search.SelectCategory(category, "", category)
	}
	r.ctrl.Search.SetLocation(location)

	if _, err := r.ctrl.Search.Search(ctx); err != nil {
		return tasks.SearchState{}, err
	}
	return r.ctrl.Search.State(), nil
}

func resultsExport(state tasks.SearchState) *formatter.ResultsExport {
	return formatter.NewResultsExport(state.Title, state.Selection.Category, state.Query, state.Count, state.Venues)
}

func (r *Runner) exportResults(state tasks.SearchState, format, path string) error {
	written, err := formatter.WriteExport(resultsExport(state), format, path)
	if err != nil {
		return err
	}
	r.logger.Info("results exported", "path", written, "format", format)
	return r.writePlain("✓ %s written to %s\n", state.CountText(), written)
}

func (r *Runner) printResults(state tasks.SearchState) {
	r.writePlainHeader(state.Title)
	r.writePlain("%s\n", state.CountText())

	if state.Empty() {
		r.writePlainln("🔍 %s", tasks.MsgNoVenues)
		r.writePlain("%s\n", tasks.MsgNoVenuesHint)
		return
	}

	glyphs := make(map[int]rune)
	for i, m := range r.renderer.Markers() {
		glyphs[m.VenueID] = mapview.Glyph(i)
	}

	r.writePlain("\n")
	for _, v := range state.Venues {
		glyph := "-"
		if g, ok := glyphs[v.ID]; ok {
			glyph = string(g)
		}
		r.writePlain("[%s] %s %s (#%d)\n    %s\n", glyph, v.Icon(), v.Name, v.ID, v.Summary())
	}
}

func (r *Runner) printMap() {
	r.writePlain("\n%s\n%s\n", r.renderer.Render(mapCols, mapRows), r.renderer.Attribution())
}

func (r *Runner) printVenue(d tasks.DetailView) {
	r.writePlainHeader(fmt.Sprintf("%s %s", d.Icon, d.Name))
	r.writePlain("%s\n\n%s\n\n", d.CategoryName, d.Description)

	for _, row := range d.Fields() {
		r.writePlain("%-16s %s\n", row[0], row[1])
	}
	if len(d.Amenities) > 0 {
		r.writePlainln("Amenities: %s", strings.Join(d.Amenities, "  "))
	}
	if d.DirectionsURL != "" {
		r.writePlain("\n🧭 Directions: %s\n", d.DirectionsURL)
	}
}
