// package formatter renders venue search results as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the accepted values of --format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ResultsExport is a search result ready to be written out.
type ResultsExport struct {
	Title    string         `json:"title"`
	Category string         `json:"category"`
	City     string         `json:"city"`
	Area     string         `json:"area,omitempty"`
	Count    int            `json:"count"`
	Venues   []models.Venue `json:"results"`
}

// NewResultsExport builds an export for venues found in category at query.
func NewResultsExport(title, category string, query models.SearchQuery, count int, venues []models.Venue) *ResultsExport {
	if count < len(venues) {
		count = len(venues)
	}
	return &ResultsExport{Title: title, Category: category, City: query.City, Area: query.Area, Count: count, Venues: venues}
}

// ExportToCSV writes one row per venue with columns: ID, Name, Category, Area, City, Address, Latitude, Longitude, Price, Rating
func ExportToCSV(export *ResultsExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Category", "Area", "City", "Address", "Latitude", "Longitude", "Price", "Rating"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range export.Venues {
		record := []string{
			strconv.Itoa(v.ID),
			v.Name,
			v.CategoryName,
			v.Area,
			v.City,
			v.Address,
			v.Latitude.String(),
			v.Longitude.String(),
			v.PriceRange,
			v.Rating.String(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading, the count line and a numbered venue list
func ExportToMarkdown(export *ResultsExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	fmt.Fprintf(&buf, "**%s**\n\n", models.CountText(export.Count))

	if len(export.Venues) == 0 {
		buf.WriteString("No venues found\n\nTry searching in a different location\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Venues\n\n")
	for i, v := range export.Venues {
		fmt.Fprintf(&buf, "%d. **%s** (%s %s)\n", i+1, v.Name, v.Icon(), v.CategoryName)
		fmt.Fprintf(&buf, "   %s\n", v.Summary())
		if v.Address != "" {
			fmt.Fprintf(&buf, "   🏠 %s\n", v.Address)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders the title, count and one line per venue
func ExportToText(export *ResultsExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title)
	fmt.Fprintf(&buf, "%s\n\n", models.CountText(export.Count))

	for i, v := range export.Venues {
		fmt.Fprintf(&buf, "%d. %s %s\n   %s\n", i+1, v.Icon(), v.Name, v.Summary())
	}

	return buf.Bytes(), nil
}

// Render encodes export in format. Unknown formats are rejected.
func Render(export *ResultsExport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown, "md":
		return ExportToMarkdown(export)
	case FormatText, "text":
		return ExportToText(export)
	case FormatJSON, "":
		return shared.MarshalJSON(export, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
	}
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown, "md":
		return ".md"
	case FormatText, "text":
		return ".txt"
	default:
		return ".json"
	}
}

// WriteExport renders export in format and writes it to path, creating parent directories.
//
// Defaults to {category}_{city}{ext} in the working directory.
func WriteExport(export *ResultsExport, format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(export, format)
	}

	data, err := Render(export, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// DefaultFilename is {category}_{city}[_{area}]{ext}, lower-cased with spaces replaced.
func DefaultFilename(export *ResultsExport, format string) string {
	parts := []string{export.Category, export.City}
	if export.Area != "" {
		parts = append(parts, export.Area)
	}
	name := strings.ToLower(strings.Join(parts, "_"))
	name = strings.NewReplacer(" ", "-", "/", "-").Replace(name)
	return name + Extension(format)
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}
