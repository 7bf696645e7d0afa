package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/shared"
	th "github.com/desertthunder/outside/internal/testing"
)

func sampleExport() *ResultsExport {
	query := models.SearchQuery{City: "Accra", Area: "Osu"}
	return NewResultsExport("Restaurants in Accra, Osu", "restaurant", query, 3, th.Venues())
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Name,Category,Area,City,Address,Latitude,Longitude,Price,Rating") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Buka Restaurant,Restaurants,Osu,Accra") {
			t.Errorf("CSV missing first venue, got: %s", output)
		}
		if !strings.Contains(output, "5.555800,-0.182300") {
			t.Errorf("CSV should keep API decimals verbatim, got: %s", output)
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Errorf("expected header and 3 rows, got %d lines", len(lines))
		}
	})

	t.Run("ExportToCSV invalid coordinate", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if !strings.Contains(string(data), "3,Chop Bar,Restaurants,,Accra,Unknown,,-0.2") {
			t.Errorf("expected empty latitude for venue 3, got: %s", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleExport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Restaurants in Accra, Osu",
			"**Showing 3 places**",
			"1. **Buka Restaurant** (🍽️ Restaurants)",
			"📍 Osu, Accra • 💰 ₵₵ • ⭐ 4.50",
			"🏠 10th Lane, Osu",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown empty", func(t *testing.T) {
		export := NewResultsExport("Bars in Tema", "bar", models.SearchQuery{City: "Tema"}, 0, nil)
		data, err := ExportToMarkdown(export)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "No venues found") || !strings.Contains(string(data), "**Showing 0 places**") {
			t.Errorf("unexpected empty output:\n%s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Restaurants in Accra, Osu\nShowing 3 places\n") {
			t.Errorf("unexpected header, got:\n%s", output)
		}
		if !strings.Contains(output, "2. 🍽️ Santoku") {
			t.Errorf("Text missing second venue")
		}
	})

	t.Run("Render JSON", func(t *testing.T) {
		data, err := Render(sampleExport(), FormatJSON)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		var decoded struct {
			Count   int `json:"count"`
			Results []struct {
				Latitude *string `json:"latitude"`
			} `json:"results"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Count != 3 || len(decoded.Results) != 3 {
			t.Errorf("unexpected decoded export %+v", decoded)
		}
		if decoded.Results[0].Latitude == nil || *decoded.Results[0].Latitude != "5.555800" {
			t.Errorf("expected latitude string, got %v", decoded.Results[0].Latitude)
		}
	})

	t.Run("Render unknown format", func(t *testing.T) {
		_, err := Render(sampleExport(), "xml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Markdown singular count", func(t *testing.T) {
		export := NewResultsExport("Cafes in Accra", "cafe", models.SearchQuery{City: "Accra"}, 0, th.Venues()[:1])
		data, err := ExportToMarkdown(export)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "**Showing 1 place**") {
			t.Errorf("expected singular count, got %s", data)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WithDefaultPath", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path, err := WriteExport(sampleExport(), FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "restaurant_accra_osu.csv" {
			t.Errorf("expected default filename, got %q", path)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Buka Restaurant") {
			t.Errorf("CSV missing venue data")
		}
	})

	t.Run("WithNestedPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "accra.md")

		got, err := WriteExport(sampleExport(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("InvalidFormatWritesNothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xml")
		if _, err := WriteExport(sampleExport(), "xml", path); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("WriteJSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		if err := WriteJSON(map[string]int{"tiles": 4}, path); err != nil {
			t.Fatalf("WriteJSON failed: %v", err)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, `"tiles": 4`) {
			t.Errorf("unexpected manifest %s", content)
		}
	})

	t.Run("Extension", func(t *testing.T) {
		for format, want := range map[string]string{"csv": ".csv", "markdown": ".md", "txt": ".txt", "json": ".json", "": ".json"} {
			if got := Extension(format); got != want {
				t.Errorf("Extension(%q) = %q, want %q", format, got, want)
			}
		}
	})
}
