package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/outside/internal/formatter"
	"github.com/desertthunder/outside/internal/mapview"
	"github.com/desertthunder/outside/internal/shared"
)

// TileFetcher downloads one tile image. [services.TileService] rate limits and retries.
type TileFetcher interface {
	Fetch(ctx context.Context, tileURL string) ([]byte, error)
}

// TileExportOpts configures a tile download.
type TileExportOpts struct {
	Template   string // URL template with {s}, {z}, {x}, {y}
	OutputDir  string // Base output directory (default: tiles_{epoch})
	NumWorkers int    // Concurrent workers (default: 2)
}

// TileExportResult reports one downloaded tile.
type TileExportResult struct {
	Tile    mapview.Tile `json:"tile"`
	URL     string       `json:"url"`
	File    string       `json:"file,omitempty"`
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
}

// TileExport summarizes a tile download.
type TileExport struct {
	TotalTiles      int                `json:"total_tiles"`
	SuccessfulTiles int                `json:"successful_tiles"`
	FailedTiles     int                `json:"failed_tiles"`
	OutputDirectory string             `json:"output_directory"`
	ManifestPath    string             `json:"-"`
	Results         []TileExportResult `json:"results"`
}

type tileJob struct {
	tile mapview.Tile
	url  string
}

func tileUpdate(step, total int, res TileExportResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %d/%d/%d", step, total, res.Tile.Z, res.Tile.X, res.Tile.Y)
	if !res.Success {
		msg = fmt.Sprintf("[%d/%d] ✗ %d/%d/%d: %s", step, total, res.Tile.Z, res.Tile.X, res.Tile.Y, res.Error)
	}
	return ProgressUpdate{Phase: DownloadTiles, Step: step, Total: total, Message: msg, Done: step == total, Data: res}
}

// ExportTiles downloads tiles into {dir}/{z}/{x}/{y}.png with a small worker pool and writes a
// manifest. Individual failures are recorded rather than aborting the export.
func ExportTiles(ctx context.Context, prog chan<- ProgressUpdate, fetcher TileFetcher, tiles []mapview.Tile, opts TileExportOpts) (*TileExport, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: tile fetcher not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Template == "" {
		opts.Template = mapview.DefaultOptions().TileURL
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("tiles_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &TileExport{
		TotalTiles:      len(tiles),
		OutputDirectory: opts.OutputDir,
		Results:         make([]TileExportResult, 0, len(tiles)),
	}

	jobs := make(chan tileJob)
	results := make(chan TileExportResult, len(tiles))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go tileWorker(ctx, &wg, fetcher, opts.OutputDir, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, t := range tiles {
			select {
			case <-ctx.Done():
				return
			case jobs <- tileJob{tile: t, url: mapview.TileURL(opts.Template, t)}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Success {
			result.SuccessfulTiles++
		} else {
			result.FailedTiles++
		}
		sendProgress(prog, tileUpdate(completed, len(tiles), res))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "tiles_manifest.json")
	if err := formatter.WriteJSON(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func tileWorker(ctx context.Context, wg *sync.WaitGroup, fetcher TileFetcher, dir string, jobs <-chan tileJob, results chan<- TileExportResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- downloadTile(ctx, fetcher, dir, job)
	}
}

func downloadTile(ctx context.Context, fetcher TileFetcher, dir string, job tileJob) TileExportResult {
	res := TileExportResult{Tile: job.tile, URL: job.url}

	data, err := fetcher.Fetch(ctx, job.url)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	tileDir := filepath.Join(dir, strconv.Itoa(job.tile.Z), strconv.Itoa(job.tile.X))
	if err := os.MkdirAll(tileDir, 0755); err != nil {
		res.Error = fmt.Sprintf("failed to create tile directory: %v", err)
		return res
	}

	path := filepath.Join(tileDir, strconv.Itoa(job.tile.Y)+".png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		res.Error = fmt.Sprintf("failed to write tile: %v", err)
		return res
	}

	res.File = path
	res.Success = true
	return res
}
