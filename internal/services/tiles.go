package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/shared"
	"golang.org/x/time/rate"
)

// TileService downloads slippy-map tile images.
//
// Requests are rate limited, and a failed tile is retried exactly once after the retry delay.
type TileService struct {
	client     *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	userAgent  string
	logger     *log.Logger
}

// NewTileService creates a tile downloader allowing perSecond requests per second.
func NewTileService(client *http.Client, perSecond float64, retryDelay time.Duration, userAgent string, logger *log.Logger) *TileService {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &TileService{
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		retryDelay: retryDelay,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Fetch downloads the tile at tileURL.
func (t *TileService) Fetch(ctx context.Context, tileURL string) ([]byte, error) {
	var data []byte
	attempts := 0

	op := func() error {
		attempts++
		body, err := t.fetchOnce(ctx, tileURL)
		if err != nil {
			return err
		}
		data = body
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(t.retryDelay), 1), ctx)
	notify := func(err error, wait time.Duration) {
		t.logger.Warn("tile load error, retrying", "url", tileURL, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("%w: %s after %d attempts: %v", shared.ErrTileFetch, tileURL, attempts, err)
	}
	return data, nil
}

func (t *TileService) fetchOnce(ctx context.Context, tileURL string) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tileURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile: %w", err)
	}
	return body, nil
}
