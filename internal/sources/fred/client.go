// Package fred implements the observations client for the FRED API
// (https://api.stlouisfed.org/fred/series/observations). Responses are
// parsed into month-aligned observations; rows carrying the "." missing
// placeholder or otherwise unparseable values are dropped individually and
// counted, never failed as a batch.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"laborpulse/internal/config"
	"laborpulse/internal/sources"
	"laborpulse/pkg/contracts/domain"
)

// Client fetches series observations from a FRED-compatible endpoint.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a FRED client from configuration.
func NewClient(cfg config.FREDConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(slog.String("component", "fred_client")),
	}
}

// FetchResult is the outcome of a successful series fetch.
type FetchResult struct {
	Observations []domain.SeriesObservation
	// Dropped counts rows whose date or value could not be parsed,
	// including FRED's "." placeholder for missing values.
	Dropped int
}

// observationsResponse mirrors the FRED JSON payload. Dates and values are
// strings on the wire; "." marks a missing value.
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchSeries fetches all observations of one series. Failures come back as
// *sources.Error so the caller can apply its mandatory-versus-optional
// policy; a fetch either succeeds for the whole series or contributes
// nothing.
func (c *Client) FetchSeries(ctx context.Context, seriesID string) (FetchResult, error) {
	reqURL, err := c.observationsURL(seriesID)
	if err != nil {
		return FetchResult{}, fmt.Errorf("build request URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return FetchResult{}, sources.Transient(seriesID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		// FRED answers 400 for unknown series ids.
		return FetchResult{}, sources.NotFound(seriesID,
			fmt.Errorf("series not found (HTTP %d)", resp.StatusCode))
	default:
		return FetchResult{}, sources.Transient(seriesID,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, sources.Transient(seriesID, fmt.Errorf("read body: %w", err))
	}

	var payload observationsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return FetchResult{}, sources.Transient(seriesID, fmt.Errorf("decode payload: %w", err))
	}

	result := c.parseObservations(seriesID, payload)
	if result.Dropped > 0 {
		c.logger.WarnContext(ctx, "dropped malformed observations",
			slog.String("series_id", seriesID),
			slog.Int("dropped", result.Dropped))
	}
	c.logger.InfoContext(ctx, "fetched series",
		slog.String("series_id", seriesID),
		slog.Int("observations", len(result.Observations)))
	return result, nil
}

func (c *Client) parseObservations(seriesID string, payload observationsResponse) FetchResult {
	var result FetchResult
	for _, row := range payload.Observations {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			result.Dropped++
			continue
		}
		value, err := strconv.ParseFloat(row.Value, 64)
		if err != nil {
			// "." is FRED's explicit missing marker; anything else
			// unparseable is treated the same way.
			result.Dropped++
			continue
		}
		result.Observations = append(result.Observations, domain.SeriesObservation{
			SeriesID: seriesID,
			Date:     domain.MonthOf(date),
			Value:    value,
		})
	}
	return result
}

func (c *Client) observationsURL(seriesID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("series_id", seriesID)
	q.Set("file_type", "json")
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
