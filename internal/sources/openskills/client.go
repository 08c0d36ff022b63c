// Package openskills downloads the public Open Skills taxonomy CSV. The
// source is strictly optional: every failure surfaces as a typed
// *sources.Error that the pipeline logs and then continues without.
package openskills

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"laborpulse/internal/config"
	"laborpulse/internal/sources"
	"laborpulse/pkg/contracts/domain"
)

// SourceName labels records fetched by this client.
const SourceName = "lightcast_open_skills"

// Client downloads and normalizes the Open Skills CSV.
type Client struct {
	url    string
	httpc  *http.Client
	logger *slog.Logger
}

// NewClient creates an Open Skills client from configuration.
func NewClient(cfg config.SkillsConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:    cfg.URL,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(slog.String("component", "openskills_client")),
	}
}

// FetchResult is the outcome of a successful taxonomy fetch.
type FetchResult struct {
	Skills  []domain.SkillRecord
	Dropped int
}

// Fetch downloads the taxonomy. Rows missing an id are dropped and counted.
func (c *Client) Fetch(ctx context.Context) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return FetchResult{}, sources.Transient(SourceName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode == http.StatusNotFound:
		return FetchResult{}, sources.NotFound(SourceName,
			fmt.Errorf("taxonomy CSV not found (HTTP %d)", resp.StatusCode))
	default:
		return FetchResult{}, sources.Transient(SourceName,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	result, err := c.parse(resp.Body)
	if err != nil {
		return FetchResult{}, sources.Transient(SourceName, err)
	}
	if result.Dropped > 0 {
		c.logger.WarnContext(ctx, "dropped malformed taxonomy rows",
			slog.Int("dropped", result.Dropped))
	}
	c.logger.InfoContext(ctx, "fetched skills taxonomy",
		slog.Int("skills", len(result.Skills)))
	return result, nil
}

// parse reads the upstream CSV. The header row maps column names to
// positions; the upstream schema has drifted before, so lookups are by name
// rather than index.
func (c *Client) parse(r io.Reader) (FetchResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return FetchResult{}, fmt.Errorf("read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["id"]; !ok {
		return FetchResult{}, fmt.Errorf("taxonomy CSV has no id column")
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var result FetchResult
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Dropped++
			continue
		}
		id := field(rec, "id")
		if id == "" {
			result.Dropped++
			continue
		}

		var altLabels []string
		if raw := field(rec, "alt_names"); raw != "" {
			for _, label := range strings.Split(raw, ";") {
				if label = strings.TrimSpace(label); label != "" {
					altLabels = append(altLabels, label)
				}
			}
		}

		result.Skills = append(result.Skills, domain.SkillRecord{
			SkillID:   id,
			Name:      field(rec, "name"),
			Category:  field(rec, "type"),
			AltLabels: altLabels,
			Source:    SourceName,
		})
	}
	return result, nil
}
