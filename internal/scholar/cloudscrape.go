// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/literature-aggregator/internal/httputil"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// cloudScrapeBase is the page-to-markdown conversion endpoint
// (Firecrawl-compatible). Package variable so tests can redirect it.
var cloudScrapeBase = "https://api.firecrawl.dev/v1/scrape"

// cloudScrapeBackend fetches a markdown rendering of a provider page
// from a remote conversion service.
type cloudScrapeBackend struct {
	apiKey    string
	userAgent string
	client    *http.Client
}

func newCloudScrapeBackend(cfg types.ScholarConfig) *cloudScrapeBackend {
	return &cloudScrapeBackend{
		apiKey:    cfg.CloudScrapeAPIKey,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (f *cloudScrapeBackend) name() string { return types.MethodCloudScrape }

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

func (f *cloudScrapeBackend) fetchPapers(ctx context.Context, pageURL string, max int) ([]types.Paper, error) {
	payload, err := json.Marshal(scrapeRequest{URL: pageURL, Formats: []string{"markdown"}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cloudScrapeBase, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, f.client, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedPayload, err)
	}
	if !sr.Success {
		return nil, fmt.Errorf("scrape service: %s", sr.Error)
	}

	papers := parseResultsMarkdown(sr.Data.Markdown, max)
	for i := range papers {
		papers[i].SearchMethod = types.MethodCloudScrape
	}
	return papers, nil
}

func (f *cloudScrapeBackend) close() error { return nil }
