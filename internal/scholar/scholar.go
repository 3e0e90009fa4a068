// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar implements the Google Scholar adapter. The provider has
// no API, so results come from its search pages through one of two
// backends: a shared headless browser that renders the page and a
// cloud-scrape service that returns a markdown rendering. Either backend
// can serve any call; a failure triggers one immediate retry on the
// other backend, and the next call starts from the configured choice
// again.
package scholar

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/literature-aggregator/internal/httputil"
	"github.com/pdiddy/literature-aggregator/internal/ratelimit"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// scholarBase is the provider search URL. Package variable so tests can
// redirect it.
var scholarBase = "https://scholar.google.com/scholar"

const (
	defaultTimeout     = 15 * time.Second
	defaultNavTimeout  = 30 * time.Second
	defaultMaxResults  = 10
	defaultMinInterval = 2 * time.Second
)

// SearchOptions narrow a search.
type SearchOptions struct {
	MaxResults int
	YearFrom   int
	YearTo     int

	// SortBy is "relevance" (default), "date", or "citations". The
	// provider only exposes a date toggle; citation ordering is left to
	// the caller.
	SortBy string

	// PreferBackend overrides the configured backend choice for this
	// call: "browser" or "cloudscrape". Empty uses the configuration.
	PreferBackend string
}

// backend fetches and parses one provider page. Both implementations
// produce the same canonical shape.
type backend interface {
	name() string
	fetchPapers(ctx context.Context, pageURL string, max int) ([]types.Paper, error)
	close() error
}

// Scholar is the scrape adapter. Create one with New and release it with
// Close; it is safe for concurrent use.
type Scholar struct {
	cfg     types.ScholarConfig
	limiter *ratelimit.Limiter
	warn    io.Writer

	browser backend
	cloud   backend // nil unless an API key is configured
}

// New returns a Scholar with defaults applied to the zero fields of cfg.
// The headless browser is not launched until the first call that needs
// it. Warnings are written to warn; pass nil to discard them.
func New(cfg types.ScholarConfig, warn io.Writer) *Scholar {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = httputil.DefaultUserAgent
	}
	if warn == nil {
		warn = io.Discard
	}

	s := &Scholar{
		cfg:     cfg,
		limiter: ratelimit.New(cfg.MinInterval),
		warn:    warn,
		browser: newBrowserBackend(cfg),
	}
	if cfg.CloudScrapeAPIKey != "" {
		s.cloud = newCloudScrapeBackend(cfg)
	}
	return s
}

// CloudScrapeConfigured reports whether the cloud-scrape backend is
// available.
func (s *Scholar) CloudScrapeConfigured() bool {
	return s.cloud != nil
}

// Search queries the provider and parses up to MaxResults records.
func (s *Scholar) Search(ctx context.Context, query string, opts SearchOptions) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("scholar: empty query")
	}
	max := opts.MaxResults
	if max <= 0 {
		max = s.cfg.MaxResults
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.fetchPapers(ctx, buildSearchURL(query, opts), max, opts.PreferBackend)
}

// Details returns the first result for a title query.
func (s *Scholar) Details(ctx context.Context, title string) (*types.Paper, error) {
	papers, err := s.Search(ctx, title, SearchOptions{MaxResults: 1})
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, types.NewNotFoundError("paper", title)
	}
	return &papers[0], nil
}

// CitationCount returns the "Cited by" count of the first result for a
// title query. The count is always present on parsed records, so found
// is true whenever the paper exists.
func (s *Scholar) CitationCount(ctx context.Context, title string) (count int, found bool, err error) {
	p, err := s.Details(ctx, title)
	if err != nil {
		return 0, false, err
	}
	return p.Citations, true, nil
}

// Related searches for the paper's title and returns other results from
// the same page, excluding the paper itself.
func (s *Scholar) Related(ctx context.Context, title string, max int) ([]types.Paper, error) {
	if max <= 0 {
		max = s.cfg.MaxResults
	}
	papers, err := s.Search(ctx, title, SearchOptions{MaxResults: max + 1})
	if err != nil {
		return nil, err
	}
	related := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if strings.EqualFold(strings.TrimSpace(p.Title), strings.TrimSpace(title)) {
			continue
		}
		related = append(related, p)
		if len(related) >= max {
			break
		}
	}
	return related, nil
}

// Close releases the shared browser process. It must be called after all
// in-flight operations complete; calling it without a launched browser is
// a no-op.
func (s *Scholar) Close() error {
	err := s.browser.close()
	if s.cloud != nil {
		if cerr := s.cloud.close(); err == nil {
			err = cerr
		}
	}
	return err
}

// fetchPapers runs one operation through the backend state machine: the
// initial backend comes from configuration, a failure triggers exactly
// one retry on the other backend, and nothing is remembered across
// calls.
func (s *Scholar) fetchPapers(ctx context.Context, pageURL string, max int, prefer string) ([]types.Paper, error) {
	state := initialState(s.cloud != nil, s.preferCloud(prefer))

	primary := s.backendFor(state)
	papers, err := primary.fetchPapers(ctx, pageURL, max)
	if err == nil {
		return papers, nil
	}

	fallback := s.backendFor(nextState(state))
	if fallback == nil {
		return nil, types.NewSourceError(types.SourceScholar, "fetch", 0, err)
	}

	fmt.Fprintf(s.warn, "warning: scholar: %s backend failed (%v), retrying with %s\n", primary.name(), err, fallback.name())
	papers, fbErr := fallback.fetchPapers(ctx, pageURL, max)
	if fbErr != nil {
		return nil, types.NewSourceError(types.SourceScholar, "fetch", 0,
			fmt.Errorf("%s: %v; %s: %v", primary.name(), err, fallback.name(), fbErr))
	}
	return papers, nil
}

func (s *Scholar) preferCloud(override string) bool {
	switch override {
	case types.MethodCloudScrape:
		return true
	case types.MethodBrowser:
		return false
	}
	return s.cfg.PreferCloudScrape
}

func (s *Scholar) backendFor(st backendState) backend {
	if st == stateCloudScrape {
		return s.cloud
	}
	return s.browser
}

// backendState identifies which backend serves the current call.
type backendState int

const (
	stateBrowser backendState = iota
	stateCloudScrape
)

// initialState picks the backend for a fresh call: cloud scrape iff it
// is configured and preferred, the browser otherwise.
func initialState(cloudConfigured, preferCloud bool) backendState {
	if cloudConfigured && preferCloud {
		return stateCloudScrape
	}
	return stateBrowser
}

// nextState returns the other backend after a failure.
func nextState(st backendState) backendState {
	if st == stateCloudScrape {
		return stateBrowser
	}
	return stateCloudScrape
}

// buildSearchURL encodes the query, year range, and sort order into a
// provider search URL.
func buildSearchURL(query string, opts SearchOptions) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en")
	if opts.YearFrom > 0 {
		params.Set("as_ylo", strconv.Itoa(opts.YearFrom))
	}
	if opts.YearTo > 0 {
		params.Set("as_yhi", strconv.Itoa(opts.YearTo))
	}
	if opts.SortBy == "date" {
		params.Set("scisbd", "1")
	}
	return scholarBase + "?" + params.Encode()
}
