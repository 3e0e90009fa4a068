// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate queries the configured sources and returns unified,
// deduplicated results. Source failures are warnings, not errors: each
// source contributes what it can, and only an explicitly requested
// single source propagates its failure to the caller.
package aggregate

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/literature-aggregator/internal/arxiv"
	"github.com/pdiddy/literature-aggregator/internal/cache"
	"github.com/pdiddy/literature-aggregator/internal/prefs"
	"github.com/pdiddy/literature-aggregator/internal/pubmed"
	"github.com/pdiddy/literature-aggregator/internal/scholar"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// Adapter surfaces the aggregator routes to, one per source.
type pubmedAdapter interface {
	Search(ctx context.Context, query string, f pubmed.Filters) ([]types.Paper, error)
	PaperByID(ctx context.Context, id string) (*types.Paper, error)
	CitationCount(ctx context.Context, id string) (count int, found bool, err error)
	Related(ctx context.Context, id string, max int) ([]types.Paper, error)
	FullText(ctx context.Context, id string) (string, error)
	Sections(ctx context.Context, id string, maxLen int) ([]types.Section, error)
	FindInPaper(ctx context.Context, id, term string) ([]string, error)
	EvidenceQuotes(ctx context.Context, id, evidenceType string) ([]string, error)
}

type scholarAdapter interface {
	Search(ctx context.Context, query string, opts scholar.SearchOptions) ([]types.Paper, error)
	Details(ctx context.Context, title string) (*types.Paper, error)
	CitationCount(ctx context.Context, title string) (count int, found bool, err error)
	Related(ctx context.Context, title string, max int) ([]types.Paper, error)
	CloudScrapeConfigured() bool
	Close() error
}

type arxivAdapter interface {
	Search(ctx context.Context, query string, f arxiv.Filters) ([]types.Paper, error)
	PaperByID(ctx context.Context, id string) (*types.Paper, error)
	CitationCount(ctx context.Context, id string) (count int, found bool, err error)
	Related(ctx context.Context, id string, max int) ([]types.Paper, error)
}

// SearchOptions narrow an aggregated search. Zero fields fall back to
// stored preferences, then to built-in defaults.
type SearchOptions struct {
	// Sources overrides the stored source list for this call.
	Sources []string

	MaxResults int

	// SortBy is "relevance", "date", or "citations".
	SortBy string

	// Journal and Author narrow the structured-API term; Author also
	// narrows the preprint query.
	Journal string
	Author  string

	// Category narrows the preprint query.
	Category string

	// YearFrom and YearTo narrow the scrape-provider query.
	YearFrom int
	YearTo   int

	// PreferBackend overrides the scrape backend for this call.
	PreferBackend string

	// BypassPreferences ignores the stored preferences and resolves
	// everything from built-in defaults.
	BypassPreferences bool
}

// Aggregator fans search calls out to the source adapters and routes
// single-paper operations by source tag.
type Aggregator struct {
	pubmed  pubmedAdapter
	scholar scholarAdapter
	arxiv   arxivAdapter
	prefs   *prefs.Store
	cache   *cache.Store // nil disables caching
	warn    io.Writer
}

// New wires the source adapters from cfg. The preferences store may be
// nil, in which case built-in defaults apply. Warnings are written to
// warn; pass nil to discard them.
func New(cfg types.AggregatorConfig, store *prefs.Store, warn io.Writer) (*Aggregator, error) {
	if warn == nil {
		warn = io.Discard
	}

	a := &Aggregator{
		pubmed:  pubmed.New(cfg.PubMed, warn),
		scholar: scholar.New(cfg.Scholar, warn),
		arxiv:   arxiv.New(cfg.Arxiv),
		prefs:   store,
		warn:    warn,
	}

	if cfg.CachePath != "" {
		c, err := cache.Open(cfg.CachePath)
		if err != nil {
			return nil, err
		}
		a.cache = c
	}
	return a, nil
}

// Close releases the scrape adapter's browser process and the cache.
func (a *Aggregator) Close() error {
	err := a.scholar.Close()
	if a.cache != nil {
		if cerr := a.cache.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Search fans the query out to every planned source, merges duplicates,
// sorts, and truncates to the overall cap.
func (a *Aggregator) Search(ctx context.Context, query string, opts SearchOptions) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("aggregate: empty query")
	}

	p := a.preferences(opts.BypassPreferences)
	plan, err := buildPlan(query, opts, p)
	if err != nil {
		return nil, err
	}

	maxAge := time.Duration(p.Cache.ExpiryHours) * time.Hour
	if a.cacheEnabled(p) {
		var cached []types.Paper
		ok, err := a.cache.Get(ctx, "aggregate", "search", plan.cacheKey(), maxAge, &cached)
		if err != nil {
			fmt.Fprintf(a.warn, "warning: aggregate: cache read failed: %v\n", err)
		} else if ok {
			return cached, nil
		}
	}

	// Fan out, collecting per-source slots so concatenation preserves
	// dispatch order regardless of completion order.
	results := make([][]types.Paper, len(plan.sources))
	errs := make([]error, len(plan.sources))
	var wg sync.WaitGroup
	for i, src := range plan.sources {
		wg.Add(1)
		go func(i int, src sourcePlan) {
			defer wg.Done()
			results[i], errs[i] = a.searchSource(ctx, src, plan)
		}(i, src)
	}
	wg.Wait()

	if plan.explicit && len(plan.sources) == 1 && errs[0] != nil {
		return nil, errs[0]
	}

	var all []types.Paper
	for i, src := range plan.sources {
		if errs[i] != nil {
			fmt.Fprintf(a.warn, "warning: aggregate: source %s failed: %v\n", src.name, errs[i])
			continue
		}
		all = append(all, results[i]...)
	}

	if plan.dedup {
		all = mergePapers(all)
	}
	sortPapers(all, plan.sortBy)
	if len(all) > plan.max {
		all = all[:plan.max]
	}

	if a.cacheEnabled(p) {
		if err := a.cache.Put(ctx, "aggregate", "search", plan.cacheKey(), all); err != nil {
			fmt.Fprintf(a.warn, "warning: aggregate: cache write failed: %v\n", err)
		}
	}
	return all, nil
}

// Details returns one paper, routed by source tag. The scrape provider
// looks identifiers up as titles.
func (a *Aggregator) Details(ctx context.Context, identifier, source string) (*types.Paper, error) {
	switch source {
	case types.SourcePubMed:
		return a.pubmed.PaperByID(ctx, identifier)
	case types.SourceScholar:
		return a.scholar.Details(ctx, identifier)
	case types.SourceArxiv:
		return a.arxiv.PaperByID(ctx, identifier)
	}
	return nil, unknownSource(source)
}

// CitationCount returns a citation count routed by source tag. found is
// false when the source exposes no count for the paper.
func (a *Aggregator) CitationCount(ctx context.Context, identifier, source string) (count int, found bool, err error) {
	switch source {
	case types.SourcePubMed:
		return a.pubmed.CitationCount(ctx, identifier)
	case types.SourceScholar:
		return a.scholar.CitationCount(ctx, identifier)
	case types.SourceArxiv:
		return a.arxiv.CitationCount(ctx, identifier)
	}
	return 0, false, unknownSource(source)
}

// Related returns papers related to the identified one, routed by
// source tag.
func (a *Aggregator) Related(ctx context.Context, identifier, source string, max int) ([]types.Paper, error) {
	switch source {
	case types.SourcePubMed:
		return a.pubmed.Related(ctx, identifier, max)
	case types.SourceScholar:
		return a.scholar.Related(ctx, identifier, max)
	case types.SourceArxiv:
		return a.arxiv.Related(ctx, identifier, max)
	}
	return nil, unknownSource(source)
}

// FullText retrieves the best available text for a paper. Only the
// structured-API source has a full-text pipeline.
func (a *Aggregator) FullText(ctx context.Context, identifier, source string) (string, error) {
	if source != types.SourcePubMed {
		return "", fullTextUnsupported(source)
	}
	return a.pubmed.FullText(ctx, identifier)
}

// Sections segments a paper's full text into titled sections.
func (a *Aggregator) Sections(ctx context.Context, identifier, source string, maxLen int) ([]types.Section, error) {
	if source != types.SourcePubMed {
		return nil, fullTextUnsupported(source)
	}
	return a.pubmed.Sections(ctx, identifier, maxLen)
}

// FindInPaper returns sentences of the paper's full text containing term.
func (a *Aggregator) FindInPaper(ctx context.Context, identifier, source, term string) ([]string, error) {
	if source != types.SourcePubMed {
		return nil, fullTextUnsupported(source)
	}
	return a.pubmed.FindInPaper(ctx, identifier, term)
}

// EvidenceQuotes returns sentences matching an evidence type.
func (a *Aggregator) EvidenceQuotes(ctx context.Context, identifier, source, evidenceType string) ([]string, error) {
	if source != types.SourcePubMed {
		return nil, fullTextUnsupported(source)
	}
	return a.pubmed.EvidenceQuotes(ctx, identifier, evidenceType)
}

// Preferences returns the effective preferences snapshot.
func (a *Aggregator) Preferences() types.Preferences {
	return a.preferences(false)
}

// MethodInfo describes which scrape backend a search would use and why.
type MethodInfo struct {
	Backend               string `json:"backend" yaml:"backend"`
	CloudScrapeConfigured bool   `json:"cloud_scrape_configured" yaml:"cloud_scrape_configured"`
	PreferCloudScrape     bool   `json:"prefer_cloud_scrape" yaml:"prefer_cloud_scrape"`
	Reason                string `json:"reason" yaml:"reason"`
}

// MethodInfo reports the scrape backend the next search would start on.
func (a *Aggregator) MethodInfo() MethodInfo {
	p := a.preferences(false)
	info := MethodInfo{
		CloudScrapeConfigured: a.scholar.CloudScrapeConfigured(),
		PreferCloudScrape:     p.Search.PreferCloudScrape,
	}
	switch {
	case info.CloudScrapeConfigured && info.PreferCloudScrape:
		info.Backend = types.MethodCloudScrape
		info.Reason = "cloud scrape key configured and preferred"
	case info.CloudScrapeConfigured:
		info.Backend = types.MethodBrowser
		info.Reason = "cloud scrape key configured but not preferred"
	case info.PreferCloudScrape:
		info.Backend = types.MethodBrowser
		info.Reason = "cloud scrape preferred but no key is configured"
	default:
		info.Backend = types.MethodBrowser
		info.Reason = "headless browser is the default backend"
	}
	return info
}

// PurgeCache removes expired cache entries per the stored expiry window.
func (a *Aggregator) PurgeCache(ctx context.Context) (int64, error) {
	if a.cache == nil {
		return 0, nil
	}
	p := a.preferences(false)
	return a.cache.Purge(ctx, time.Duration(p.Cache.ExpiryHours)*time.Hour)
}

// ClearCache removes every cache entry.
func (a *Aggregator) ClearCache(ctx context.Context) (int64, error) {
	if a.cache == nil {
		return 0, nil
	}
	return a.cache.Clear(ctx)
}

func (a *Aggregator) preferences(bypass bool) types.Preferences {
	if bypass || a.prefs == nil {
		return types.DefaultPreferences()
	}
	return a.prefs.Get()
}

func (a *Aggregator) cacheEnabled(p types.Preferences) bool {
	return a.cache != nil && p.Cache.Enabled
}

func (a *Aggregator) searchSource(ctx context.Context, src sourcePlan, plan searchPlan) ([]types.Paper, error) {
	switch src.name {
	case types.SourcePubMed:
		return a.pubmed.Search(ctx, plan.query, pubmed.Filters{
			Journal:    plan.opts.Journal,
			Author:     plan.opts.Author,
			MaxResults: src.cap,
		})
	case types.SourceScholar:
		return a.scholar.Search(ctx, plan.query, scholar.SearchOptions{
			MaxResults:    src.cap,
			YearFrom:      plan.opts.YearFrom,
			YearTo:        plan.opts.YearTo,
			SortBy:        plan.sortBy,
			PreferBackend: plan.prefer,
		})
	case types.SourceArxiv:
		return a.arxiv.Search(ctx, plan.query, arxiv.Filters{
			Author:     plan.opts.Author,
			Category:   plan.opts.Category,
			MaxResults: src.cap,
		})
	}
	return nil, unknownSource(src.name)
}

// sourcePlan is one source's slot in a search plan.
type sourcePlan struct {
	name string
	cap  int
}

// searchPlan is the fully resolved shape of one search call.
type searchPlan struct {
	query    string
	sources  []sourcePlan
	max      int
	sortBy   string
	dedup    bool
	prefer   string
	explicit bool
	opts     SearchOptions
}

// buildPlan resolves sources, caps, sort order, and backend preference:
// call-site override first, then stored preference, then built-in
// default.
func buildPlan(query string, opts SearchOptions, p types.Preferences) (searchPlan, error) {
	plan := searchPlan{
		query: query,
		opts:  opts,
		dedup: p.Search.EnableDeduplication,
	}

	plan.max = opts.MaxResults
	if plan.max <= 0 {
		plan.max = p.Search.DefaultMaxResults
	}
	if plan.max <= 0 {
		plan.max = 20
	}

	plan.sortBy = opts.SortBy
	if plan.sortBy == "" {
		plan.sortBy = p.Search.DefaultSortBy
	}
	switch plan.sortBy {
	case types.SortRelevance, types.SortDate, types.SortCitations:
	case "":
		plan.sortBy = types.SortRelevance
	default:
		return searchPlan{}, fmt.Errorf("aggregate: unknown sort order %q (want relevance, date, or citations)", plan.sortBy)
	}

	plan.prefer = opts.PreferBackend
	if plan.prefer == "" {
		if p.Search.PreferCloudScrape {
			plan.prefer = types.MethodCloudScrape
		} else {
			plan.prefer = types.MethodBrowser
		}
	}

	names, explicit, err := resolveSources(opts, p)
	if err != nil {
		return searchPlan{}, err
	}
	plan.explicit = explicit

	// Per-source cap: the source's own stored cap, or an equal split of
	// the overall cap.
	split := (plan.max + len(names) - 1) / len(names)
	for _, name := range names {
		quota := split
		if src := p.Source(name); src != nil && src.MaxResults > 0 {
			quota = src.MaxResults
		}
		plan.sources = append(plan.sources, sourcePlan{name: name, cap: quota})
	}
	return plan, nil
}

// resolveSources returns the effective source list and whether it came
// from an explicit per-call override.
func resolveSources(opts SearchOptions, p types.Preferences) ([]string, bool, error) {
	if len(opts.Sources) > 0 {
		for _, name := range opts.Sources {
			if !knownSource(name) {
				return nil, false, unknownSource(name)
			}
		}
		return opts.Sources, true, nil
	}

	enabled := make([]types.SourcePreference, 0, len(p.Sources))
	for _, s := range p.Sources {
		if s.Enabled && knownSource(s.Name) {
			enabled = append(enabled, s)
		}
	}
	if len(enabled) == 0 {
		return nil, false, fmt.Errorf("aggregate: no sources enabled")
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	names := make([]string, len(enabled))
	for i, s := range enabled {
		names[i] = s.Name
	}
	return names, false, nil
}

func (p searchPlan) cacheKey() string {
	parts := make([]string, 0, len(p.sources)+8)
	parts = append(parts, p.query)
	for _, s := range p.sources {
		parts = append(parts, s.name+":"+strconv.Itoa(s.cap))
	}
	parts = append(parts,
		strconv.Itoa(p.max),
		p.sortBy,
		p.opts.Journal,
		p.opts.Author,
		p.opts.Category,
		strconv.Itoa(p.opts.YearFrom),
		strconv.Itoa(p.opts.YearTo),
		strconv.FormatBool(p.dedup),
	)
	return strings.Join(parts, "|")
}

func knownSource(name string) bool {
	switch name {
	case types.SourcePubMed, types.SourceScholar, types.SourceArxiv:
		return true
	}
	return false
}

func unknownSource(name string) error {
	return fmt.Errorf("aggregate: unknown source %q (want pubmed, scholar, or arxiv)", name)
}

func fullTextUnsupported(source string) error {
	return fmt.Errorf("aggregate: full text is only available for the pubmed source, not %q", source)
}
