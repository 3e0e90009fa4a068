// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv implements the preprint adapter over the arXiv Atom API.
// The provider exposes no citation data, so every record carries a fixed
// journal label and a zero citation count.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/literature-aggregator/internal/httputil"
	"github.com/pdiddy/literature-aggregator/internal/ratelimit"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxResults  = 20
	defaultMinInterval = 3 * time.Second // provider etiquette: one request per 3s

	journalLabel = "arXiv preprint"
	absURLBase   = "https://arxiv.org/abs/"
	pdfURLBase   = "https://arxiv.org/pdf/"
)

// Filters narrow a search.
type Filters struct {
	Author     string
	Category   string
	MaxResults int
}

// Client queries the arXiv API.
type Client struct {
	cfg     types.ArxivConfig
	client  *http.Client
	limiter *ratelimit.Limiter
}

// New returns a Client with defaults applied to the zero fields of cfg.
func New(cfg types.ArxivConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
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
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.New(cfg.MinInterval),
	}
}

// Search queries the API and returns canonical records sorted by the
// provider's relevance ranking.
func (c *Client) Search(ctx context.Context, query string, f Filters) ([]types.Paper, error) {
	q := buildQuery(query, f)
	if q == "" {
		return nil, fmt.Errorf("arxiv: empty query")
	}

	max := f.MaxResults
	if max <= 0 {
		max = c.cfg.MaxResults
	}

	u := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, max)
	feed, err := c.fetchFeed(ctx, u, "search")
	if err != nil {
		return nil, err
	}
	return papersFromFeed(feed), nil
}

// PaperByID fetches a single paper by its arXiv identifier, with or
// without a version suffix.
func (c *Client) PaperByID(ctx context.Context, id string) (*types.Paper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("arxiv: empty paper id")
	}

	u := fmt.Sprintf("%s?id_list=%s&max_results=1", arxivAPIBase, url.QueryEscape(id))
	feed, err := c.fetchFeed(ctx, u, "fetch")
	if err != nil {
		return nil, err
	}
	// Unknown ids come back as a feed whose single entry carries an
	// error URL in place of an abstract link; it has no extractable id.
	for _, entry := range feed.Entries {
		if p, ok := paperFromEntry(entry); ok {
			return &p, nil
		}
	}
	return nil, types.NewNotFoundError("paper", id)
}

// CitationCount reports whether a citation count is available for the
// paper. The provider exposes none, so found is always false; the lookup
// still verifies the paper exists.
func (c *Client) CitationCount(ctx context.Context, id string) (count int, found bool, err error) {
	if _, err := c.PaperByID(ctx, id); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}

// Related returns recent papers filed under the seed paper's primary
// category, or matching its title terms when the seed has no category.
func (c *Client) Related(ctx context.Context, id string, max int) ([]types.Paper, error) {
	if max <= 0 {
		max = c.cfg.MaxResults
	}
	seed, err := c.PaperByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, relatedQuery(seed), max+1)
	feed, err := c.fetchFeed(ctx, u, "related")
	if err != nil {
		return nil, err
	}

	related := make([]types.Paper, 0, max)
	for _, entry := range feed.Entries {
		p, ok := paperFromEntry(entry)
		if !ok || p.ArxivID == seed.ArxivID {
			continue
		}
		related = append(related, p)
		if len(related) >= max {
			break
		}
	}
	return related, nil
}

func (c *Client) fetchFeed(ctx context.Context, pageURL, op string) (*atomFeed, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := httputil.Get(ctx, c.client, pageURL, c.cfg.UserAgent)
	if err != nil {
		return nil, types.NewSourceError(types.SourceArxiv, op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewSourceError(types.SourceArxiv, op, resp.StatusCode, nil)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arxiv %s: %w: %v", op, types.ErrMalformedPayload, err)
	}
	return &feed, nil
}

// buildQuery constructs the search_query parameter. Terms within a part
// are joined with +, parts with +AND+, per the provider's query syntax.
func buildQuery(query string, f Filters) string {
	var parts []string
	if terms := strings.Fields(query); len(terms) > 0 {
		parts = append(parts, "all:"+strings.Join(terms, "+"))
	}
	if terms := strings.Fields(f.Author); len(terms) > 0 {
		parts = append(parts, "au:"+strings.Join(terms, "+"))
	}
	if f.Category != "" {
		parts = append(parts, "cat:"+f.Category)
	}
	return strings.Join(parts, "+AND+")
}

func relatedQuery(seed *types.Paper) string {
	if len(seed.Categories) > 0 {
		return "cat:" + seed.Categories[0]
	}
	return "all:" + strings.Join(strings.Fields(seed.Title), "+")
}

func papersFromFeed(feed *atomFeed) []types.Paper {
	var papers []types.Paper
	for _, entry := range feed.Entries {
		if p, ok := paperFromEntry(entry); ok {
			papers = append(papers, p)
		}
	}
	return papers
}

func paperFromEntry(entry atomEntry) (types.Paper, bool) {
	id := extractArxivID(entry.ID)
	title := normalizeWhitespace(entry.Title)
	if id == "" || title == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		Title:    title,
		Abstract: normalizeWhitespace(entry.Summary),
		Source:   types.SourceArxiv,
		ArxivID:  id,
		DOI:      strings.TrimSpace(entry.DOI),
		Journal:  journalLabel,
		URL:      absURLBase + id,
		PDFURL:   pdfURLBase + id,
	}

	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			p.Categories = append(p.Categories, cat.Term)
		}
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.PublicationDate = t.Format("2006-01-02")
	}

	// Feed links override the constructed URLs when present.
	for _, l := range entry.Links {
		switch {
		case l.Title == "pdf" || l.Type == "application/pdf":
			p.PDFURL = l.Href
		case l.Rel == "alternate":
			p.URL = l.Href
		}
	}
	return p, true
}

// normalizeWhitespace collapses the line folds the Atom feed embeds in
// titles and abstracts.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" becomes "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	DOI        string         `xml:"doi"`
	Authors    []atomAuthor   `xml:"author"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}
