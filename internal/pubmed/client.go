// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed implements the PubMed adapter: esearch/efetch search and
// batch retrieval, elink related-article lookup, and a multi-strategy
// full-text pipeline over the PMC mirror endpoints.
package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/literature-aggregator/internal/httputil"
	"github.com/pdiddy/literature-aggregator/internal/ratelimit"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// E-utilities endpoints. Package variables so tests can point the client
// at local fixture servers.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
	elinkBase   = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/elink.fcgi"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxResults  = 20
	defaultMinInterval = 100 * time.Millisecond

	paperURLBase = "https://pubmed.ncbi.nlm.nih.gov/"
)

// Filters narrows a search beyond the free-text query. Journal and Author
// become field-tagged AND clauses in the esearch term.
type Filters struct {
	Journal    string
	Author     string
	MaxResults int
}

// Client is the PubMed adapter. Create one with New; it is safe for
// concurrent use, and its rate limiter serializes outbound calls.
type Client struct {
	cfg     types.PubMedConfig
	client  *http.Client
	limiter *ratelimit.Limiter
	warn    io.Writer
}

// New returns a Client with defaults applied to the zero fields of cfg.
// Warnings (skipped records, failed full-text strategies) are written to
// warn; pass nil to discard them.
func New(cfg types.PubMedConfig, warn io.Writer) *Client {
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
	if warn == nil {
		warn = io.Discard
	}
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.New(cfg.MinInterval),
		warn:    warn,
	}
}

// Search runs an esearch query sorted by relevance and batch-fetches the
// matching records. An empty ID list is a valid empty result, not an
// error.
func (c *Client) Search(ctx context.Context, query string, f Filters) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("pubmed: empty query")
	}
	max := f.MaxResults
	if max <= 0 {
		max = c.cfg.MaxResults
	}

	ids, err := c.searchIDs(ctx, buildTerm(query, f), max)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.FetchPapers(ctx, ids)
}

// buildTerm augments the free-text query with journal and author field
// tags so matches in those fields rank first.
func buildTerm(query string, f Filters) string {
	term := query
	if f.Journal != "" {
		term += fmt.Sprintf(" AND %q[Journal]", f.Journal)
	}
	if f.Author != "" {
		term += fmt.Sprintf(" AND %s[Author]", f.Author)
	}
	return term
}

func (c *Client) searchIDs(ctx context.Context, term string, max int) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(max))
	params.Set("sort", "relevance")
	params.Set("retmode", "xml")
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	resp, err := httputil.Get(ctx, c.client, esearchBase+"?"+params.Encode(), c.cfg.UserAgent)
	if err != nil {
		return nil, types.NewSourceError(types.SourcePubMed, "search", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewSourceError(types.SourcePubMed, "search", resp.StatusCode, nil)
	}

	var result esearchResult
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("pubmed search: %w: %v", types.ErrMalformedPayload, err)
	}
	return result.IDList.IDs, nil
}

// FetchPapers efetches the given PMIDs in one batch and converts each
// record to the canonical shape. A record with missing nodes gets empty
// fields; only a payload that fails to decode at all is an error.
func (c *Client) FetchPapers(ctx context.Context, ids []string) ([]types.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	set, err := c.fetchArticleSet(ctx, "pubmed", ids)
	if err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(set.Articles))
	for _, a := range set.Articles {
		p := paperFromArticle(a)
		if p.Title == "" && p.PMID == "" {
			fmt.Fprintf(c.warn, "warning: pubmed: skipping record with no title or id\n")
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func (c *Client) fetchArticleSet(ctx context.Context, db string, ids []string) (*pubmedArticleSet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("db", db)
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	resp, err := httputil.Get(ctx, c.client, efetchBase+"?"+params.Encode(), c.cfg.UserAgent)
	if err != nil {
		return nil, types.NewSourceError(types.SourcePubMed, "fetch", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewSourceError(types.SourcePubMed, "fetch", resp.StatusCode, nil)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("pubmed fetch: %w: %v", types.ErrMalformedPayload, err)
	}
	return &set, nil
}

// PaperByID fetches a single record by PMID.
func (c *Client) PaperByID(ctx context.Context, id string) (*types.Paper, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("pubmed: empty id")
	}
	papers, err := c.FetchPapers(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, types.NewNotFoundError("paper", id)
	}
	return &papers[0], nil
}

// CitationCount reads the numeric "rid" entry from the record's article
// ID list. The provider does not expose citation counts directly, so the
// value is best-effort; found is false when the entry is absent or not
// numeric.
func (c *Client) CitationCount(ctx context.Context, id string) (count int, found bool, err error) {
	set, err := c.fetchArticleSet(ctx, "pubmed", []string{id})
	if err != nil {
		return 0, false, err
	}
	if len(set.Articles) == 0 {
		return 0, false, types.NewNotFoundError("paper", id)
	}
	for _, aid := range set.Articles[0].PubmedData.ArticleIDList.IDs {
		if aid.IDType != "rid" {
			continue
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(aid.Value))
		if convErr != nil || n < 0 {
			return 0, false, nil
		}
		return n, true, nil
	}
	return 0, false, nil
}

// Related returns up to max papers linked as neighbors of the given PMID.
func (c *Client) Related(ctx context.Context, id string, max int) ([]types.Paper, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("pubmed: empty id")
	}
	if max <= 0 {
		max = c.cfg.MaxResults
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("dbfrom", "pubmed")
	params.Set("db", "pubmed")
	params.Set("cmd", "neighbor")
	params.Set("id", id)
	params.Set("retmode", "xml")
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	resp, err := httputil.Get(ctx, c.client, elinkBase+"?"+params.Encode(), c.cfg.UserAgent)
	if err != nil {
		return nil, types.NewSourceError(types.SourcePubMed, "related", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewSourceError(types.SourcePubMed, "related", resp.StatusCode, nil)
	}

	var result elinkResult
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("pubmed related: %w: %v", types.ErrMalformedPayload, err)
	}

	var ids []string
	for _, ls := range result.LinkSets {
		for _, db := range ls.LinkSetDbs {
			if db.LinkName != "pubmed_pubmed" {
				continue
			}
			for _, link := range db.Links {
				if link.ID == id {
					continue
				}
				ids = append(ids, link.ID)
				if len(ids) >= max {
					break
				}
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.FetchPapers(ctx, ids)
}

// paperFromArticle converts one efetch record to the canonical shape.
// Every field defaults to empty rather than failing.
func paperFromArticle(a pubmedArticle) types.Paper {
	art := a.MedlineCitation.Article
	p := types.Paper{
		Title:           strings.TrimSpace(art.ArticleTitle),
		Authors:         extractAuthors(art.AuthorList),
		Journal:         extractJournal(art.Journal),
		PublicationDate: extractDate(art),
		Abstract:        extractAbstract(art.Abstract),
		Source:          types.SourcePubMed,
		PMID:            strings.TrimSpace(a.MedlineCitation.PMID.Value),
	}
	p.DOI = extractDOI(art.ELocationIDs, a.PubmedData.ArticleIDList)
	p.PMCID = extractPMCID(a.PubmedData.ArticleIDList)
	if p.PMID != "" {
		p.URL = paperURLBase + p.PMID + "/"
	}
	if p.PMCID != "" {
		p.PDFURL = pmcArticleBase + p.PMCID + "/pdf/"
	}
	return p
}

func extractAuthors(list authorList) []string {
	var authors []string
	for _, a := range list.Authors {
		if a.ValidYN == "N" {
			continue
		}
		switch {
		case a.CollectiveName != "":
			authors = append(authors, strings.TrimSpace(a.CollectiveName))
		case a.ForeName != "" && a.LastName != "":
			authors = append(authors, a.ForeName+" "+a.LastName)
		case a.LastName != "" && a.Initials != "":
			authors = append(authors, a.LastName+" "+a.Initials)
		case a.LastName != "":
			authors = append(authors, a.LastName)
		}
	}
	return authors
}

func extractJournal(j journalElement) string {
	if j.Title != "" {
		return strings.TrimSpace(j.Title)
	}
	return strings.TrimSpace(j.ISOAbbreviation)
}

// extractDate prefers the journal issue date, then the electronic article
// date, then the free-form medline date.
func extractDate(art articleElement) string {
	pd := art.Journal.JournalIssue.PubDate
	if pd.Year != "" {
		return joinDate(pd.Year, pd.Month, pd.Day)
	}
	for _, ad := range art.ArticleDates {
		if ad.Year != "" {
			return joinDate(ad.Year, ad.Month, ad.Day)
		}
	}
	return strings.TrimSpace(pd.MedlineDate)
}

func joinDate(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// extractAbstract joins the abstract segments, prefixing labelled
// segments (BACKGROUND, METHODS, ...) with their label.
func extractAbstract(ab abstractBlock) string {
	var parts []string
	for _, t := range ab.Texts {
		text := strings.TrimSpace(t.Value)
		if text == "" {
			continue
		}
		if t.Label != "" {
			text = t.Label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

func extractDOI(locs []eLocationID, ids articleIDList) string {
	for _, loc := range locs {
		if strings.EqualFold(loc.EIdType, "doi") && loc.Value != "" {
			return strings.TrimSpace(loc.Value)
		}
	}
	for _, aid := range ids.IDs {
		if strings.EqualFold(aid.IDType, "doi") && aid.Value != "" {
			return strings.TrimSpace(aid.Value)
		}
	}
	return ""
}

func extractPMCID(ids articleIDList) string {
	for _, aid := range ids.IDs {
		if strings.EqualFold(aid.IDType, "pmc") && aid.Value != "" {
			return strings.TrimSpace(aid.Value)
		}
	}
	return ""
}
