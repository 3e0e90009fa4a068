// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/pdiddy/literature-aggregator/internal/httputil"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// Full-text endpoints. Package variables so tests can point the pipeline
// at local fixture servers.
var (
	pmcArticleBase  = "https://www.ncbi.nlm.nih.gov/pmc/articles/"
	pmcOABase       = "https://www.ncbi.nlm.nih.gov/pmc/utils/oa/oa.fcgi"
	doiResolverBase = "https://doi.org/"
)

// fullTextThreshold is the minimum extracted length for a strategy to be
// accepted. Under-threshold results usually mean the page served a stub
// or a paywall interstitial, so the next strategy runs instead.
const fullTextThreshold = 1000

// contentSelectors are the content-block heuristics tried in order
// against article HTML. The first selector that yields text wins. The
// later entries also match the tag names used by the PMC XML format once
// it has been run through an HTML parser.
var contentSelectors = []string{
	"article",
	"main",
	"div.article-content, div.article-body, #article-content, div.content, #maincontent",
	"div.abstract, div.body, abstract",
	"div.sec, div.tsec, sec, section",
}

// FullText returns the best available text for a paper. Strategies run in
// order and the first one whose extracted text exceeds the threshold
// wins; when every strategy fails the abstract already on hand is
// returned. Strategy failures are warnings, never errors.
func (c *Client) FullText(ctx context.Context, id string) (string, error) {
	p, err := c.PaperByID(ctx, id)
	if err != nil {
		return "", err
	}
	return c.fullTextFor(ctx, p), nil
}

type textStrategy struct {
	name string
	run  func(context.Context) (string, error)
}

func (c *Client) fullTextFor(ctx context.Context, p *types.Paper) string {
	var chain []textStrategy
	if p.PMCID != "" {
		pmcid := p.PMCID
		chain = append(chain,
			textStrategy{"pmc article page", func(ctx context.Context) (string, error) {
				return c.fetchArticleText(ctx, pmcArticleBase+pmcid+"/")
			}},
			textStrategy{"pmc oa endpoint", func(ctx context.Context) (string, error) {
				return c.fetchArticleText(ctx, pmcOABase+"?id="+url.QueryEscape(pmcid))
			}},
			textStrategy{"pmc pdf endpoint", func(ctx context.Context) (string, error) {
				return c.fetchPDFText(ctx, pmcArticleBase+pmcid+"/pdf/")
			}},
			textStrategy{"pmc xml", func(ctx context.Context) (string, error) {
				return c.fetchPMCXMLText(ctx, pmcid)
			}},
		)
	}
	if p.DOI != "" {
		doi := p.DOI
		chain = append(chain, textStrategy{"doi resolver", func(ctx context.Context) (string, error) {
			return c.fetchStrippedText(ctx, doiResolverBase+doi)
		}})
	}

	for _, s := range chain {
		text, err := s.run(ctx)
		if err != nil {
			fmt.Fprintf(c.warn, "warning: pubmed full text (%s) for %s: %v\n", s.name, p.PMID, err)
			continue
		}
		if len(text) <= fullTextThreshold {
			fmt.Fprintf(c.warn, "warning: pubmed full text (%s) for %s: %d chars, below threshold\n", s.name, p.PMID, len(text))
			continue
		}
		return text
	}
	return p.Abstract
}

// fetchArticleText retrieves a page and extracts article text with the
// content-block heuristics.
func (c *Client) fetchArticleText(ctx context.Context, pageURL string) (string, error) {
	body, _, err := c.fetchBody(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return extractArticleText(bytes.NewReader(body))
}

// fetchPDFText retrieves the PDF-serving endpoint. A real PDF response
// goes through the PDF text extractor; anything else is treated as an
// HTML wrapper and run through the content-block heuristics.
func (c *Client) fetchPDFText(ctx context.Context, pdfURL string) (string, error) {
	body, contentType, err := c.fetchBody(ctx, pdfURL)
	if err != nil {
		return "", err
	}
	if strings.Contains(contentType, "application/pdf") {
		return extractPDFText(body)
	}
	return extractArticleText(bytes.NewReader(body))
}

// fetchPMCXMLText retrieves the efetch XML rendering of a PMC article.
func (c *Client) fetchPMCXMLText(ctx context.Context, pmcid string) (string, error) {
	params := url.Values{}
	params.Set("db", "pmc")
	params.Set("id", strings.TrimPrefix(pmcid, "PMC"))
	params.Set("retmode", "xml")
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	body, _, err := c.fetchBody(ctx, efetchBase+"?"+params.Encode())
	if err != nil {
		return "", err
	}
	return extractArticleText(bytes.NewReader(body))
}

// fetchStrippedText retrieves a page and strips every tag, keeping only
// text content. Used for resolver pages whose structure is unknown.
func (c *Client) fetchStrippedText(ctx context.Context, pageURL string) (string, error) {
	body, _, err := c.fetchBody(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return stripTags(bytes.NewReader(body))
}

func (c *Client) fetchBody(ctx context.Context, fetchURL string) (body []byte, contentType string, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	resp, err := httputil.Get(ctx, c.client, fetchURL, c.cfg.UserAgent)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// extractArticleText tries each content-block selector in order and
// returns the text of the first that matches anything. Scripts, styles,
// and navigation chrome are dropped first.
func extractArticleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, header, footer").Remove()

	for _, sel := range contentSelectors {
		matches := doc.Find(sel)
		if matches.Length() == 0 {
			continue
		}
		var b strings.Builder
		matches.Each(func(_ int, s *goquery.Selection) {
			b.WriteString(s.Text())
			b.WriteString("\n")
		})
		if text := normalizeText(b.String()); text != "" {
			return text, nil
		}
	}
	return "", nil
}

// stripTags tokenizes HTML and keeps text content only, skipping script
// and style bodies.
func stripTags(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var b strings.Builder
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return normalizeText(b.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
				b.WriteByte('\n')
			}
		}
	}
}

func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript":
		return true
	}
	return false
}

// extractPDFText pulls plain text from every page of a PDF. Pages that
// fail to extract are skipped.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return normalizeText(b.String()), nil
}

// normalizeText collapses intra-line whitespace and drops blank lines
// while preserving line structure for section segmentation.
func normalizeText(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
