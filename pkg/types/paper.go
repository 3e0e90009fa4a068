// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the literature-aggregator
// pipeline: the canonical paper record every source adapter maps into, the
// persisted preference object, per-stage configuration, and the error
// vocabulary used at adapter boundaries.
package types

import "strings"

// Source names used in Paper.Source and preference entries.
const (
	SourcePubMed  = "pubmed"
	SourceScholar = "scholar"
	SourceArxiv   = "arxiv"
	SourceMerged  = "merged"
)

// SearchMethod values identify which scrape backend produced a record.
const (
	MethodBrowser     = "browser"
	MethodCloudScrape = "cloudscrape"
)

// Paper is the canonical record exchanged between adapters, the aggregator,
// and callers. Each source adapter normalizes its provider-native payload
// into this shape; the aggregator merges duplicates across sources into a
// single record with Source set to "merged".
type Paper struct {
	// Title is the paper title. Non-empty for every record an adapter
	// returns; it doubles as the dedup key after normalization.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in byline order.
	Authors []string `json:"authors" yaml:"authors"`

	// Journal is the publication venue as free text.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// PublicationDate is free text, year granularity expected (e.g. "2021"
	// or "2021 Mar 15"). Not parsed into time.Time because providers
	// disagree on precision; the aggregator extracts the year when sorting.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// Abstract may be empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Source identifies which adapter produced this record: "pubmed",
	// "scholar", "arxiv", or "merged" after aggregation.
	Source string `json:"source" yaml:"source"`

	// PMID is the PubMed identifier, when known.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// PMCID is the PubMed Central identifier, when known.
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`

	// DOI is the digital object identifier, when known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier without version suffix, when known.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// Categories holds subject tags (arXiv category terms).
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// URL is the landing page for the paper.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL is a direct PDF link, when the provider exposes one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Citations is the citation count, 0 when the provider does not
	// expose one.
	Citations int `json:"citations" yaml:"citations"`

	// SearchMethod records which scrape backend produced this record
	// ("browser" or "cloudscrape"); empty for structured-API sources.
	SearchMethod string `json:"search_method,omitempty" yaml:"search_method,omitempty"`
}

// Identifier returns the best identifier for routing detail lookups:
// PMID, then arXiv ID, then DOI, then the landing URL.
func (p *Paper) Identifier() string {
	switch {
	case p.PMID != "":
		return p.PMID
	case p.ArxivID != "":
		return p.ArxivID
	case p.DOI != "":
		return p.DOI
	default:
		return p.URL
	}
}

// Year extracts a four-digit year from PublicationDate, or 0 if none is
// present. Used for date sorting; unparsable dates sort as oldest.
func (p *Paper) Year() int {
	fields := strings.FieldsFunc(p.PublicationDate, func(r rune) bool {
		return r < '0' || r > '9'
	})
	for _, f := range fields {
		if len(f) == 4 {
			year := 0
			for _, c := range f {
				year = year*10 + int(c-'0')
			}
			if year >= 1000 && year <= 2999 {
				return year
			}
		}
	}
	return 0
}

// Section is one segment of a paper's full text produced by heuristic
// segmentation. Sections are transient; they are never persisted.
type Section struct {
	// Title is the detected section header line.
	Title string `json:"title" yaml:"title"`

	// Content is the text between this header and the next, truncated to
	// the caller's maximum length.
	Content string `json:"content" yaml:"content"`

	// Level is 1 for top-level sections, 2 for subsections.
	Level int `json:"level" yaml:"level"`

	// Subsections holds nested level-2 sections, if any.
	Subsections []Section `json:"subsections,omitempty" yaml:"subsections,omitempty"`
}
