// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// mergePapers deduplicates by normalized title, keeping arrival order.
// A title seen from two or more records collapses into one merged
// record: optional fields take the first non-empty value left to right,
// citations take the maximum.
func mergePapers(papers []types.Paper) []types.Paper {
	seen := make(map[string]int) // normalized title → index in out
	var out []types.Paper
	var hits []int

	for _, p := range papers {
		key := normalizeTitle(p.Title)
		if key == "" {
			out = append(out, p)
			hits = append(hits, 1)
			continue
		}
		if idx, ok := seen[key]; ok {
			mergeInto(&out[idx], p)
			hits[idx]++
			continue
		}
		seen[key] = len(out)
		out = append(out, p)
		hits = append(hits, 1)
	}

	for i := range out {
		if hits[i] >= 2 {
			out[i].Source = types.SourceMerged
		}
	}
	return out
}

// mergeInto fills empty fields of dst from src and keeps the higher
// citation count. dst arrived first, so its values win everywhere else.
func mergeInto(dst *types.Paper, src types.Paper) {
	if src.Citations > dst.Citations {
		dst.Citations = src.Citations
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Journal == "" {
		dst.Journal = src.Journal
	}
	if dst.PublicationDate == "" {
		dst.PublicationDate = src.PublicationDate
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.PMID == "" {
		dst.PMID = src.PMID
	}
	if dst.PMCID == "" {
		dst.PMCID = src.PMCID
	}
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.ArxivID == "" {
		dst.ArxivID = src.ArxivID
	}
	if len(dst.Categories) == 0 {
		dst.Categories = src.Categories
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.PDFURL == "" {
		dst.PDFURL = src.PDFURL
	}
	if dst.SearchMethod == "" {
		dst.SearchMethod = src.SearchMethod
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of
// the title for use as a dedup key.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// sortPapers orders papers in place. Relevance keeps arrival order;
// date sorts by parsed year descending with unparsable dates last;
// citations sorts by count descending. All sorts are stable.
func sortPapers(papers []types.Paper, sortBy string) {
	switch sortBy {
	case types.SortDate:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].Year() > papers[j].Year()
		})
	case types.SortCitations:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].Citations > papers[j].Citations
		})
	}
}
