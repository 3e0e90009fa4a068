// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(w io.Writer, papers []types.Paper) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

// FormatResults writes papers as a numbered text listing honoring the
// display preferences.
func FormatResults(w io.Writer, papers []types.Paper, dp types.DisplayPreferences) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	for i, p := range papers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, p.Title)
		if len(p.Authors) > 0 {
			fmt.Fprintf(w, "   Authors: %s\n", formatAuthors(p.Authors))
		}
		if venue := venueLine(p); venue != "" {
			fmt.Fprintf(w, "   %s\n", venue)
		}
		fmt.Fprintf(w, "   Source: %s\n", sourceLabel(p))
		if dp.ShowCitations {
			fmt.Fprintf(w, "   Citations: %d\n", p.Citations)
		}
		if dp.ShowURLs && p.URL != "" {
			fmt.Fprintf(w, "   URL: %s\n", p.URL)
		}
		if dp.ShowAbstracts && p.Abstract != "" {
			fmt.Fprintf(w, "   %s\n", truncateAbstract(p.Abstract, dp.MaxAbstractLength))
		}
	}

	fmt.Fprintf(w, "\n%d results\n", len(papers))
}

// FormatPaper writes one paper in full detail. The abstract is never
// truncated here; the detail view exists to show the whole record.
func FormatPaper(w io.Writer, p *types.Paper, dp types.DisplayPreferences) {
	fmt.Fprintln(w, p.Title)
	if len(p.Authors) > 0 {
		fmt.Fprintf(w, "Authors: %s\n", strings.Join(p.Authors, ", "))
	}
	if venue := venueLine(*p); venue != "" {
		fmt.Fprintln(w, venue)
	}
	fmt.Fprintf(w, "Source: %s\n", sourceLabel(*p))

	if p.PMID != "" {
		fmt.Fprintf(w, "PMID: %s\n", p.PMID)
	}
	if p.PMCID != "" {
		fmt.Fprintf(w, "PMCID: %s\n", p.PMCID)
	}
	if p.DOI != "" {
		fmt.Fprintf(w, "DOI: %s\n", p.DOI)
	}
	if p.ArxivID != "" {
		fmt.Fprintf(w, "arXiv: %s\n", p.ArxivID)
	}
	if len(p.Categories) > 0 {
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(p.Categories, ", "))
	}
	if dp.ShowCitations {
		fmt.Fprintf(w, "Citations: %d\n", p.Citations)
	}
	if dp.ShowURLs {
		if p.URL != "" {
			fmt.Fprintf(w, "URL: %s\n", p.URL)
		}
		if p.PDFURL != "" {
			fmt.Fprintf(w, "PDF: %s\n", p.PDFURL)
		}
	}
	if dp.ShowAbstracts && p.Abstract != "" {
		fmt.Fprintf(w, "\n%s\n", p.Abstract)
	}
}

func venueLine(p types.Paper) string {
	switch {
	case p.Journal != "" && p.PublicationDate != "":
		return fmt.Sprintf("%s (%s)", p.Journal, p.PublicationDate)
	case p.Journal != "":
		return p.Journal
	default:
		return p.PublicationDate
	}
}

// sourceLabel appends the scrape backend to the source name when one
// produced the record.
func sourceLabel(p types.Paper) string {
	if p.SearchMethod != "" {
		return p.Source + " (" + p.SearchMethod + ")"
	}
	return p.Source
}

func formatAuthors(authors []string) string {
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:3], ", ") + " et al."
}

func truncateAbstract(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
