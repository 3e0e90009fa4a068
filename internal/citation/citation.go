// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation renders a paper record as a formatted reference
// string. Author names are kept as the free text the sources provide;
// the styles approximate their published forms rather than re-parsing
// names into family and given parts.
package citation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// Styles accepted by Format.
const (
	StyleBibTeX  = "bibtex"
	StyleAPA     = "apa"
	StyleMLA     = "mla"
	StyleChicago = "chicago"
)

// Format renders p in the named style. Style names are case-insensitive.
func Format(p *types.Paper, style string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case StyleBibTeX:
		return formatBibTeX(p), nil
	case StyleAPA:
		return formatAPA(p), nil
	case StyleMLA:
		return formatMLA(p), nil
	case StyleChicago:
		return formatChicago(p), nil
	}
	return "", fmt.Errorf("generating citation: unknown format %q (want bibtex, apa, mla, or chicago)", style)
}

func formatBibTeX(p *types.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", bibtexKey(p))
	fmt.Fprintf(&b, "  title = {%s},\n", p.Title)
	if len(p.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(p.Authors, " and "))
	}
	if p.Journal != "" {
		fmt.Fprintf(&b, "  journal = {%s},\n", p.Journal)
	}
	if year := p.Year(); year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", year)
	}
	if p.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", p.DOI)
	}
	if p.ArxivID != "" {
		fmt.Fprintf(&b, "  eprint = {%s},\n", p.ArxivID)
	}
	if p.PMID != "" {
		fmt.Fprintf(&b, "  note = {PMID: %s},\n", p.PMID)
	}
	b.WriteString("}")
	return b.String()
}

func formatAPA(p *types.Paper) string {
	parts := make([]string, 0, 4)
	author := joinWithAmpersand(p.Authors)
	year := p.Year()
	switch {
	case author != "" && year > 0:
		parts = append(parts, fmt.Sprintf("%s (%d).", author, year))
	case author != "":
		parts = append(parts, ensurePeriod(author))
	case year > 0:
		parts = append(parts, fmt.Sprintf("(%d).", year))
	}
	parts = append(parts, ensurePeriod(p.Title))
	if p.Journal != "" {
		parts = append(parts, ensurePeriod(p.Journal))
	}
	if p.DOI != "" {
		parts = append(parts, "https://doi.org/"+p.DOI)
	}
	return strings.Join(parts, " ")
}

func formatMLA(p *types.Paper) string {
	parts := make([]string, 0, 3)
	if a := mlaAuthors(p.Authors); a != "" {
		parts = append(parts, ensurePeriod(a))
	}
	parts = append(parts, `"`+ensurePeriod(p.Title)+`"`)
	tail := p.Journal
	if year := p.Year(); year > 0 {
		if tail != "" {
			tail += ", " + strconv.Itoa(year)
		} else {
			tail = strconv.Itoa(year)
		}
	}
	if tail != "" {
		parts = append(parts, ensurePeriod(tail))
	}
	return strings.Join(parts, " ")
}

func formatChicago(p *types.Paper) string {
	parts := make([]string, 0, 4)
	if a := joinWithAnd(p.Authors); a != "" {
		parts = append(parts, ensurePeriod(a))
	}
	parts = append(parts, `"`+ensurePeriod(p.Title)+`"`)
	tail := p.Journal
	if year := p.Year(); year > 0 {
		if tail != "" {
			tail += fmt.Sprintf(" (%d)", year)
		} else {
			tail = fmt.Sprintf("(%d)", year)
		}
	}
	if tail != "" {
		parts = append(parts, ensurePeriod(tail))
	}
	if p.DOI != "" {
		parts = append(parts, "https://doi.org/"+p.DOI+".")
	}
	return strings.Join(parts, " ")
}

// bibtexKey builds a citation key from the first author's surname and
// the publication year, e.g. "rijoferreira2021". Papers without authors
// key on "unknown".
func bibtexKey(p *types.Paper) string {
	surname := "unknown"
	if len(p.Authors) > 0 {
		name := strings.TrimSpace(p.Authors[0])
		if idx := strings.LastIndex(name, " "); idx >= 0 {
			name = name[idx+1:]
		}
		var b strings.Builder
		for _, r := range strings.ToLower(name) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			surname = b.String()
		}
	}
	if year := p.Year(); year > 0 {
		return surname + strconv.Itoa(year)
	}
	return surname
}

// joinWithAmpersand joins author names APA-style: the last author is
// attached with ", & ".
func joinWithAmpersand(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	}
	return strings.Join(authors[:len(authors)-1], ", ") + ", & " + authors[len(authors)-1]
}

// joinWithAnd joins author names with ", and " before the last one.
func joinWithAnd(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	}
	return strings.Join(authors[:len(authors)-1], ", ") + ", and " + authors[len(authors)-1]
}

// mlaAuthors renders MLA bylines: three or more authors collapse to the
// first plus "et al".
func mlaAuthors(authors []string) string {
	if len(authors) >= 3 {
		return authors[0] + ", et al"
	}
	return joinWithAnd(authors)
}

// ensurePeriod appends a period unless the string already ends with
// terminal punctuation.
func ensurePeriod(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
