// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

var (
	yearRe    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	citedByRe = regexp.MustCompile(`Cited by (\d+)`)

	mdTitleRe = regexp.MustCompile(`(?m)^#{2,4}\s+\[([^\]]+)\]\(([^)\s]+)\)`)
	mdPDFRe   = regexp.MustCompile(`\[\[PDF\][^\]]*\]\(([^)\s]+)\)`)
)

// parseResultsHTML extracts records from a rendered results page. Each
// result block needs at least a linked title; records are capped at max
// during parsing.
func parseResultsHTML(rendered string, max int) ([]types.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, err
	}

	var papers []types.Paper
	doc.Find(".gs_r.gs_or.gs_scl").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		p := paperFromResult(s)
		if p.Title == "" {
			return true
		}
		papers = append(papers, p)
		return len(papers) < max
	})
	return papers, nil
}

func paperFromResult(s *goquery.Selection) types.Paper {
	p := types.Paper{Source: types.SourceScholar}

	link := s.Find(".gs_rt a").First()
	p.Title = strings.TrimSpace(link.Text())
	if href, ok := link.Attr("href"); ok {
		p.URL = href
	}

	p.Authors, p.Journal, p.PublicationDate = parseAuthorLine(s.Find(".gs_a").First().Text())
	p.Abstract = strings.TrimSpace(s.Find(".gs_rs").First().Text())
	p.Citations = parseCitedBy(s.Find(".gs_fl").Text())

	if pdf, ok := s.Find(".gs_or_ggsm a").First().Attr("href"); ok {
		p.PDFURL = pdf
	}
	return p
}

// parseResultsMarkdown extracts records from a markdown rendering of the
// same page. Result blocks start at heading links; the block runs until
// the next heading.
func parseResultsMarkdown(md string, max int) []types.Paper {
	matches := mdTitleRe.FindAllStringSubmatchIndex(md, -1)

	var papers []types.Paper
	for i, m := range matches {
		if len(papers) >= max {
			break
		}
		blockEnd := len(md)
		if i+1 < len(matches) {
			blockEnd = matches[i+1][0]
		}
		block := md[m[1]:blockEnd]

		p := types.Paper{
			Source: types.SourceScholar,
			Title:  strings.TrimSpace(md[m[2]:m[3]]),
			URL:    md[m[4]:m[5]],
		}
		if p.Title == "" {
			continue
		}

		var snippet []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case p.PublicationDate == "" && len(p.Authors) == 0 && strings.Contains(line, " - "):
				p.Authors, p.Journal, p.PublicationDate = parseAuthorLine(line)
			case strings.HasPrefix(line, "["):
				// Link-only lines: cited-by, versions, PDF mirrors.
			default:
				snippet = append(snippet, line)
			}
		}
		p.Abstract = strings.Join(snippet, " ")
		p.Citations = parseCitedBy(block)
		if pm := mdPDFRe.FindStringSubmatch(block); pm != nil {
			p.PDFURL = pm[1]
		}

		papers = append(papers, p)
	}
	return papers
}

// parseAuthorLine splits the provider's author blob. The first segment
// before " - " is a comma-separated author list, the second names the
// journal, and the first four-digit run anywhere is the year.
func parseAuthorLine(line string) (authors []string, journal, year string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, "", ""
	}

	segments := strings.Split(line, " - ")
	for _, a := range strings.Split(segments[0], ",") {
		a = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(a), "…"))
		if a != "" {
			authors = append(authors, a)
		}
	}
	if len(segments) > 1 {
		venue := segments[1]
		year = yearRe.FindString(venue)
		if year != "" {
			venue = strings.Replace(venue, year, "", 1)
		}
		journal = strings.Trim(venue, " ,…")
	}
	if year == "" {
		year = yearRe.FindString(line)
	}
	return authors, journal, year
}

func parseCitedBy(s string) int {
	m := citedByRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
