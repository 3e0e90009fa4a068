// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

const (
	defaultMaxSectionLength = 1500

	minSentenceLen = 20
	maxSentenceLen = 500
	maxMatches     = 10
)

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+\.?\s+[A-Z][A-Za-z][A-Za-z0-9 ,:-]{0,76}$`)
	twoWordHeadingRe  = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)
)

// canonicalSections are header names recognized verbatim regardless of
// capitalization style.
var canonicalSections = []string{
	"Abstract", "Introduction", "Methods", "Results",
	"Discussion", "Conclusion", "References",
}

// evidenceKeywords select sentences by rhetorical role for EvidenceQuotes.
var evidenceKeywords = map[string][]string{
	"findings": {
		"found", "showed", "demonstrated", "revealed", "observed",
		"significant", "increased", "decreased",
	},
	"methods": {
		"we used", "performed", "measured", "analyzed",
		"randomized", "protocol", "participants",
	},
	"conclusions": {
		"conclude", "conclusion", "suggest", "indicate", "in summary",
	},
}

// Sections retrieves the paper's full text and segments it. Content of
// each section is truncated to maxLen characters (defaultMaxSectionLength
// when maxLen is 0).
func (c *Client) Sections(ctx context.Context, id string, maxLen int) ([]types.Section, error) {
	text, err := c.FullText(ctx, id)
	if err != nil {
		return nil, err
	}
	return SplitSections(text, maxLen), nil
}

// FindInPaper retrieves the paper's full text and returns the sentences
// containing term.
func (c *Client) FindInPaper(ctx context.Context, id, term string) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("pubmed: empty search term")
	}
	text, err := c.FullText(ctx, id)
	if err != nil {
		return nil, err
	}
	return FindSentences(text, term), nil
}

// EvidenceQuotes retrieves the paper's full text and returns sentences
// matching the given evidence type: "findings", "methods", or
// "conclusions".
func (c *Client) EvidenceQuotes(ctx context.Context, id, evidenceType string) ([]string, error) {
	keywords, ok := evidenceKeywords[strings.ToLower(strings.TrimSpace(evidenceType))]
	if !ok {
		return nil, fmt.Errorf("pubmed: unknown evidence type %q (want findings, methods, or conclusions)", evidenceType)
	}
	text, err := c.FullText(ctx, id)
	if err != nil {
		return nil, err
	}
	return filterQuotes(text, keywords), nil
}

// filterQuotes returns sentences containing any of the keywords, subject
// to the same length bounds and cap as FindSentences.
func filterQuotes(text string, keywords []string) []string {
	var quotes []string
	for _, s := range splitSentences(strings.ReplaceAll(text, "\n", " ")) {
		if len(s) < minSentenceLen || len(s) > maxSentenceLen {
			continue
		}
		lower := strings.ToLower(s)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				quotes = append(quotes, s)
				break
			}
		}
		if len(quotes) >= maxMatches {
			break
		}
	}
	return quotes
}

// SplitSections segments full text into sections on detected header
// lines. Canonical, all-caps, and numbered headings open top-level
// sections; two-capitalized-word headings become subsections of the
// preceding top-level section. Text before the first header, or text
// with no headers at all, becomes a single "Full Text" section.
func SplitSections(text string, maxLen int) []types.Section {
	if maxLen <= 0 {
		maxLen = defaultMaxSectionLength
	}

	var sections []types.Section
	var title string
	var level int
	var content []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(content, "\n"))
		content = nil
		if title == "" {
			if body == "" {
				return
			}
			sections = append(sections, types.Section{
				Title:   "Full Text",
				Content: truncateRunes(body, maxLen),
				Level:   1,
			})
			return
		}
		sec := types.Section{Title: title, Content: truncateRunes(body, maxLen), Level: level}
		if level == 2 && len(sections) > 0 {
			parent := &sections[len(sections)-1]
			parent.Subsections = append(parent.Subsections, sec)
			return
		}
		sections = append(sections, sec)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if lvl := headerLevel(line); lvl > 0 {
			flush()
			title, level = line, lvl
			continue
		}
		if line != "" {
			content = append(content, line)
		}
	}
	flush()
	return sections
}

// headerLevel classifies a line: 1 for canonical or all-caps headers,
// 2 for numbered or two-capitalized-word headings, 0 for body text.
func headerLevel(line string) int {
	if line == "" {
		return 0
	}
	for _, name := range canonicalSections {
		if strings.EqualFold(line, name) {
			return 1
		}
	}
	if isAllCaps(line) {
		return 1
	}
	if numberedHeadingRe.MatchString(line) {
		return 1
	}
	if twoWordHeadingRe.MatchString(line) {
		return 2
	}
	return 0
}

// isAllCaps reports whether a short line contains letters and none of
// them lower-case.
func isAllCaps(line string) bool {
	if len(line) < 3 || len(line) > 80 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// FindSentences returns the sentences of text containing term,
// case-insensitive. Sentences shorter than 20 or longer than 500
// characters are skipped and output is capped at 10.
func FindSentences(text, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var matches []string
	for _, s := range splitSentences(strings.ReplaceAll(text, "\n", " ")) {
		if len(s) < minSentenceLen || len(s) > maxSentenceLen {
			continue
		}
		if !strings.Contains(strings.ToLower(s), term) {
			continue
		}
		matches = append(matches, s)
		if len(matches) >= maxMatches {
			break
		}
	}
	return matches
}

// splitSentences breaks text on sentence-ending punctuation, keeping the
// punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncateRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
