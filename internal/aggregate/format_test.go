package aggregate

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

func displayAll() types.DisplayPreferences {
	return types.DisplayPreferences{
		ShowAbstracts:     true,
		ShowCitations:     true,
		ShowURLs:          true,
		MaxAbstractLength: 300,
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatResults(&buf, nil, displayAll())
	if got := buf.String(); got != "No results found.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestFormatResultsListing(t *testing.T) {
	papers := []types.Paper{
		{
			Title: "Circadian regulation of metabolism",
			Authors: []string{
				"F Rijo-Ferreira", "JS Takahashi", "A Third", "B Fourth",
			},
			Journal:         "Nature Reviews Genetics",
			PublicationDate: "2021 Mar 15",
			Source:          types.SourcePubMed,
			Citations:       42,
			URL:             "https://pubmed.ncbi.nlm.nih.gov/33844136/",
			Abstract:        "Circadian clocks align physiology with the day.",
		},
		{
			Title:        "Sleep and memory consolidation",
			Source:       types.SourceScholar,
			SearchMethod: types.MethodCloudScrape,
		},
	}

	var buf bytes.Buffer
	FormatResults(&buf, papers, displayAll())
	out := buf.String()

	for _, want := range []string{
		"1. Circadian regulation of metabolism\n",
		"   Authors: F Rijo-Ferreira, JS Takahashi, A Third et al.\n",
		"   Nature Reviews Genetics (2021 Mar 15)\n",
		"   Source: pubmed\n",
		"   Citations: 42\n",
		"   URL: https://pubmed.ncbi.nlm.nih.gov/33844136/\n",
		"   Circadian clocks align physiology with the day.\n",
		"2. Sleep and memory consolidation\n",
		"   Source: scholar (cloudscrape)\n",
		"\n2 results\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatResultsHonorsDisplayToggles(t *testing.T) {
	papers := []types.Paper{{
		Title:     "Clock genes in disease",
		Source:    types.SourcePubMed,
		Citations: 7,
		URL:       "https://example.org/paper",
		Abstract:  "An abstract.",
	}}
	dp := types.DisplayPreferences{} // everything off

	var buf bytes.Buffer
	FormatResults(&buf, papers, dp)
	out := buf.String()

	for _, skip := range []string{"Citations:", "URL:", "An abstract."} {
		if strings.Contains(out, skip) {
			t.Errorf("output should not contain %q with displays off:\n%s", skip, out)
		}
	}
	if !strings.Contains(out, "1. Clock genes in disease") {
		t.Errorf("title always renders:\n%s", out)
	}
}

func TestFormatResultsTruncatesAbstract(t *testing.T) {
	papers := []types.Paper{{
		Title:    "Long abstract",
		Source:   types.SourcePubMed,
		Abstract: strings.Repeat("word ", 100),
	}}
	dp := displayAll()
	dp.MaxAbstractLength = 20

	var buf bytes.Buffer
	FormatResults(&buf, papers, dp)
	out := buf.String()

	if !strings.Contains(out, "...") {
		t.Errorf("truncated abstract needs an ellipsis:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("word ", 10)) {
		t.Errorf("abstract was not truncated:\n%s", out)
	}
}

func TestFormatPaperDetail(t *testing.T) {
	p := &types.Paper{
		Title:           "Modeling circadian oscillators",
		Authors:         []string{"A Goldbeter", "B Author", "C Author", "D Author"},
		Journal:         "arXiv preprint",
		PublicationDate: "2023-01-17",
		Source:          types.SourceArxiv,
		ArxivID:         "2301.07041",
		DOI:             "10.48550/arXiv.2301.07041",
		Categories:      []string{"q-bio.MN", "cs.LG"},
		URL:             "https://arxiv.org/abs/2301.07041",
		PDFURL:          "https://arxiv.org/pdf/2301.07041",
		Abstract:        strings.Repeat("x", 500),
	}

	var buf bytes.Buffer
	FormatPaper(&buf, p, displayAll())
	out := buf.String()

	for _, want := range []string{
		"Modeling circadian oscillators\n",
		"Authors: A Goldbeter, B Author, C Author, D Author\n",
		"arXiv preprint (2023-01-17)\n",
		"Source: arxiv\n",
		"arXiv: 2301.07041\n",
		"DOI: 10.48550/arXiv.2301.07041\n",
		"Categories: q-bio.MN, cs.LG\n",
		"PDF: https://arxiv.org/pdf/2301.07041\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// The detail view never truncates, whatever the display preference.
	if strings.Contains(out, "...") || !strings.Contains(out, strings.Repeat("x", 500)) {
		t.Error("detail abstract must render in full")
	}
}

func TestFormatJSON(t *testing.T) {
	papers := []types.Paper{
		{Title: "Paper A", Source: types.SourceArxiv, ArxivID: "2301.07041", Citations: 3},
	}

	var buf bytes.Buffer
	if err := FormatJSON(&buf, papers); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var parsed []types.Paper
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Title != "Paper A" || parsed[0].Citations != 3 {
		t.Errorf("parsed = %+v", parsed)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("output should be indented")
	}
}

func TestFormatAuthors(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"A"}, "A"},
		{[]string{"A", "B", "C"}, "A, B, C"},
		{[]string{"A", "B", "C", "D"}, "A, B, C et al."},
	}
	for _, c := range cases {
		if got := formatAuthors(c.in); got != c.want {
			t.Errorf("formatAuthors(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncateAbstract(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 0, "exactly ten"},
		{"abcdefghij", 5, "abcde..."},
		{"abcd  efgh", 6, "abcd..."},
		{"héllo wörld", 7, "héllo w..."},
	}
	for _, c := range cases {
		if got := truncateAbstract(c.in, c.max); got != c.want {
			t.Errorf("truncateAbstract(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestVenueLine(t *testing.T) {
	cases := []struct {
		p    types.Paper
		want string
	}{
		{types.Paper{Journal: "Nature", PublicationDate: "2021"}, "Nature (2021)"},
		{types.Paper{Journal: "Nature"}, "Nature"},
		{types.Paper{PublicationDate: "2021"}, "2021"},
		{types.Paper{}, ""},
	}
	for _, c := range cases {
		if got := venueLine(c.p); got != c.want {
			t.Errorf("venueLine(%+v) = %q, want %q", c.p, got, c.want)
		}
	}
}
