package scholar

import (
	"strings"
	"testing"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// Rendered results page with three parseable records and one
// citation-only record that has no title link.
const sampleResultsHTML = `<!DOCTYPE html>
<html><body>
<div id="gs_res_ccl_mid">
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ggs gs_fl">
      <div class="gs_or_ggsm"><a href="https://pub.example.org/circadian.pdf"><span>[PDF]</span> pub.example.org</a></div>
    </div>
    <div class="gs_ri">
      <h3 class="gs_rt"><a href="https://pub.example.org/circadian">Circadian regulation of sleep and metabolism</a></h3>
      <div class="gs_a">F Rijo-Ferreira, JS Takahashi - Nature Reviews Genetics, 2021 - nature.com</div>
      <div class="gs_rs">Genomics has expanded our view of the circadian clock and its outputs.</div>
      <div class="gs_fl"><a href="#">Save</a> <a href="#">Cite</a> <a href="#">Cited by 512</a> <a href="#">Related articles</a></div>
    </div>
  </div>
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt"><span>[CITATION]</span> Uncrawled citation record</h3>
      <div class="gs_a">X Someone - 1999</div>
    </div>
  </div>
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt"><a href="https://journals.example.org/memory">Sleep-dependent memory consolidation</a></h3>
      <div class="gs_a">M Walker, R Stickgold - Neuron, 2019 - cell.com</div>
      <div class="gs_rs">A review of the role of sleep in memory.</div>
      <div class="gs_fl"><a href="#">Cited by 89</a></div>
    </div>
  </div>
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt"><a href="https://example.org/third">Third result for capping</a></h3>
      <div class="gs_a">A Author - 2020</div>
      <div class="gs_fl"></div>
    </div>
  </div>
</div>
</body></html>`

// Markdown rendering of a results page, the shape the cloud-scrape
// backend returns.
const sampleResultsMarkdown = `# Google Scholar

[Skip to main content](https://scholar.example.org/#content)

### [Circadian regulation of sleep and metabolism](https://pub.example.org/circadian)

F Rijo-Ferreira, JS Takahashi - Nature Reviews Genetics, 2021 - nature.com

Genomics has expanded our view of the circadian clock and its outputs.

[Cited by 512](https://scholar.example.org/scholar?cites=1)
[Related articles](https://scholar.example.org/scholar?q=related:1)
[[PDF] nature.com](https://pub.example.org/circadian.pdf)

### [Sleep-dependent memory consolidation](https://journals.example.org/memory)

M Walker, R Stickgold - Neuron, 2019 - cell.com

A review of the role of sleep in memory.

[Cited by 89](https://scholar.example.org/scholar?cites=2)
`

// --- HTML parsing ---

func TestParseResultsHTML(t *testing.T) {
	papers, err := parseResultsHTML(sampleResultsHTML, 10)
	if err != nil {
		t.Fatalf("parseResultsHTML: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("len(papers) = %d, want 3 (citation-only record skipped)", len(papers))
	}

	p := papers[0]
	if p.Title != "Circadian regulation of sleep and metabolism" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.URL != "https://pub.example.org/circadian" {
		t.Errorf("URL = %q", p.URL)
	}
	if got := strings.Join(p.Authors, ", "); got != "F Rijo-Ferreira, JS Takahashi" {
		t.Errorf("Authors = %q", got)
	}
	if p.Journal != "Nature Reviews Genetics" {
		t.Errorf("Journal = %q", p.Journal)
	}
	if p.PublicationDate != "2021" {
		t.Errorf("PublicationDate = %q", p.PublicationDate)
	}
	if !strings.Contains(p.Abstract, "Genomics has expanded") {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	if p.Citations != 512 {
		t.Errorf("Citations = %d, want 512", p.Citations)
	}
	if p.PDFURL != "https://pub.example.org/circadian.pdf" {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}
	if p.Source != types.SourceScholar {
		t.Errorf("Source = %q", p.Source)
	}

	if papers[1].Citations != 89 {
		t.Errorf("papers[1].Citations = %d, want 89", papers[1].Citations)
	}
	if papers[1].PDFURL != "" {
		t.Errorf("papers[1].PDFURL = %q, want empty", papers[1].PDFURL)
	}
	if papers[2].Journal != "" || papers[2].PublicationDate != "2020" {
		t.Errorf("papers[2] venue = (%q, %q), want (\"\", \"2020\")",
			papers[2].Journal, papers[2].PublicationDate)
	}
}

func TestParseResultsHTMLCapsDuringParse(t *testing.T) {
	papers, err := parseResultsHTML(sampleResultsHTML, 2)
	if err != nil {
		t.Fatalf("parseResultsHTML: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	if papers[1].Title != "Sleep-dependent memory consolidation" {
		t.Errorf("papers[1].Title = %q", papers[1].Title)
	}
}

func TestParseResultsHTMLEmptyPage(t *testing.T) {
	papers, err := parseResultsHTML(`<html><body><div id="gs_res_ccl_mid"></div></body></html>`, 10)
	if err != nil {
		t.Fatalf("parseResultsHTML: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("len(papers) = %d, want 0", len(papers))
	}
}

// --- markdown parsing ---

func TestParseResultsMarkdown(t *testing.T) {
	papers := parseResultsMarkdown(sampleResultsMarkdown, 10)
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	p := papers[0]
	if p.Title != "Circadian regulation of sleep and metabolism" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.URL != "https://pub.example.org/circadian" {
		t.Errorf("URL = %q", p.URL)
	}
	if got := strings.Join(p.Authors, ", "); got != "F Rijo-Ferreira, JS Takahashi" {
		t.Errorf("Authors = %q", got)
	}
	if p.Journal != "Nature Reviews Genetics" {
		t.Errorf("Journal = %q", p.Journal)
	}
	if p.PublicationDate != "2021" {
		t.Errorf("PublicationDate = %q", p.PublicationDate)
	}
	if !strings.Contains(p.Abstract, "Genomics has expanded") {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	if strings.Contains(p.Abstract, "Cited by") {
		t.Errorf("Abstract should not pick up link lines: %q", p.Abstract)
	}
	if p.Citations != 512 {
		t.Errorf("Citations = %d, want 512", p.Citations)
	}
	if p.PDFURL != "https://pub.example.org/circadian.pdf" {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}

	if papers[1].Citations != 89 {
		t.Errorf("papers[1].Citations = %d, want 89", papers[1].Citations)
	}
}

func TestParseResultsMarkdownCapsResults(t *testing.T) {
	papers := parseResultsMarkdown(sampleResultsMarkdown, 1)
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}
}

func TestParseResultsMarkdownNoResults(t *testing.T) {
	papers := parseResultsMarkdown("# Google Scholar\n\nYour search did not match any articles.\n", 10)
	if len(papers) != 0 {
		t.Errorf("len(papers) = %d, want 0", len(papers))
	}
}

// --- shared field parsing ---

func TestParseAuthorLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantAuthors string
		wantJournal string
		wantYear    string
	}{
		{
			name:        "authors journal year site",
			line:        "F Rijo-Ferreira, JS Takahashi - Nature Reviews Genetics, 2021 - nature.com",
			wantAuthors: "F Rijo-Ferreira, JS Takahashi",
			wantJournal: "Nature Reviews Genetics",
			wantYear:    "2021",
		},
		{
			name:        "truncated author list",
			line:        "J Smith, A Jones… - Cell, 2020 - cell.com",
			wantAuthors: "J Smith, A Jones",
			wantJournal: "Cell",
			wantYear:    "2020",
		},
		{
			name:        "year without journal",
			line:        "A Author - 2020",
			wantAuthors: "A Author",
			wantJournal: "",
			wantYear:    "2020",
		},
		{
			name:        "journal without year",
			line:        "C Author - Proc Natl Acad Sci",
			wantAuthors: "C Author",
			wantJournal: "Proc Natl Acad Sci",
			wantYear:    "",
		},
		{
			name:        "authors only",
			line:        "D Solo",
			wantAuthors: "D Solo",
			wantJournal: "",
			wantYear:    "",
		},
		{
			name:        "empty",
			line:        "",
			wantAuthors: "",
			wantJournal: "",
			wantYear:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authors, journal, year := parseAuthorLine(tt.line)
			if got := strings.Join(authors, ", "); got != tt.wantAuthors {
				t.Errorf("authors = %q, want %q", got, tt.wantAuthors)
			}
			if journal != tt.wantJournal {
				t.Errorf("journal = %q, want %q", journal, tt.wantJournal)
			}
			if year != tt.wantYear {
				t.Errorf("year = %q, want %q", year, tt.wantYear)
			}
		})
	}
}

func TestParseCitedBy(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Cited by 512", 512},
		{"Save Cite Cited by 1234 Related articles All 5 versions", 1234},
		{"Related articles", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseCitedBy(tt.in); got != tt.want {
			t.Errorf("parseCitedBy(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
