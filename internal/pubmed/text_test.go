package pubmed

import (
	"fmt"
	"strings"
	"testing"
)

func TestHeaderLevel(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"INTRODUCTION", 1},
		{"MATERIALS AND METHODS", 1},
		{"Methods", 1},
		{"results", 1},
		{"1. Introduction", 1},
		{"2 Background Work", 1},
		{"Statistical Analysis", 2},
		{"Data Availability", 2},
		{"The patients were enrolled between 2019 and 2021.", 0},
		{"We found a significant effect.", 0},
		{"", 0},
		{"2021", 0},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := headerLevel(tt.line); got != tt.want {
				t.Errorf("headerLevel(%q) = %d, want %d", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsAllCaps(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"INTRODUCTION", true},
		{"RESULTS AND DISCUSSION", true},
		{"Introduction", false},
		{"AB", false},
		{"1234 5678", false},
		{strings.Repeat("A", 81), false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := isAllCaps(tt.line); got != tt.want {
				t.Errorf("isAllCaps(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitSections(t *testing.T) {
	text := strings.Join([]string{
		"INTRODUCTION",
		"Circadian rhythms are endogenous oscillations.",
		"They persist in constant darkness.",
		"Methods",
		"We recorded wheel-running activity.",
		"Statistical Analysis",
		"Mixed models were fitted in R.",
		"RESULTS",
		"Period length shortened significantly.",
	}, "\n")

	sections := SplitSections(text, 0)
	if len(sections) != 3 {
		t.Fatalf("len(sections) = %d, want 3: %+v", len(sections), sections)
	}

	if sections[0].Title != "INTRODUCTION" {
		t.Errorf("sections[0].Title = %q", sections[0].Title)
	}
	if !strings.Contains(sections[0].Content, "constant darkness") {
		t.Errorf("sections[0].Content = %q", sections[0].Content)
	}

	// "Statistical Analysis" nests under the preceding Methods section.
	if sections[1].Title != "Methods" {
		t.Errorf("sections[1].Title = %q", sections[1].Title)
	}
	if len(sections[1].Subsections) != 1 {
		t.Fatalf("Methods subsections = %d, want 1", len(sections[1].Subsections))
	}
	sub := sections[1].Subsections[0]
	if sub.Title != "Statistical Analysis" || sub.Level != 2 {
		t.Errorf("subsection = %+v", sub)
	}
	if !strings.Contains(sub.Content, "Mixed models") {
		t.Errorf("subsection content = %q", sub.Content)
	}

	if sections[2].Title != "RESULTS" {
		t.Errorf("sections[2].Title = %q", sections[2].Title)
	}
}

func TestSplitSectionsNoHeaders(t *testing.T) {
	text := "Just a plain abstract with no headers at all. It still has some sentences."
	sections := SplitSections(text, 0)
	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(sections))
	}
	if sections[0].Title != "Full Text" {
		t.Errorf("Title = %q, want Full Text", sections[0].Title)
	}
	if sections[0].Content != text {
		t.Errorf("Content = %q", sections[0].Content)
	}
}

func TestSplitSectionsTruncatesContent(t *testing.T) {
	long := strings.Repeat("word ", 100)
	text := "METHODS\n" + long
	sections := SplitSections(text, 50)
	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(sections))
	}
	if got := len(sections[0].Content); got != 50 {
		t.Errorf("len(Content) = %d, want 50", got)
	}
}

func TestSplitSectionsPreamble(t *testing.T) {
	text := "Some text before any header appears in the document.\nRESULTS\nThe findings follow."
	sections := SplitSections(text, 0)
	if len(sections) != 2 {
		t.Fatalf("len(sections) = %d, want 2", len(sections))
	}
	if sections[0].Title != "Full Text" {
		t.Errorf("sections[0].Title = %q", sections[0].Title)
	}
	if sections[1].Title != "RESULTS" {
		t.Errorf("sections[1].Title = %q", sections[1].Title)
	}
}

func TestSplitSentences(t *testing.T) {
	text := "First sentence. Second one! Third sentence? Trailing fragment"
	got := splitSentences(text)
	want := []string{"First sentence.", "Second one!", "Third sentence?", "Trailing fragment"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindSentences(t *testing.T) {
	text := strings.Join([]string{
		"Melatonin rises in the evening under dim light conditions.",
		"Short one.",
		"MELATONIN suppression was observed under bright light exposure.",
		"This sentence does not mention the hormone at all.",
	}, " ")

	got := FindSentences(text, "melatonin")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	// "Short one." matches the length filter, not the term; the
	// unrelated sentence matches neither.
	if !strings.Contains(got[1], "MELATONIN suppression") {
		t.Errorf("got[1] = %q", got[1])
	}
}

func TestFindSentencesBounds(t *testing.T) {
	short := "Tiny hit."
	long := "hit " + strings.Repeat("x", 600) + "."
	ok := "This is a perfectly sized sentence with a hit inside."
	got := FindSentences(short+" "+long+" "+ok, "hit")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1: %v", len(got), got)
	}
	if got[0] != ok {
		t.Errorf("got %q", got[0])
	}
}

func TestFindSentencesCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "Sentence number %d mentions circadian biology. ", i)
	}
	got := FindSentences(b.String(), "circadian")
	if len(got) != maxMatches {
		t.Errorf("len = %d, want %d", len(got), maxMatches)
	}
}

func TestFilterQuotes(t *testing.T) {
	text := strings.Join([]string{
		"We found that sleep deprivation impairs memory consolidation.",
		"The weather was pleasant throughout the study period window.",
		"Results showed a marked decrease in reaction time accuracy.",
	}, " ")

	got := filterQuotes(text, evidenceKeywords["findings"])
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if !strings.Contains(got[0], "We found") {
		t.Errorf("got[0] = %q", got[0])
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello"},
		{"héllo wörld", 4, "héll"},
		{"hello", 0, "hello"},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
