package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "preferences.yaml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

// --- loading ---

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s := tempStore(t)

	p := s.Get()
	if len(p.Sources) != 3 {
		t.Fatalf("len(Sources) = %d, want 3", len(p.Sources))
	}
	if p.Search.DefaultMaxResults != 20 || p.Search.DefaultSortBy != types.SortRelevance {
		t.Errorf("search defaults = %+v", p.Search)
	}

	// Opening must not create the file; only mutations write.
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("preferences file should not exist yet: %v", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	if err := os.WriteFile(path, []byte("sources: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil || !strings.Contains(err.Error(), "parsing preferences") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestOpenRejectsInvalidPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	// Parses fine but fails validation: no sources, no sort order.
	if err := os.WriteFile(path, []byte("search:\n  default_max_results: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil || !strings.Contains(err.Error(), "invalid preferences") {
		t.Errorf("expected validation error, got: %v", err)
	}
}

// --- mutation and persistence ---

func TestMutationWritesBack(t *testing.T) {
	s := tempStore(t)

	if err := s.SetSourceEnabled(types.SourceScholar, false); err != nil {
		t.Fatalf("SetSourceEnabled: %v", err)
	}

	// The change survives a fresh load from the same file.
	reloaded, err := Open(s.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	p := reloaded.Get()
	src := p.Source(types.SourceScholar)
	if src == nil || src.Enabled {
		t.Errorf("scholar preference = %+v, want disabled", src)
	}
}

func TestSetSourceUnknown(t *testing.T) {
	s := tempStore(t)
	err := s.SetSourceEnabled("crossref", true)
	if !types.IsNotFound(err) {
		t.Errorf("expected not-found error, got: %v", err)
	}
}

func TestSetSourcePriorityAndCap(t *testing.T) {
	s := tempStore(t)

	if err := s.SetSourcePriority(types.SourceArxiv, 1); err != nil {
		t.Fatalf("SetSourcePriority: %v", err)
	}
	if err := s.SetSourceMaxResults(types.SourceArxiv, 7); err != nil {
		t.Fatalf("SetSourceMaxResults: %v", err)
	}

	p := s.Get()
	src := p.Source(types.SourceArxiv)
	if src.Priority != 1 || src.MaxResults != 7 {
		t.Errorf("arxiv preference = %+v", src)
	}
}

func TestSetSearchRejectsInvalid(t *testing.T) {
	s := tempStore(t)

	err := s.SetSearch(types.SearchPreferences{
		DefaultMaxResults: 0, // must be >= 1
		DefaultSortBy:     types.SortDate,
	})
	if err == nil || !strings.Contains(err.Error(), "invalid preferences") {
		t.Fatalf("expected validation error, got: %v", err)
	}

	// Neither memory nor disk changed.
	if got := s.Get().Search.DefaultMaxResults; got != 20 {
		t.Errorf("DefaultMaxResults = %d, want untouched 20", got)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("failed mutation should not write the file")
	}
}

func TestSetDisplayAndCache(t *testing.T) {
	s := tempStore(t)

	if err := s.SetDisplay(types.DisplayPreferences{ShowAbstracts: false, MaxAbstractLength: 100}); err != nil {
		t.Fatalf("SetDisplay: %v", err)
	}
	if err := s.SetCache(types.CachePreferences{Enabled: false, ExpiryHours: 6}); err != nil {
		t.Fatalf("SetCache: %v", err)
	}

	p := s.Get()
	if p.Display.ShowAbstracts || p.Display.MaxAbstractLength != 100 {
		t.Errorf("display = %+v", p.Display)
	}
	if p.Cache.Enabled || p.Cache.ExpiryHours != 6 {
		t.Errorf("cache = %+v", p.Cache)
	}
}

func TestReset(t *testing.T) {
	s := tempStore(t)

	if err := s.SetSourceEnabled(types.SourcePubMed, false); err != nil {
		t.Fatalf("SetSourceEnabled: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	p := s.Get()
	src := p.Source(types.SourcePubMed)
	if src == nil || !src.Enabled {
		t.Errorf("pubmed preference = %+v, want re-enabled", src)
	}
}

// --- export / import ---

func TestExportImportRoundTrip(t *testing.T) {
	s := tempStore(t)

	exported, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if err := s.SetSourceEnabled(types.SourceArxiv, false); err != nil {
		t.Fatalf("SetSourceEnabled: %v", err)
	}
	if err := s.Import(exported); err != nil {
		t.Fatalf("Import: %v", err)
	}

	p := s.Get()
	src := p.Source(types.SourceArxiv)
	if src == nil || !src.Enabled {
		t.Errorf("arxiv preference = %+v, want restored", src)
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	s := tempStore(t)

	err := s.Import([]byte("search:\n  default_sort_by: upside-down\n"))
	if err == nil {
		t.Fatal("expected error importing invalid preferences")
	}
	if got := s.Get().Search.DefaultSortBy; got != types.SortRelevance {
		t.Errorf("DefaultSortBy = %q, want untouched default", got)
	}
}

// --- snapshot isolation ---

func TestGetReturnsSnapshot(t *testing.T) {
	s := tempStore(t)

	p := s.Get()
	p.Sources[0].Enabled = false
	p.Search.DefaultMaxResults = 1

	fresh := s.Get()
	if !fresh.Sources[0].Enabled {
		t.Error("mutating a snapshot leaked into the store")
	}
	if fresh.Search.DefaultMaxResults != 20 {
		t.Error("mutating a snapshot leaked into the store")
	}
}
