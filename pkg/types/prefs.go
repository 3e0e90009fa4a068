// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SortOrder values accepted by search preferences and search options.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
	SortCitations = "citations"
)

// SourcePreference configures one source within the preferences object.
type SourcePreference struct {
	// Name is the source identifier ("pubmed", "scholar", "arxiv").
	Name string `json:"name" yaml:"name" validate:"required"`

	// Enabled controls whether the aggregator queries this source when no
	// explicit override is given.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Priority orders sources for dispatch and merge precedence; lower
	// numbers win.
	Priority int `json:"priority" yaml:"priority" validate:"gte=0"`

	// MaxResults caps results from this source. 0 means an equal split of
	// the overall cap.
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=0"`
}

// SearchPreferences holds the stored search defaults.
type SearchPreferences struct {
	// DefaultMaxResults is the overall result cap when a call does not
	// specify one.
	DefaultMaxResults int `json:"default_max_results" yaml:"default_max_results" validate:"gte=1"`

	// DefaultSortBy is "relevance", "date", or "citations".
	DefaultSortBy string `json:"default_sort_by" yaml:"default_sort_by" validate:"oneof=relevance date citations"`

	// PreferCloudScrape favors the markdown-rendering backend for the
	// scrape provider when a cloud-scrape key is configured.
	PreferCloudScrape bool `json:"prefer_cloud_scrape" yaml:"prefer_cloud_scrape"`

	// EnableDeduplication controls title-based merge across sources.
	EnableDeduplication bool `json:"enable_deduplication" yaml:"enable_deduplication"`
}

// DisplayPreferences holds the stored rendering defaults for FormatResults.
type DisplayPreferences struct {
	ShowAbstracts bool `json:"show_abstracts" yaml:"show_abstracts"`
	ShowCitations bool `json:"show_citations" yaml:"show_citations"`
	ShowURLs      bool `json:"show_urls" yaml:"show_urls"`

	// MaxAbstractLength truncates rendered abstracts.
	MaxAbstractLength int `json:"max_abstract_length" yaml:"max_abstract_length" validate:"gte=0"`
}

// CachePreferences holds the stored result-cache settings.
type CachePreferences struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ExpiryHours is the cache entry lifetime.
	ExpiryHours int `json:"expiry_hours" yaml:"expiry_hours" validate:"gte=0"`
}

// Preferences is the persisted, process-wide configuration object. It is
// loaded once at startup, mutated through explicit setters that write it
// back, and round-trips as one opaque structure through export/import.
type Preferences struct {
	Sources []SourcePreference `json:"sources" yaml:"sources" validate:"required,dive"`
	Search  SearchPreferences  `json:"search" yaml:"search"`
	Display DisplayPreferences `json:"display" yaml:"display"`
	Cache   CachePreferences   `json:"cache" yaml:"cache"`
}

// DefaultPreferences returns the built-in defaults: all three sources
// enabled in pubmed, scholar, arxiv priority order.
func DefaultPreferences() Preferences {
	return Preferences{
		Sources: []SourcePreference{
			{Name: SourcePubMed, Enabled: true, Priority: 1, MaxResults: 0},
			{Name: SourceScholar, Enabled: true, Priority: 2, MaxResults: 0},
			{Name: SourceArxiv, Enabled: true, Priority: 3, MaxResults: 0},
		},
		Search: SearchPreferences{
			DefaultMaxResults:   20,
			DefaultSortBy:       SortRelevance,
			PreferCloudScrape:   false,
			EnableDeduplication: true,
		},
		Display: DisplayPreferences{
			ShowAbstracts:     true,
			ShowCitations:     true,
			ShowURLs:          true,
			MaxAbstractLength: 300,
		},
		Cache: CachePreferences{
			Enabled:     true,
			ExpiryHours: 24,
		},
	}
}

// Source returns the preference entry for name, or nil if absent.
func (p *Preferences) Source(name string) *SourcePreference {
	for i := range p.Sources {
		if p.Sources[i].Name == name {
			return &p.Sources[i]
		}
	}
	return nil
}
