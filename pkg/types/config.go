// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "literature-aggregator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the structured-API adapter.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional E-utilities key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the default result cap for searches (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MinInterval is the minimum spacing between outbound calls
	// (default 100ms).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
}

// ScholarConfig holds settings for the dual-backend scrape adapter.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline"`

	// CloudScrapeAPIKey enables the markdown-rendering backend when set.
	CloudScrapeAPIKey string `json:"cloud_scrape_api_key,omitempty" yaml:"cloud_scrape_api_key,omitempty"`

	// PreferCloudScrape favors the markdown-rendering backend for each
	// call when a key is configured.
	PreferCloudScrape bool `json:"prefer_cloud_scrape" yaml:"prefer_cloud_scrape"`

	// NavigationTimeout bounds headless-browser page loads (default 30s).
	NavigationTimeout time.Duration `json:"navigation_timeout" yaml:"navigation_timeout"`

	// MaxResults is the default result cap for searches (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MinInterval is the minimum spacing between outbound calls
	// (default 2s; the provider blocks aggressive clients).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
}

// ArxivConfig holds settings for the preprint adapter.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the default result cap for searches (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MinInterval is the minimum spacing between outbound calls
	// (default 3s per the provider's terms).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
}

// AggregatorConfig groups adapter configurations with aggregator-level
// settings.
type AggregatorConfig struct {
	PubMed  PubMedConfig  `json:"pubmed" yaml:"pubmed"`
	Scholar ScholarConfig `json:"scholar" yaml:"scholar"`
	Arxiv   ArxivConfig   `json:"arxiv" yaml:"arxiv"`

	// PrefsPath locates the persisted preferences file.
	PrefsPath string `json:"prefs_path" yaml:"prefs_path"`

	// CachePath locates the SQLite result cache. Empty disables caching
	// regardless of preferences.
	CachePath string `json:"cache_path" yaml:"cache_path"`
}
