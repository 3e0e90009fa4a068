package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pdiddy/literature-aggregator/internal/aggregate"
	"github.com/pdiddy/literature-aggregator/internal/prefs"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// dataDir returns the directory holding persisted state: the preferences
// file and the result cache.
func dataDir() string {
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "literature-aggregator")
}

func prefsPath() string {
	if p := viper.GetString("prefs_path"); p != "" {
		return p
	}
	return filepath.Join(dataDir(), "preferences.yaml")
}

func cachePath() string {
	if p := viper.GetString("cache_path"); p != "" {
		return p
	}
	return filepath.Join(dataDir(), "cache.db")
}

// aggregatorConfig assembles adapter configuration from the config file,
// environment, and loaded secrets. Zero values fall through to each
// adapter's defaults.
func aggregatorConfig() types.AggregatorConfig {
	userAgent := viper.GetString("user_agent")

	return types.AggregatorConfig{
		PubMed: types.PubMedConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("pubmed.timeout"),
				UserAgent: userAgent,
			},
			APIKey:      secretDefault("entrez-api-key", viper.GetString("pubmed.api_key")),
			MaxResults:  viper.GetInt("pubmed.max_results"),
			MinInterval: viper.GetDuration("pubmed.min_interval"),
		},
		Scholar: types.ScholarConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("scholar.timeout"),
				UserAgent: userAgent,
			},
			CloudScrapeAPIKey: secretDefault("cloudscrape-api-key", viper.GetString("scholar.cloud_scrape_api_key")),
			PreferCloudScrape: viper.GetBool("scholar.prefer_cloud_scrape"),
			NavigationTimeout: viper.GetDuration("scholar.navigation_timeout"),
			MaxResults:        viper.GetInt("scholar.max_results"),
			MinInterval:       viper.GetDuration("scholar.min_interval"),
		},
		Arxiv: types.ArxivConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("arxiv.timeout"),
				UserAgent: userAgent,
			},
			MaxResults:  viper.GetInt("arxiv.max_results"),
			MinInterval: viper.GetDuration("arxiv.min_interval"),
		},
		PrefsPath: prefsPath(),
		CachePath: cachePath(),
	}
}

// openStore opens the preferences store at the configured path.
func openStore() (*prefs.Store, error) {
	return prefs.Open(prefsPath())
}

// newAggregator wires the adapters, preferences, and cache for one
// command invocation. Callers must Close it.
func newAggregator() (*aggregate.Aggregator, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	return aggregate.New(aggregatorConfig(), store, os.Stderr)
}
