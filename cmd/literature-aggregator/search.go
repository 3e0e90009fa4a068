package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-aggregator/internal/aggregate"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the configured literature sources",
	Long: `Search queries the enabled sources (PubMed, Google Scholar, arXiv) in
parallel, merges duplicate titles into one record, sorts, and prints the
results. A failing source is reported as a warning on stderr; the other
sources still contribute.`,
	RunE: runSearch,
}

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show which Google Scholar backend a search would use",
	RunE:  runBackend,
}

func init() {
	searchCmd.Flags().String("sources", "", "comma-separated source override (pubmed,scholar,arxiv)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (0 = stored preference)")
	searchCmd.Flags().String("sort", "", "sort order: relevance, date, or citations")
	searchCmd.Flags().String("journal", "", "restrict the pubmed query to a journal")
	searchCmd.Flags().String("author", "", "restrict pubmed and arxiv queries to an author")
	searchCmd.Flags().String("category", "", "restrict the arxiv query to a category (e.g. cs.LG)")
	searchCmd.Flags().Int("year-from", 0, "keep scholar results from this year on")
	searchCmd.Flags().Int("year-to", 0, "keep scholar results up to this year")
	searchCmd.Flags().String("backend", "", "scholar backend for this call: browser or cloudscrape")
	searchCmd.Flags().Bool("no-prefs", false, "ignore stored preferences for this call")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	backendCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(backendCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}
	query := strings.Join(args, " ")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	papers, err := a.Search(context.Background(), query, searchOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return aggregate.FormatJSON(os.Stdout, papers)
	}
	aggregate.FormatResults(os.Stdout, papers, a.Preferences().Display)
	return nil
}

func searchOptsFromFlags(cmd *cobra.Command) aggregate.SearchOptions {
	sources, _ := cmd.Flags().GetString("sources")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	sortBy, _ := cmd.Flags().GetString("sort")
	journal, _ := cmd.Flags().GetString("journal")
	author, _ := cmd.Flags().GetString("author")
	category, _ := cmd.Flags().GetString("category")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	backend, _ := cmd.Flags().GetString("backend")
	noPrefs, _ := cmd.Flags().GetBool("no-prefs")

	opts := aggregate.SearchOptions{
		MaxResults:        maxResults,
		SortBy:            sortBy,
		Journal:           journal,
		Author:            author,
		Category:          category,
		YearFrom:          yearFrom,
		YearTo:            yearTo,
		PreferBackend:     backend,
		BypassPreferences: noPrefs,
	}
	for _, s := range strings.Split(sources, ",") {
		if s = strings.TrimSpace(s); s != "" {
			opts.Sources = append(opts.Sources, s)
		}
	}
	return opts
}

func runBackend(cmd *cobra.Command, args []string) error {
	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	info := a.MethodInfo()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("Backend: %s\n", info.Backend)
	fmt.Printf("Cloud scrape configured: %v\n", info.CloudScrapeConfigured)
	fmt.Printf("Prefer cloud scrape: %v\n", info.PreferCloudScrape)
	fmt.Printf("Reason: %s\n", info.Reason)
	return nil
}
