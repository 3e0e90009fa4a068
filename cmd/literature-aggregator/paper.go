// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-aggregator/internal/aggregate"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Inspect a single paper (details, full text, sections, search within)",
	Long: `Paper fetches one paper from a source and inspects it. Identifiers are
source-specific: a PMID for pubmed, a title for scholar, an arXiv id for
arxiv. The full-text operations work on the pubmed source only.`,
}

// --- details subcommand ---

var paperDetailsCmd = &cobra.Command{
	Use:   "details <identifier>",
	Short: "Show one paper's metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaperDetails,
}

func runPaperDetails(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Details(context.Background(), args[0], source)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return aggregate.FormatJSON(os.Stdout, []types.Paper{*p})
	}
	aggregate.FormatPaper(os.Stdout, p, a.Preferences().Display)
	return nil
}

// --- fulltext subcommand ---

var paperFullTextCmd = &cobra.Command{
	Use:   "fulltext <pmid>",
	Short: "Fetch the best available full text for a pubmed paper",
	Long: `Fulltext walks the retrieval strategies in order (PMC article page, OA
endpoint, PDF extraction, efetch XML, DOI resolver page) and prints the
first one that yields a full article. When every strategy fails it falls
back to the abstract.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaperFullText,
}

func runPaperFullText(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	text, err := a.FullText(context.Background(), args[0], source)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// --- sections subcommand ---

var paperSectionsCmd = &cobra.Command{
	Use:   "sections <pmid>",
	Short: "Segment a pubmed paper's full text into titled sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaperSections,
}

func runPaperSections(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	maxLen, _ := cmd.Flags().GetInt("max-length")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	sections, err := a.Sections(context.Background(), args[0], source, maxLen)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sections)
	}

	for _, sec := range sections {
		fmt.Printf("=== %s ===\n%s\n\n", sec.Title, sec.Content)
		for _, sub := range sec.Subsections {
			fmt.Printf("--- %s ---\n%s\n\n", sub.Title, sub.Content)
		}
	}
	return nil
}

// --- find subcommand ---

var paperFindCmd = &cobra.Command{
	Use:   "find <pmid> <term>",
	Short: "Find sentences mentioning a term in a pubmed paper",
	Args:  cobra.ExactArgs(2),
	RunE:  runPaperFind,
}

func runPaperFind(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.FindInPaper(context.Background(), args[0], source, args[1])
	if err != nil {
		return err
	}
	printMatches(matches)
	return nil
}

// --- quotes subcommand ---

var paperQuotesCmd = &cobra.Command{
	Use:   "quotes <pmid> <type>",
	Short: "Extract evidence sentences (findings, methods, or conclusions)",
	Args:  cobra.ExactArgs(2),
	RunE:  runPaperQuotes,
}

func runPaperQuotes(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	quotes, err := a.EvidenceQuotes(context.Background(), args[0], source, args[1])
	if err != nil {
		return err
	}
	printMatches(quotes)
	return nil
}

func printMatches(matches []string) {
	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return
	}
	for i, m := range matches {
		fmt.Printf("%d. %s\n", i+1, m)
	}
}

func init() {
	paperCmd.PersistentFlags().String("source", types.SourcePubMed, "source to query: pubmed, scholar, or arxiv")
	paperCmd.PersistentFlags().Bool("json", false, "output as JSON")

	paperSectionsCmd.Flags().Int("max-length", 1500, "maximum characters per section")

	paperCmd.AddCommand(paperDetailsCmd)
	paperCmd.AddCommand(paperFullTextCmd)
	paperCmd.AddCommand(paperSectionsCmd)
	paperCmd.AddCommand(paperFindCmd)
	paperCmd.AddCommand(paperQuotesCmd)

	rootCmd.AddCommand(paperCmd)
}
