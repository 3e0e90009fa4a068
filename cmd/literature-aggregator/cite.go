package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-aggregator/internal/citation"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite",
	Short: "Generate citations and look up citation counts",
}

// --- format subcommand ---

var citeFormatCmd = &cobra.Command{
	Use:   "format <identifier>",
	Short: "Render a paper as a formatted citation",
	Long: `Format fetches the paper from its source and renders it in the requested
citation style: bibtex, apa, mla, or chicago.`,
	Args: cobra.ExactArgs(1),
	RunE: runCiteFormat,
}

func runCiteFormat(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	style, _ := cmd.Flags().GetString("style")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Details(context.Background(), args[0], source)
	if err != nil {
		return err
	}

	text, err := citation.Format(p, style)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// --- count subcommand ---

var citeCountCmd = &cobra.Command{
	Use:   "count <identifier>",
	Short: "Look up a paper's citation count",
	Long: `Count reports the citation count the source exposes for the paper. PubMed
counts come from the article's identifier list and are best effort; arXiv
never exposes counts.`,
	Args: cobra.ExactArgs(1),
	RunE: runCiteCount,
}

func runCiteCount(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	count, found, err := a.CitationCount(context.Background(), args[0], source)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("No citation count available from %s for %s\n", source, args[0])
		return nil
	}
	fmt.Printf("Citations: %d\n", count)
	return nil
}

// --- scholar-count subcommand ---

var citeScholarCountCmd = &cobra.Command{
	Use:   "scholar-count <title...>",
	Short: "Look up a paper's Google Scholar citation count by title",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCiteScholarCount,
}

func runCiteScholarCount(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	count, _, err := a.CitationCount(context.Background(), title, types.SourceScholar)
	if err != nil {
		return err
	}
	fmt.Printf("Citations: %d\n", count)
	return nil
}

func init() {
	citeFormatCmd.Flags().String("style", citation.StyleBibTeX, "citation style: bibtex, apa, mla, or chicago")
	citeFormatCmd.Flags().String("source", types.SourcePubMed, "source to fetch the paper from")
	citeCountCmd.Flags().String("source", types.SourcePubMed, "source to ask for the count")

	citeCmd.AddCommand(citeFormatCmd)
	citeCmd.AddCommand(citeCountCmd)
	citeCmd.AddCommand(citeScholarCountCmd)

	rootCmd.AddCommand(citeCmd)
}
