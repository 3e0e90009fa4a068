package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-aggregator/internal/aggregate"
	"github.com/pdiddy/literature-aggregator/pkg/types"
)

var relatedCmd = &cobra.Command{
	Use:   "related <identifier>",
	Short: "Find papers related to one paper",
	Long: `Related asks the paper's source for neighbors: PubMed link neighbors,
other results for the title on Scholar, or recent papers in the same arXiv
category.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func runRelated(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	max, _ := cmd.Flags().GetInt("max-results")

	a, err := newAggregator()
	if err != nil {
		return err
	}
	defer a.Close()

	papers, err := a.Related(context.Background(), args[0], source, max)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return aggregate.FormatJSON(os.Stdout, papers)
	}
	aggregate.FormatResults(os.Stdout, papers, a.Preferences().Display)
	return nil
}

func init() {
	relatedCmd.Flags().String("source", types.SourcePubMed, "source to query: pubmed, scholar, or arxiv")
	relatedCmd.Flags().Int("max-results", 10, "maximum number of related papers")
	relatedCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(relatedCmd)
}
