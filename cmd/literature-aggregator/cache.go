package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the search result cache",
	Long: `Cache manages the SQLite result cache. Entries expire after the stored
cache.expiry-hours preference; purge removes only expired entries, clear
removes everything.`,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cache entries older than the configured expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAggregator()
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.PurgeCache(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAggregator()
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.ClearCache(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
