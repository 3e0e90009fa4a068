// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-aggregator/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show and edit stored preferences",
	Long: `Prefs manages the persisted preferences file controlling source selection,
search defaults, display, and caching. Every change is validated and
written back atomically; an invalid change leaves the file untouched.`,
}

// --- show subcommand ---

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective preferences",
	RunE:  runPrefsShow,
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(store.Get())
	}

	data, err := store.Export()
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s", store.Path(), data)
	return nil
}

// --- set subcommand ---

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one preference",
	Long: `Set changes one preference and writes the file back. Keys:

  source.<name>.enabled       bool
  source.<name>.priority      int
  source.<name>.max-results   int
  search.max-results          int
  search.sort                 relevance | date | citations
  search.prefer-cloudscrape   bool
  search.dedup                bool
  display.abstracts           bool
  display.citations           bool
  display.urls                bool
  display.abstract-length     int
  cache.enabled               bool
  cache.expiry-hours          int`,
	Args: cobra.ExactArgs(2),
	RunE: runPrefsSet,
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := applyPrefsSet(store, args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", store.Path())
	return nil
}

func applyPrefsSet(store *prefs.Store, key, value string) error {
	parts := strings.Split(key, ".")
	current := store.Get()

	switch {
	case len(parts) == 3 && parts[0] == "source":
		name := parts[1]
		switch parts[2] {
		case "enabled":
			v, err := parseBoolValue(key, value)
			if err != nil {
				return err
			}
			return store.SetSourceEnabled(name, v)
		case "priority":
			v, err := parseIntValue(key, value)
			if err != nil {
				return err
			}
			return store.SetSourcePriority(name, v)
		case "max-results":
			v, err := parseIntValue(key, value)
			if err != nil {
				return err
			}
			return store.SetSourceMaxResults(name, v)
		}

	case len(parts) == 2 && parts[0] == "search":
		sp := current.Search
		switch parts[1] {
		case "max-results":
			v, err := parseIntValue(key, value)
			if err != nil {
				return err
			}
			sp.DefaultMaxResults = v
		case "sort":
			sp.DefaultSortBy = value
		case "prefer-cloudscrape":
			v, err := parseBoolValue(key, value)
			if err != nil {
				return err
			}
			sp.PreferCloudScrape = v
		case "dedup":
			v, err := parseBoolValue(key, value)
			if err != nil {
				return err
			}
			sp.EnableDeduplication = v
		default:
			return unknownPrefKey(key)
		}
		return store.SetSearch(sp)

	case len(parts) == 2 && parts[0] == "display":
		dp := current.Display
		switch parts[1] {
		case "abstracts":
			v, err := parseBoolValue(key, value)
			if err != nil {
				return err
			}
			dp.ShowAbstracts = v
		case "citations":
			v, err := parseBoolValue(key, value)
			if err != nil {
				return err
			}
			dp.ShowCitations = v
		case "urls":
			v, err := parseBoolValue(key, value)
			if err != nil {
				return err
			}
			dp.ShowURLs = v
		case "abstract-length":
			v, err := parseIntValue(key, value)
			if err != nil {
				return err
			}
			dp.MaxAbstractLength = v
		default:
			return unknownPrefKey(key)
		}
		return store.SetDisplay(dp)

	case len(parts) == 2 && parts[0] == "cache":
		cp := current.Cache
		switch parts[1] {
		case "enabled":
			v, err := parseBoolValue(key, value)
			if err != nil {
				return err
			}
			cp.Enabled = v
		case "expiry-hours":
			v, err := parseIntValue(key, value)
			if err != nil {
				return err
			}
			cp.ExpiryHours = v
		default:
			return unknownPrefKey(key)
		}
		return store.SetCache(cp)
	}
	return unknownPrefKey(key)
}

func parseBoolValue(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s wants a boolean, got %q", key, value)
	}
	return v, nil
}

func parseIntValue(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s wants an integer, got %q", key, value)
	}
	return v, nil
}

func unknownPrefKey(key string) error {
	return fmt.Errorf("unknown preference key %q: see 'prefs set --help' for the list", key)
}

// --- reset subcommand ---

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in default preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Reset(); err != nil {
			return err
		}
		fmt.Printf("Reset %s to defaults\n", store.Path())
		return nil
	},
}

// --- export / import subcommands ---

var prefsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the preferences as YAML to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrefsExport,
}

func runPrefsExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	data, err := store.Export()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Printf("Exported preferences to %s\n", args[0])
	return nil
}

var prefsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the preferences with the contents of a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsImport,
}

func runPrefsImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Import(data); err != nil {
		return err
	}
	fmt.Printf("Imported preferences from %s\n", args[0])
	return nil
}

func init() {
	prefsShowCmd.Flags().Bool("json", false, "output as JSON")

	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsResetCmd)
	prefsCmd.AddCommand(prefsExportCmd)
	prefsCmd.AddCommand(prefsImportCmd)

	rootCmd.AddCommand(prefsCmd)
}
