package main

import (
	"strings"

	"github.com/spf13/cobra"

	"example.com/subscription-reaper/backend/internal/catalog"
)

var flagExtension string

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Search the provider catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&flagExtension, "extension", "", "TOML file with extra providers and aliases")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(_ *cobra.Command, args []string) error {
	providers := catalog.Default()
	if flagExtension != "" {
		extended, err := catalog.LoadExtension(flagExtension)
		if err != nil {
			return err
		}
		providers = extended
	}

	query := strings.Join(args, " ")
	entries := providers.Lookup(query)

	var suggestions []string
	if len(entries) == 0 {
		suggestions = providers.Suggest(query, 3)
	}

	if flagJSON {
		return printJSON(map[string]interface{}{
			"query":       query,
			"providers":   entries,
			"suggestions": suggestions,
		})
	}

	if len(entries) == 0 {
		printf("no providers match %q\n", query)
		if len(suggestions) > 0 {
			printf("did you mean: %s\n", strings.Join(suggestions, ", "))
		}
		return nil
	}
	for _, entry := range entries {
		printf("%-14s %-24s %s\n", entry.ID, entry.Name, entry.Category)
	}
	return nil
}
