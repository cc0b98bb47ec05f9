package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagQuiet bool
	flagJSON  bool
)

var rootCmd = &cobra.Command{
	Use:          "reaperctl",
	Short:        "Subscription Reaper operations CLI",
	Long:         "Run migrations and exercise the provider catalog, billing schedule, rates and analysis engine offline.",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if flagQuiet {
			level = slog.LevelError
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
