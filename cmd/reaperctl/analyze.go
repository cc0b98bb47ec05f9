package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/currency"
	"example.com/subscription-reaper/backend/internal/models"
)

var (
	flagCurrency string
	flagCountry  string
	flagProvider string
	flagAPIKey   string
	flagModel    string
	flagLive     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <subscriptions.json>",
	Short: "Run the analysis engines over a JSON list of subscriptions",
	Long: "Reads [{\"name\", \"amount\", \"currency\", \"frequency\", \"category\"}] and prints insights.\n" +
		"Without --api-key only the on-device engine runs.",
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagCurrency, "currency", "USD", "Report currency")
	analyzeCmd.Flags().StringVar(&flagCountry, "country", "US", "Market used for pricing context")
	analyzeCmd.Flags().StringVar(&flagProvider, "provider", ai.ProviderGemini, "Primary engine provider")
	analyzeCmd.Flags().StringVar(&flagAPIKey, "api-key", os.Getenv("AI_API_KEY"), "Primary engine API key")
	analyzeCmd.Flags().StringVar(&flagModel, "model", "", "Primary engine model")
	analyzeCmd.Flags().BoolVar(&flagLive, "live-rates", false, "Fetch current exchange rates before analyzing")
	rootCmd.AddCommand(analyzeCmd)
}

type subscriptionInput struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Frequency string          `json:"frequency"`
	Category  string          `json:"category"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	subs, err := readSubscriptions(args[0])
	if err != nil {
		return err
	}

	defaultCurrency, err := models.ParseCurrency(flagCurrency)
	if err != nil {
		return err
	}
	country, err := models.ParseCountry(flagCountry)
	if err != nil {
		return err
	}

	factory, err := ai.NewFactory(flagProvider, ai.Endpoint{Model: flagModel, Timeout: 60 * time.Second})
	if err != nil {
		return err
	}

	converter := currency.NewConverter(nil, slog.Default())
	if flagLive {
		converter = newConverter(cmd.Context())
	}
	service := ai.NewService(slog.Default(),
		ai.NewPrimaryStrategy(ai.EngineFor(flagProvider), flagAPIKey, factory),
		ai.NewFallbackStrategy(ai.EngineOnDevice, ai.NewLocalClient(converter)),
	)

	report := service.Analyze(cmd.Context(), ai.AnalysisInput{
		Subscriptions:   subs,
		DefaultCurrency: defaultCurrency,
		Country:         country,
	})
	if report.Result == nil {
		return fmt.Errorf("no engine produced an analysis (%d attempts)", len(report.Attempts))
	}

	if flagJSON {
		return printJSON(map[string]interface{}{"engine": report.Engine, "result": report.Result})
	}

	printf("%s\n\n", report.Result.Summary)
	for _, insight := range report.Result.Insights {
		printf("[%s] %s  (save %.2f %s)\n  %s\n", insight.Type, insight.Title, insight.PotentialSavings, defaultCurrency, insight.Description)
	}
	printf("\ntotal potential savings: %.2f %s  engine: %s\n", report.Result.TotalPotentialSavings, defaultCurrency, report.Engine)
	return nil
}

func readSubscriptions(path string) ([]models.Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []subscriptionInput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	subs := make([]models.Subscription, 0, len(raw))
	for i, item := range raw {
		frequency, err := models.ParseFrequency(item.Frequency)
		if err != nil {
			return nil, fmt.Errorf("subscription %d: %w", i, err)
		}
		category := models.CategoryOther
		if strings.TrimSpace(item.Category) != "" {
			if category, err = models.ParseCategory(item.Category); err != nil {
				return nil, fmt.Errorf("subscription %d: %w", i, err)
			}
		}
		subs = append(subs, models.Subscription{
			Name:      strings.TrimSpace(item.Name),
			Amount:    item.Amount,
			Currency:  strings.ToUpper(strings.TrimSpace(item.Currency)),
			Frequency: frequency,
			Category:  category,
		})
	}
	return subs, nil
}
