package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"example.com/subscription-reaper/backend/internal/currency"
	"example.com/subscription-reaper/backend/internal/models"
)

var (
	flagOffline  bool
	flagRatesURL string
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> <from> <to>",
	Short: "Convert an amount between currencies",
	Args:  cobra.ExactArgs(3),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&flagOffline, "offline", false, "Use the built-in fallback rates")
	convertCmd.Flags().StringVar(&flagRatesURL, "rates-url", "https://api.frankfurter.app", "Exchange rate service")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}

	from, to := strings.ToUpper(args[1]), strings.ToUpper(args[2])
	if !models.IsCurrencyCode(from) || !models.IsCurrencyCode(to) {
		return fmt.Errorf("currencies must be three letter codes")
	}

	converter := newConverter(cmd.Context())
	converted := converter.Convert(amount, from, to).Round(2)
	snapshot := converter.Snapshot()

	if flagJSON {
		return printJSON(map[string]interface{}{
			"amount":     amount,
			"from":       from,
			"to":         to,
			"converted":  converted,
			"updated_at": snapshot.UpdatedAt,
		})
	}

	printf("%s %s = %s %s\n", amount.String(), from, converted.StringFixed(2), to)
	if snapshot.UpdatedAt.IsZero() {
		printf("(fallback rates)\n")
	}
	return nil
}

// newConverter returns a converter with live rates unless --offline is set or the fetch fails.
func newConverter(ctx context.Context) *currency.Converter {
	if ctx == nil {
		ctx = context.Background()
	}

	if flagOffline {
		return currency.NewConverter(nil, slog.Default())
	}

	converter := currency.NewConverter(currency.NewFrankfurterClient(flagRatesURL, 10*time.Second), slog.Default())
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	converter.Refresh(ctx)
	return converter
}
