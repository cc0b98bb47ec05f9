package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/subscription-reaper/backend/internal/billing"
	"example.com/subscription-reaper/backend/internal/models"
)

const dateLayout = "2006-01-02"

var (
	flagFrequency string
	flagStart     string
	flagCount     int
)

var nextBillingCmd = &cobra.Command{
	Use:   "next-billing",
	Short: "Print upcoming billing dates and reminder times for a schedule",
	RunE:  runNextBilling,
}

func init() {
	nextBillingCmd.Flags().StringVarP(&flagFrequency, "frequency", "f", "Monthly", "Weekly, Monthly or Yearly")
	nextBillingCmd.Flags().StringVarP(&flagStart, "start", "s", time.Now().UTC().Format(dateLayout), "Start date (YYYY-MM-DD)")
	nextBillingCmd.Flags().IntVarP(&flagCount, "count", "c", 3, "Number of billing dates to print")
	rootCmd.AddCommand(nextBillingCmd)
}

type billingDate struct {
	Date       string    `json:"date"`
	ReminderAt time.Time `json:"reminder_at"`
}

func runNextBilling(_ *cobra.Command, _ []string) error {
	frequency, err := models.ParseFrequency(flagFrequency)
	if err != nil {
		return err
	}

	start, err := time.Parse(dateLayout, flagStart)
	if err != nil {
		return fmt.Errorf("invalid start date %q", flagStart)
	}
	if flagCount <= 0 {
		return fmt.Errorf("count must be greater than 0")
	}

	session, err := billing.NewSession(frequency, start)
	if err != nil {
		return err
	}

	dates := make([]billingDate, 0, flagCount)
	next := session.NextBilling()
	for i := 0; i < flagCount; i++ {
		dates = append(dates, billingDate{Date: next.Format(dateLayout), ReminderAt: billing.ReminderTime(next)})
		if next, err = billing.Advance(next, frequency); err != nil {
			return err
		}
	}

	if flagJSON {
		return printJSON(dates)
	}
	for _, d := range dates {
		printf("%s  reminder %s\n", d.Date, d.ReminderAt.Format(time.RFC3339))
	}
	return nil
}
