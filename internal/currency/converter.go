package currency

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// BaseCurrency is the pivot every rate is expressed against.
const BaseCurrency = "USD"

// RateFetcher loads a fresh rate table relative to base.
type RateFetcher interface {
	FetchRates(ctx context.Context, base string) (map[string]float64, error)
}

// Snapshot is an immutable view of the rate table.
type Snapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Converter converts amounts between currencies through BaseCurrency.
type Converter struct {
	fetcher RateFetcher
	logger  *slog.Logger
	table   atomic.Pointer[Snapshot]
	group   singleflight.Group
	// onRefresh is set before the converter is shared.
	onRefresh func(Snapshot)
}

// FallbackRates returns the table used before the first successful refresh.
func FallbackRates() map[string]float64 {
	return map[string]float64{
		"USD": 1.0,
		"EUR": 0.92,
		"GBP": 0.79,
		"INR": 83.3,
		"JPY": 150.0,
	}
}

// NewConverter creates a converter seeded with FallbackRates.
func NewConverter(fetcher RateFetcher, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Converter{fetcher: fetcher, logger: logger}
	c.table.Store(&Snapshot{Base: BaseCurrency, Rates: FallbackRates()})
	return c
}

// OnRefresh registers a callback invoked after every successful refresh.
func (c *Converter) OnRefresh(fn func(Snapshot)) {
	c.onRefresh = fn
}

// Convert returns amount expressed in to. Unknown codes leave the amount unchanged.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	from = normalizeCode(from)
	to = normalizeCode(to)
	if from == to {
		return amount
	}

	rates := c.table.Load().Rates
	fromRate, ok := rates[from]
	if !ok {
		return amount
	}
	toRate, ok := rates[to]
	if !ok {
		return amount
	}

	return amount.Div(decimal.NewFromFloat(fromRate)).Mul(decimal.NewFromFloat(toRate))
}

// Has reports whether code is present in the current table.
func (c *Converter) Has(code string) bool {
	_, ok := c.table.Load().Rates[normalizeCode(code)]
	return ok
}

// Snapshot returns a copy of the current table.
func (c *Converter) Snapshot() Snapshot {
	current := c.table.Load()
	rates := make(map[string]float64, len(current.Rates))
	for code, rate := range current.Rates {
		rates[code] = rate
	}
	return Snapshot{Base: current.Base, Rates: rates, UpdatedAt: current.UpdatedAt}
}

// LastUpdated returns the time of the last successful refresh, zero if none.
func (c *Converter) LastUpdated() time.Time {
	return c.table.Load().UpdatedAt
}

// Refresh replaces the table with fresh rates. Failures keep the old table and report false.
func (c *Converter) Refresh(ctx context.Context) bool {
	if c.fetcher == nil {
		return false
	}

	result, _, _ := c.group.Do("refresh", func() (interface{}, error) {
		fetched, err := c.fetcher.FetchRates(ctx, BaseCurrency)
		if err != nil {
			c.logger.Warn("exchange rate refresh failed", slog.String("error", err.Error()))
			return false, nil
		}

		rates := make(map[string]float64, len(fetched)+1)
		for code, rate := range fetched {
			if rate <= 0 {
				continue
			}
			rates[normalizeCode(code)] = rate
		}
		rates[BaseCurrency] = 1.0

		c.table.Store(&Snapshot{Base: BaseCurrency, Rates: rates, UpdatedAt: time.Now().UTC()})
		c.logger.Info("exchange rates refreshed", slog.Int("currencies", len(rates)))
		if c.onRefresh != nil {
			c.onRefresh(c.Snapshot())
		}
		return true, nil
	})

	ok, _ := result.(bool)
	return ok
}

// Run refreshes immediately and then on every tick until ctx is done.
func (c *Converter) Run(ctx context.Context, interval time.Duration) {
	c.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
