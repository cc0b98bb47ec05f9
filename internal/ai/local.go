package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/spending"
)

var (
	listingLine    = regexp.MustCompile(`Name: (.+?), Amount: (-?[0-9]+(?:\.[0-9]+)?) ([A-Za-z]{3}), Frequency: ([A-Za-z]+), Category: ([A-Za-z]+)`)
	reportCurrency = regexp.MustCompile(`Report all amounts in ([A-Za-z]{3})`)
	notifyName     = regexp.MustCompile(`(?m)^Name: (.+)$`)
	notifyAmount   = regexp.MustCompile(`(?m)^Amount: (\S+) (\S+)$`)
	notifyFreq     = regexp.MustCompile(`(?m)^Frequency: (.+)$`)
)

const (
	notificationPromptPrefix = "Generate a personalized renewal notification"
	localModel               = "heuristic-v1"
)

var (
	yearlyDiscount   = decimal.RequireFromString("0.16")
	highCostDiscount = decimal.RequireFromString("0.25")
	months           = decimal.NewFromInt(12)
)

// LocalClient is the on-device engine. It answers the analysis and notification
// prompts with deterministic heuristics and needs no network or credentials.
type LocalClient struct {
	converter spending.Converter
}

func NewLocalClient(converter spending.Converter) *LocalClient {
	return &LocalClient{converter: converter}
}

type localSubscription struct {
	name     string
	amount   decimal.Decimal
	currency string
	freq     models.Frequency
	category string
	monthly  decimal.Decimal
}

func (c *LocalClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	prompt := lastUserMessage(messages)
	if strings.TrimSpace(prompt) == "" {
		return "", nil, ErrEmptyResponse
	}

	var (
		payload interface{}
		err     error
	)
	if strings.HasPrefix(strings.TrimSpace(prompt), notificationPromptPrefix) {
		payload, err = c.notify(prompt)
	} else {
		payload, err = c.analyze(prompt)
	}
	if err != nil {
		return "", nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	return string(body), body, nil
}

func (c *LocalClient) analyze(prompt string) (*AnalysisResult, error) {
	target := "USD"
	if match := reportCurrency.FindStringSubmatch(prompt); match != nil {
		target = strings.ToUpper(match[1])
	}

	subs := c.parseListing(prompt, target)
	if len(subs) == 0 {
		return nil, errors.New("local engine: prompt lists no subscriptions")
	}

	total := decimal.Zero
	for _, sub := range subs {
		total = total.Add(sub.monthly)
	}
	average := total.Div(decimal.NewFromInt(int64(len(subs))))

	insights := make([]Insight, 0)
	duplicated := make(map[int]bool)

	for i := range subs {
		for j := i + 1; j < len(subs); j++ {
			if duplicated[j] || subs[i].category != subs[j].category || !similarNames(subs[i].name, subs[j].name) {
				continue
			}
			duplicated[j] = true
			cheaper := decimal.Min(subs[i].monthly, subs[j].monthly)
			insights = append(insights, Insight{
				Title:            subs[j].name,
				Description:      fmt.Sprintf("%s looks like a duplicate of %s. Cancel one of them.", subs[j].name, subs[i].name),
				PotentialSavings: money(cheaper.Mul(months)),
				Priority:         0.9,
				Type:             InsightDuplicate,
			})
		}
	}

	for i, sub := range subs {
		if duplicated[i] {
			continue
		}
		if len(subs) > 1 && sub.monthly.GreaterThanOrEqual(average.Mul(decimal.NewFromInt(2))) {
			insights = append(insights, Insight{
				Title:            sub.name,
				Description:      fmt.Sprintf("%s is your most expensive plan at %s %s per month. Check for a cheaper or ad-supported tier.", sub.name, sub.monthly.StringFixed(2), target),
				PotentialSavings: money(sub.monthly.Mul(months).Mul(highCostDiscount)),
				Priority:         0.7,
				Type:             InsightHighCost,
			})
			continue
		}
		if sub.freq != models.FrequencyYearly {
			insights = append(insights, Insight{
				Title:            sub.name,
				Description:      fmt.Sprintf("Switch %s to yearly billing. Annual plans usually save about 16%% (2 months free).", sub.name),
				PotentialSavings: money(sub.monthly.Mul(months).Mul(yearlyDiscount)),
				Priority:         0.5,
				Type:             InsightOptimization,
			})
		}
	}

	entertainment := make([]localSubscription, 0)
	for _, sub := range subs {
		if strings.EqualFold(sub.category, string(models.CategoryEntertainment)) {
			entertainment = append(entertainment, sub)
		}
	}
	if len(entertainment) >= 3 {
		cheapest := entertainment[0].monthly
		for _, sub := range entertainment[1:] {
			cheapest = decimal.Min(cheapest, sub.monthly)
		}
		insights = append(insights, Insight{
			Title:            string(models.CategoryEntertainment),
			Description:      fmt.Sprintf("You pay for %d entertainment services. Rotating them month to month or moving to a bundle cuts the bill.", len(entertainment)),
			PotentialSavings: money(cheapest.Mul(months)),
			Priority:         0.4,
			Type:             InsightLifestyle,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Priority != insights[j].Priority {
			return insights[i].Priority > insights[j].Priority
		}
		return insights[i].PotentialSavings > insights[j].PotentialSavings
	})
	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}

	saved := decimal.Zero
	for _, insight := range insights {
		saved = saved.Add(decimal.NewFromFloat(insight.PotentialSavings))
	}

	summary := fmt.Sprintf("Reviewed %d subscriptions totalling %s %s per month.", len(subs), total.StringFixed(2), target)
	if len(insights) == 0 {
		summary += " No obvious savings found."
	} else {
		summary += fmt.Sprintf(" Found %d savings opportunities.", len(insights))
	}

	return &AnalysisResult{
		Insights:              insights,
		Summary:               summary,
		TotalPotentialSavings: money(saved),
	}, nil
}

func (c *LocalClient) parseListing(prompt, target string) []localSubscription {
	matches := listingLine.FindAllStringSubmatch(prompt, -1)
	subs := make([]localSubscription, 0, len(matches))
	for _, match := range matches {
		amount, err := decimal.NewFromString(match[2])
		if err != nil || amount.IsNegative() {
			continue
		}
		freq, err := models.ParseFrequency(match[4])
		if err != nil {
			freq = models.FrequencyMonthly
		}
		currency := strings.ToUpper(match[3])
		converted := amount
		if c.converter != nil {
			converted = c.converter.Convert(amount, currency, target)
		}

		subs = append(subs, localSubscription{
			name:     strings.TrimSpace(match[1]),
			amount:   amount,
			currency: currency,
			freq:     freq,
			category: match[5],
			monthly:  spending.MonthlyCost(converted, freq),
		})
	}
	return subs
}

func (c *LocalClient) notify(prompt string) (Notification, error) {
	name := firstGroup(notifyName, prompt)
	if name == "" {
		return Notification{}, errors.New("local engine: notification prompt has no name")
	}

	body := fmt.Sprintf("Heads up! %s renews tomorrow.", name)
	if match := notifyAmount.FindStringSubmatch(prompt); match != nil {
		body = fmt.Sprintf("Heads up! %s renews tomorrow for %s %s.", name, match[1], match[2])
	}
	if freq := firstGroup(notifyFreq, prompt); freq != "" {
		body += fmt.Sprintf(" It's your %s plan, so now is a good time to check you still use it.", strings.ToLower(freq))
	}

	return Notification{Title: fmt.Sprintf("%s renews tomorrow", name), Body: body}, nil
}

// similarNames reports whether two names differ by less than 40% of the longer one.
func similarNames(a, b string) bool {
	a, b = compact(a), compact(b)
	if a == "" || b == "" {
		return false
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(levenshtein.ComputeDistance(a, b))/float64(longest) < 0.4
}

func compact(name string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

func firstGroup(pattern *regexp.Regexp, text string) string {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

func money(value decimal.Decimal) float64 {
	return value.Round(2).InexactFloat64()
}
