package ai

import (
	"fmt"
	"strings"

	"example.com/subscription-reaper/backend/internal/models"
)

const responseSchema = `{
  "insights": [
    {
      "title": "Service Name",
      "description": "Actionable tip",
      "potentialSavings": 10.99,
      "priority": 0.9,
      "type": "Optimization"
    }
  ],
  "summary": "Brief overall summary",
  "totalPotentialSavings": 10.99
}`

const marketTrends = `Recent Trends (Late 2025/2026):
- Streaming services are pushing "Ad-supported" tiers as the new entry standard.
- Yearly bundles (e.g. Disney+) usually save ~16% (2 months free).
- Multi-service bundles (Apple One, Disney/Hulu/Max) are the primary way to reduce total bill.

`

var marketPricing = map[string]string{
	"US": `United States (US):
- Netflix: Standard with Ads ($7.99), Standard ($17.99), Premium ($24.99).
- Spotify: Individual ($11.99), Duo ($16.99), Family ($19.99), Student ($5.99).
- Apple One: Individual ($19.95), Family ($25.95), Premier ($37.95).
- Disney Bundle: Duo Basic ($12.99), Duo Premium ($19.99), Trio Basic ($29.99), Trio Premium ($38.99).
- YouTube Premium: Individual ($13.99).`,
	"UK": `United Kingdom (UK):
- Netflix: Standard with Ads (£4.99), Standard (£10.99), Premium (£17.99).
- Spotify: Individual (£11.99), Duo (£16.99), Family (£19.99).
- Apple One: Individual (£18.95), Family (£24.95), Premier (£36.95).`,
	"IN": `India (IN):
- Netflix: Mobile (₹149), Basic (₹199), Standard (₹499), Premium (₹649).
- Spotify India: Premium Individual (₹119), Duo (₹149), Family (₹179).
- Disney+ Hotstar: Super (₹899/yr), Premium (₹1499/yr).
- Apple One India: Individual (₹195), Family (₹365).`,
	"EU": `Europe (EU - avg):
- Netflix: Standard with Ads (€5.99), Standard (€13.99), Premium (€19.99).
- Spotify: Individual (€10.99), Family (€17.99).
- Apple One: Individual (€19.95), Family (€25.95).`,
	"AU": `Australia (AU):
- Netflix: Standard with Ads ($7.99), Standard ($18.99), Premium ($25.99).
- Spotify: Individual ($13.99), Family ($22.99).
- Apple One: Individual ($21.95), Premier ($42.95).`,
	"CA": `Canada (CA):
- Netflix: Standard with Ads ($5.99), Standard ($16.49), Premium ($20.99).
- Spotify: Individual ($10.99), Family ($16.99).
- Apple One: Individual ($18.95), Premier ($37.95).`,
	"JP": `Japan (JP):
- Netflix: Standard with Ads (¥790), Standard (¥1,490), Premium (¥1,980).
- Spotify Japan: Standard (¥980), Family (¥1,580).
- Apple One Japan: Individual (¥1,200), Family (¥1,980).`,
}

const globalPricing = "Global pricing trends suggest bundle savings of ~15-20% compared to individual plans."

// MarketContext returns reference pricing for a country code.
func MarketContext(country string) string {
	pricing, ok := marketPricing[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		pricing = globalPricing
	}
	return marketTrends + pricing
}

// SubscriptionListing renders one line per subscription.
func SubscriptionListing(subs []models.Subscription) string {
	lines := make([]string, 0, len(subs))
	for _, sub := range subs {
		lines = append(lines, fmt.Sprintf("Name: %s, Amount: %s %s, Frequency: %s, Category: %s",
			sub.Name, sub.Amount.String(), sub.Currency, sub.Frequency, sub.Category))
	}
	return strings.Join(lines, "\n")
}

// FullPrompt builds the detailed prompt for the primary engine.
func FullPrompt(input AnalysisInput) string {
	return fmt.Sprintf(`SYSTEM: You are a financial expert. Analyze ONLY these user subscriptions:
[START]
%s
[END]

MARKET CONTEXT FOR %s:
%s

INSTRUCTIONS:
1. NO HALLUCINATIONS. Only use services in the [START]...[END] block.
2. Group into 'Optimization', 'Duplicate', 'HighCost', or 'Lifestyle'.
3. Provide response as VALID JSON strictly matching this schema:
%s
4. Do not include markdown formatting like `+"```json."+`
5. Report all amounts in %s.`,
		SubscriptionListing(input.Subscriptions),
		input.Country,
		MarketContext(input.Country),
		responseSchema,
		input.DefaultCurrency,
	)
}

// NeutralPrompt builds the minimal data-processing prompt for the on-device engine.
func NeutralPrompt(input AnalysisInput) string {
	return fmt.Sprintf(`Here is a list of subscription data: %s. Please categorize these items by type (e.g., Entertainment, Utility) and identify any obvious duplicates. return the result as a structured summary.
Report all amounts in %s.
Respond with a single JSON object matching:
%s`,
		SubscriptionListing(input.Subscriptions),
		input.DefaultCurrency,
		responseSchema,
	)
}

// NotificationPrompt asks for a personalized renewal reminder.
func NotificationPrompt(sub models.Subscription) string {
	return fmt.Sprintf(`Generate a personalized renewal notification for the following subscription:
Name: %s
Amount: %s %s
Frequency: %s
Category: %s

The tone should be friendly, helpful, and slightly personal.
Respond with a single JSON object: {"title": string, "body": string}`,
		sub.Name, sub.Amount.StringFixed(2), sub.Currency, sub.Frequency, sub.Category)
}
