package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/catalog"
	"example.com/subscription-reaper/backend/internal/models"
)

func date(value string) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func strPtr(value string) *string {
	return &value
}

func baseRequest() SubscriptionRequest {
	return SubscriptionRequest{
		Name:      "  Netflix ",
		Amount:    decimal.RequireFromString("15.499"),
		Currency:  "usd",
		Frequency: "monthly",
		StartDate: "2024-01-31",
	}
}

// TestBuildSubscriptionPredictsNextBilling checks that a new record derives its billing date.
func TestBuildSubscriptionPredictsNextBilling(t *testing.T) {
	sub, err := buildSubscription(baseRequest(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if sub.Name != "Netflix" {
		t.Fatalf("expected trimmed name, got %q", sub.Name)
	}
	if sub.Currency != "USD" {
		t.Fatalf("expected USD, got %s", sub.Currency)
	}
	if !sub.Amount.Equal(decimal.RequireFromString("15.5")) {
		t.Fatalf("expected amount rounded to 15.50, got %s", sub.Amount)
	}
	if got := sub.NextBillingDate.Format(dateLayout); got != "2024-02-29" {
		t.Fatalf("expected 2024-02-29, got %s", got)
	}
}

// TestBuildSubscriptionManualDate checks that a sent billing date wins over the schedule.
func TestBuildSubscriptionManualDate(t *testing.T) {
	req := baseRequest()
	req.NextBillingDate = strPtr("2024-03-15")

	sub, err := buildSubscription(req, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := sub.NextBillingDate.Format(dateLayout); got != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %s", got)
	}
}

// TestBuildSubscriptionKeepsStoredDate checks that editing keeps the stored billing date.
func TestBuildSubscriptionKeepsStoredDate(t *testing.T) {
	existing := models.Subscription{
		Name:            "Netflix",
		Frequency:       models.FrequencyMonthly,
		StartDate:       date("2024-01-31"),
		NextBillingDate: date("2024-05-10"),
	}

	req := baseRequest()
	req.Frequency = "yearly"

	sub, err := buildSubscription(req, &existing)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := sub.NextBillingDate.Format(dateLayout); got != "2024-05-10" {
		t.Fatalf("expected stored date 2024-05-10, got %s", got)
	}
	if sub.Frequency != models.FrequencyYearly {
		t.Fatalf("expected yearly, got %s", sub.Frequency)
	}
}

// TestBuildSubscriptionInvalid checks rejected payloads.
func TestBuildSubscriptionInvalid(t *testing.T) {
	req := baseRequest()
	req.Amount = decimal.NewFromInt(-1)
	if _, err := buildSubscription(req, nil); err == nil {
		t.Fatal("expected error for negative amount")
	}

	req = baseRequest()
	req.StartDate = "31/01/2024"
	if _, err := buildSubscription(req, nil); err == nil {
		t.Fatal("expected error for invalid start date")
	}

	req = baseRequest()
	req.Frequency = "daily"
	if _, err := buildSubscription(req, nil); err == nil {
		t.Fatal("expected error for unknown frequency")
	}

	req = baseRequest()
	req.Name = "   "
	if _, err := buildSubscription(req, nil); err == nil {
		t.Fatal("expected error for blank name")
	}
}

// TestEnrichFromCatalog checks that provider fields fill what the client left empty.
func TestEnrichFromCatalog(t *testing.T) {
	sub := models.Subscription{Name: "Netflix", SourceID: strPtr("NETFLIX")}
	if err := enrichFromCatalog(catalog.Default(), &sub); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if *sub.SourceID != "netflix" {
		t.Fatalf("expected normalized source id, got %s", *sub.SourceID)
	}
	if sub.Icon != "play.tv.fill" {
		t.Fatalf("expected provider icon, got %s", sub.Icon)
	}
	if sub.Category != models.CategoryEntertainment {
		t.Fatalf("expected entertainment, got %s", sub.Category)
	}
	if sub.FullServiceName == nil || *sub.FullServiceName != "Netflix" {
		t.Fatalf("expected full service name, got %v", sub.FullServiceName)
	}
}

// TestEnrichFromCatalogKeepsClientFields checks that explicit fields are not replaced.
func TestEnrichFromCatalogKeepsClientFields(t *testing.T) {
	sub := models.Subscription{
		Name:     "Netflix",
		Icon:     "star",
		Category: models.CategoryOther,
		SourceID: strPtr("netflix"),
	}
	if err := enrichFromCatalog(catalog.Default(), &sub); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sub.Icon != "star" || sub.Category != models.CategoryOther {
		t.Fatalf("expected client fields kept, got %s/%s", sub.Icon, sub.Category)
	}
}

// TestEnrichFromCatalogUnknownSource checks unknown provider ids.
func TestEnrichFromCatalogUnknownSource(t *testing.T) {
	sub := models.Subscription{Name: "Mystery", SourceID: strPtr("no-such-provider")}
	if err := enrichFromCatalog(catalog.Default(), &sub); !errors.Is(err, errUnknownSource) {
		t.Fatalf("expected errUnknownSource, got %v", err)
	}
}

// TestEnrichFromCatalogDefaults checks fallbacks for records without a provider.
func TestEnrichFromCatalogDefaults(t *testing.T) {
	sub := models.Subscription{Name: "Gym"}
	if err := enrichFromCatalog(catalog.Default(), &sub); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sub.Icon != defaultIcon || sub.Category != models.CategoryOther {
		t.Fatalf("expected defaults, got %s/%s", sub.Icon, sub.Category)
	}
}

// TestPreviewSessionClearingNameResetsOverride checks that a blank name restores prediction on new records.
func TestPreviewSessionClearingNameResetsOverride(t *testing.T) {
	req := PreviewRequest{
		Frequency:       "Weekly",
		StartDate:       "2024-01-01",
		NextBillingDate: strPtr("2024-02-20"),
	}

	session, err := previewSession(req, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session.Override() {
		t.Fatal("expected override cleared for blank name")
	}
	if got := session.NextBilling().Format(dateLayout); got != "2024-01-08" {
		t.Fatalf("expected 2024-01-08, got %s", got)
	}

	req.Name = "Gym"
	session, err = previewSession(req, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !session.Override() || session.NextBilling().Format(dateLayout) != "2024-02-20" {
		t.Fatalf("expected manual date kept, got %s (override=%v)", session.NextBilling().Format(dateLayout), session.Override())
	}
}

// TestPreviewSessionExisting checks that stored records keep their date when the name is cleared.
func TestPreviewSessionExisting(t *testing.T) {
	existing := models.Subscription{
		Name:            "Gym",
		Frequency:       models.FrequencyMonthly,
		StartDate:       date("2024-01-01"),
		NextBillingDate: date("2024-06-01"),
	}

	session, err := previewSession(PreviewRequest{Frequency: "Monthly", StartDate: "2024-01-01"}, &existing)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := session.NextBilling().Format(dateLayout); got != "2024-06-01" {
		t.Fatalf("expected 2024-06-01, got %s", got)
	}
}

// TestBuildSettings checks normalization and budget validation.
func TestBuildSettings(t *testing.T) {
	settings, err := buildSettings(SettingsRequest{
		DefaultCurrency: "eur",
		Country:         "uk",
		BudgetEnabled:   true,
		MonthlyBudget:   decimal.RequireFromString("49.999"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if settings.DefaultCurrency != "EUR" || settings.Country != "UK" {
		t.Fatalf("unexpected settings: %s/%s", settings.DefaultCurrency, settings.Country)
	}
	if !settings.MonthlyBudget.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected budget 50, got %s", settings.MonthlyBudget)
	}

	_, err = buildSettings(SettingsRequest{DefaultCurrency: "EUR", Country: "US", AnnualBudget: decimal.NewFromInt(-5)})
	if !errors.Is(err, errBudgetNegative) {
		t.Fatalf("expected errBudgetNegative, got %v", err)
	}

	if _, err := buildSettings(SettingsRequest{DefaultCurrency: "CHF", Country: "US"}); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}

// TestLookupSuggestions checks that misses return close provider ids.
func TestLookupSuggestions(t *testing.T) {
	response := lookup(catalog.Default(), "netflx")
	if len(response.Providers) != 0 {
		t.Fatalf("expected no providers, got %d", len(response.Providers))
	}
	if len(response.Suggestions) == 0 || response.Suggestions[0] != "netflix" {
		t.Fatalf("expected netflix suggestion, got %v", response.Suggestions)
	}

	response = lookup(catalog.Default(), "spot")
	if len(response.Providers) == 0 || response.Providers[0].ID != "spotify" {
		t.Fatalf("expected spotify, got %v", response.Providers)
	}
	if len(response.Suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %v", response.Suggestions)
	}
}

// TestWriteSubscriptionsCSV checks the export columns.
func TestWriteSubscriptionsCSV(t *testing.T) {
	sub := models.Subscription{
		ID:              uuid.New(),
		Name:            "Spotify",
		Amount:          decimal.NewFromInt(120),
		Currency:        "USD",
		Frequency:       models.FrequencyYearly,
		Category:        models.CategoryEntertainment,
		StartDate:       date("2024-01-01"),
		NextBillingDate: date("2025-01-01"),
		Notes:           strPtr("family plan, shared"),
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeSubscriptionsCSV(writer, []models.Subscription{sub}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("expected valid csv, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d", len(records))
	}

	row := records[1]
	if row[2] != "120.00" || row[8] != "10.00" {
		t.Fatalf("expected amount 120.00 and monthly 10.00, got %s/%s", row[2], row[8])
	}
	if row[11] != "family plan, shared" {
		t.Fatalf("unexpected notes: %s", row[11])
	}
}
