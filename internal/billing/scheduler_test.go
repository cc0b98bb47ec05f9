package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/subscription-reaper/backend/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeNextBillingRecurrence(t *testing.T) {
	t.Parallel()
	start := date(2025, time.January, 15)

	cases := map[models.Frequency]time.Time{
		models.FrequencyMonthly: date(2025, time.February, 15),
		models.FrequencyYearly:  date(2026, time.January, 15),
		models.FrequencyWeekly:  date(2025, time.January, 22),
	}

	for frequency, want := range cases {
		got, override, err := ComputeNextBilling(frequency, start, time.Time{}, false)
		require.NoError(t, err)
		require.False(t, override)
		require.True(t, got.Equal(want), "%s: expected %s, got %s", frequency, want, got)
	}
}

func TestComputeNextBillingOverrideLock(t *testing.T) {
	t.Parallel()
	manual := date(2025, time.March, 3)

	for _, frequency := range models.Frequencies {
		for _, start := range []time.Time{date(2024, time.June, 1), date(2030, time.December, 31)} {
			got, override, err := ComputeNextBilling(frequency, start, manual, true)
			require.NoError(t, err)
			require.True(t, override)
			require.True(t, got.Equal(manual))
		}
	}
}

func TestComputeNextBillingUnknownFrequency(t *testing.T) {
	t.Parallel()
	_, _, err := ComputeNextBilling("Daily", date(2025, time.January, 1), time.Time{}, false)
	require.ErrorIs(t, err, ErrUnknownFrequency)
}

func TestAdvanceClampsMonthEnd(t *testing.T) {
	t.Parallel()

	got, err := Advance(date(2025, time.January, 31), models.FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 28), got)

	got, err = Advance(date(2024, time.January, 31), models.FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 29), got)

	got, err = Advance(date(2024, time.February, 29), models.FrequencyYearly)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 28), got)

	got, err = Advance(date(2025, time.December, 31), models.FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, date(2026, time.January, 31), got)
}

func TestAdvanceNeverBeforeStart(t *testing.T) {
	t.Parallel()
	start := date(2025, time.January, 1)
	for i := 0; i < 400; i++ {
		day := start.AddDate(0, 0, i)
		for _, frequency := range models.Frequencies {
			next, err := Advance(day, frequency)
			require.NoError(t, err)
			require.True(t, next.After(day), "%s from %s gave %s", frequency, day, next)
		}
	}
}

func TestReminderTime(t *testing.T) {
	t.Parallel()
	require.Equal(t, date(2025, time.February, 28), ReminderTime(date(2025, time.March, 1)))
}

func TestNewSessionPredicts(t *testing.T) {
	t.Parallel()
	s, err := NewSession(models.FrequencyMonthly, date(2025, time.January, 15))
	require.NoError(t, err)
	require.False(t, s.Override())
	require.Equal(t, date(2025, time.February, 15), s.NextBilling())

	require.NoError(t, s.SetSchedule(models.FrequencyWeekly, date(2025, time.January, 15)))
	require.Equal(t, date(2025, time.January, 22), s.NextBilling())
}

func TestSessionManualDateSticks(t *testing.T) {
	t.Parallel()
	s, err := NewSession(models.FrequencyMonthly, date(2025, time.January, 15))
	require.NoError(t, err)

	manual := date(2025, time.April, 2)
	s.SetNextBilling(manual)
	require.True(t, s.Override())

	require.NoError(t, s.SetSchedule(models.FrequencyYearly, date(2025, time.May, 1)))
	require.NoError(t, s.SetName("Netflix"))
	require.Equal(t, manual, s.NextBilling())
}

func TestSessionClearingNameResetsNewRecord(t *testing.T) {
	t.Parallel()
	s, err := NewSession(models.FrequencyMonthly, date(2025, time.January, 15))
	require.NoError(t, err)

	require.NoError(t, s.SetName("Spotify"))
	s.SetNextBilling(date(2025, time.March, 9))

	require.NoError(t, s.SetName("  "))
	require.False(t, s.Override())
	require.Equal(t, date(2025, time.February, 15), s.NextBilling())
}

func TestEditSessionKeepsStoredDate(t *testing.T) {
	t.Parallel()
	sub := models.Subscription{
		Name:            "Hulu",
		Frequency:       models.FrequencyMonthly,
		StartDate:       date(2025, time.January, 15),
		NextBillingDate: date(2025, time.June, 20),
	}

	s := EditSession(sub)
	require.True(t, s.Override())

	require.NoError(t, s.SetSchedule(models.FrequencyWeekly, date(2025, time.February, 1)))
	require.NoError(t, s.SetName(""))
	require.True(t, s.Override())
	require.Equal(t, sub.NextBillingDate, s.NextBilling())
}

func TestSessionRejectsUnknownFrequency(t *testing.T) {
	t.Parallel()
	_, err := NewSession("Daily", date(2025, time.January, 15))
	require.ErrorIs(t, err, ErrUnknownFrequency)

	s, err := NewSession(models.FrequencyMonthly, date(2025, time.January, 15))
	require.NoError(t, err)
	require.ErrorIs(t, s.SetSchedule("Hourly", date(2025, time.January, 15)), ErrUnknownFrequency)
}

func TestRolloverReturnsToAnchorDay(t *testing.T) {
	t.Parallel()
	start := date(2025, time.January, 31)

	got, err := Rollover(models.FrequencyMonthly, start, date(2025, time.February, 28), date(2025, time.April, 15))
	require.NoError(t, err)
	require.True(t, got.Equal(date(2025, time.April, 30)), "expected 2025-04-30, got %s", got)

	got, err = Rollover(models.FrequencyMonthly, start, date(2025, time.April, 30), date(2025, time.May, 2))
	require.NoError(t, err)
	require.True(t, got.Equal(date(2025, time.May, 31)), "expected 2025-05-31, got %s", got)
}

func TestRolloverLeapDayYearly(t *testing.T) {
	t.Parallel()
	start := date(2024, time.February, 29)

	got, err := Rollover(models.FrequencyYearly, start, date(2027, time.February, 28), date(2028, time.January, 10))
	require.NoError(t, err)
	require.True(t, got.Equal(date(2028, time.February, 29)), "expected 2028-02-29, got %s", got)
}

func TestRolloverWeekly(t *testing.T) {
	t.Parallel()
	got, err := Rollover(models.FrequencyWeekly, date(2025, time.January, 1), date(2025, time.January, 8), date(2025, time.January, 20))
	require.NoError(t, err)
	require.True(t, got.Equal(date(2025, time.January, 22)), "expected 2025-01-22, got %s", got)
}

func TestRolloverManualDateStepsFromItself(t *testing.T) {
	t.Parallel()
	start := date(2025, time.January, 15)
	manual := date(2025, time.March, 3)

	got, err := Rollover(models.FrequencyMonthly, start, manual, date(2025, time.April, 10))
	require.NoError(t, err)
	require.True(t, got.Equal(date(2025, time.May, 3)), "expected 2025-05-03, got %s", got)
}

func TestRolloverLeavesCurrentDates(t *testing.T) {
	t.Parallel()
	current := date(2025, time.June, 1)

	got, err := Rollover(models.FrequencyMonthly, date(2025, time.January, 1), current, date(2025, time.June, 1))
	require.NoError(t, err)
	require.True(t, got.Equal(current))

	_, err = Rollover(models.Frequency("Daily"), current, current, date(2025, time.July, 1))
	require.ErrorIs(t, err, ErrUnknownFrequency)
}
