package billing

import (
	"errors"
	"time"

	"example.com/subscription-reaper/backend/internal/models"
)

var ErrUnknownFrequency = errors.New("unknown billing frequency")

// ComputeNextBilling returns the next billing date for a schedule.
// When override is set the current date is returned unchanged.
func ComputeNextBilling(frequency models.Frequency, start, current time.Time, override bool) (time.Time, bool, error) {
	if !isKnown(frequency) {
		return current, override, ErrUnknownFrequency
	}

	if override {
		return current, true, nil
	}

	next, err := Advance(start, frequency)
	if err != nil {
		return current, false, err
	}

	return next, false, nil
}

// Advance adds one billing interval to t. Month and year steps clamp to the
// last day of the target month, so Jan 31 + 1 month is the last day of February.
func Advance(t time.Time, frequency models.Frequency) (time.Time, error) {
	switch frequency {
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return addMonths(t, 1), nil
	case models.FrequencyYearly:
		return addMonths(t, 12), nil
	default:
		return t, ErrUnknownFrequency
	}
}

// Rollover returns the first billing date on or after today for a date that
// has fallen behind. Dates that sit on the schedule anchored at start are
// recomputed from start, so a plan billed on the 31st returns to the 31st
// after a short month. Any other date is a manual one and steps from itself.
func Rollover(frequency models.Frequency, start, current, today time.Time) (time.Time, error) {
	if !isKnown(frequency) {
		return current, ErrUnknownFrequency
	}
	if !current.Before(today) {
		return current, nil
	}

	if onSchedule(frequency, start, current) {
		next := start
		for n := 1; next.Before(today); n++ {
			next = occurrence(frequency, start, n)
		}
		return next, nil
	}

	next := current
	for next.Before(today) {
		var err error
		if next, err = Advance(next, frequency); err != nil {
			return current, err
		}
	}
	return next, nil
}

// ReminderTime returns when a renewal reminder fires: one day before billing.
func ReminderTime(nextBilling time.Time) time.Time {
	return nextBilling.AddDate(0, 0, -1)
}

// occurrence is the n-th billing date counted from start.
func occurrence(frequency models.Frequency, start time.Time, n int) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case models.FrequencyYearly:
		return addMonths(start, 12*n)
	default:
		return addMonths(start, n)
	}
}

func onSchedule(frequency models.Frequency, start, current time.Time) bool {
	if current.Before(start) {
		return false
	}
	for n := 0; ; n++ {
		candidate := occurrence(frequency, start, n)
		if candidate.Equal(current) {
			return true
		}
		if candidate.After(current) {
			return false
		}
	}
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	lastDay := daysIn(firstOfTarget.Year(), firstOfTarget.Month(), t.Location())
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func isKnown(frequency models.Frequency) bool {
	switch frequency {
	case models.FrequencyMonthly, models.FrequencyYearly, models.FrequencyWeekly:
		return true
	default:
		return false
	}
}
