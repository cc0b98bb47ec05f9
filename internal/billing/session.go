package billing

import (
	"strings"
	"time"

	"example.com/subscription-reaper/backend/internal/models"
)

// Session tracks the next billing date of one record while it is being edited.
// Once the date is set by hand it is no longer derived from the schedule.
type Session struct {
	isNew       bool
	override    bool
	name        string
	frequency   models.Frequency
	startDate   time.Time
	nextBilling time.Time
}

// NewSession starts editing a record that does not exist yet.
func NewSession(frequency models.Frequency, start time.Time) (*Session, error) {
	s := &Session{isNew: true, frequency: frequency, startDate: start, nextBilling: start}
	if err := s.recompute(); err != nil {
		return nil, err
	}
	return s, nil
}

// EditSession starts editing a stored record. Its billing date counts as user confirmed.
func EditSession(sub models.Subscription) *Session {
	return &Session{
		override:    true,
		name:        sub.Name,
		frequency:   sub.Frequency,
		startDate:   sub.StartDate,
		nextBilling: sub.NextBillingDate,
	}
}

// SetName updates the name. Clearing the name of a new record re-enables prediction.
func (s *Session) SetName(name string) error {
	s.name = name
	if s.isNew && strings.TrimSpace(name) == "" && s.override {
		s.override = false
		return s.recompute()
	}
	return nil
}

// SetNextBilling records a manual billing date.
func (s *Session) SetNextBilling(date time.Time) {
	s.nextBilling = date
	s.override = true
}

// SetSchedule changes frequency and start date and recomputes unless overridden.
func (s *Session) SetSchedule(frequency models.Frequency, start time.Time) error {
	if !isKnown(frequency) {
		return ErrUnknownFrequency
	}
	s.frequency = frequency
	s.startDate = start
	return s.recompute()
}

func (s *Session) recompute() error {
	next, override, err := ComputeNextBilling(s.frequency, s.startDate, s.nextBilling, s.override)
	if err != nil {
		return err
	}
	s.nextBilling = next
	s.override = override
	return nil
}

func (s *Session) NextBilling() time.Time { return s.nextBilling }

func (s *Session) Override() bool { return s.override }

func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) Name() string { return s.name }
