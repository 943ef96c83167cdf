// Package businesshours implements the business-hours calendar engine used to
// place follow-up deadlines inside the organization's open windows.
//
// All arithmetic operates on the wall clock of a single civil time zone (the
// business's local zone). Callers converting from storage time are responsible
// for moving timestamps into the calendar's location first.
package businesshours

import "time"

// Config describes the open windows of the business calendar.
// Hours are wall-clock hours; windows are closed-open, so the close hour
// itself is outside the window.
type Config struct {
	WeekdayOpen   int // Monday-Friday opening hour
	WeekdayClose  int // Monday-Friday closing hour (exclusive)
	SaturdayOpen  int // Saturday opening hour
	SaturdayClose int // Saturday closing hour (exclusive)

	// SaturdayDayWeight is the fraction of a business day a full Saturday
	// session counts for in the SLA calculator (3 of 10 working hours).
	SaturdayDayWeight float64

	// Timezone is the IANA name of the business's civil zone.
	Timezone string
}

// DefaultConfig returns the organization's standard calendar:
// Monday-Friday 08:00-18:00, Saturday 09:00-12:00, Sunday closed.
func DefaultConfig() Config {
	return Config{
		WeekdayOpen:       8,
		WeekdayClose:      18,
		SaturdayOpen:      9,
		SaturdayClose:     12,
		SaturdayDayWeight: 0.3,
		Timezone:          "America/Lima",
	}
}

// Calendar evaluates business-hour predicates and deadline arithmetic for a
// fixed Config. It is stateless and safe for concurrent use.
type Calendar struct {
	cfg Config
	loc *time.Location
}

// New creates a Calendar from cfg. An unknown timezone falls back to UTC;
// the engine normalizes rather than rejects (it never fails).
func New(cfg Config) *Calendar {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Calendar{cfg: cfg, loc: loc}
}

// Location returns the calendar's civil time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// IsBusinessHour reports whether t falls inside an open window.
// Windows are closed-open: Friday 18:00 and Saturday 12:00 are outside.
func (c *Calendar) IsBusinessHour(t time.Time) bool {
	switch t.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		return t.Hour() >= c.cfg.SaturdayOpen && t.Hour() < c.cfg.SaturdayClose
	default:
		return t.Hour() >= c.cfg.WeekdayOpen && t.Hour() < c.cfg.WeekdayClose
	}
}

// maxAdjustIterations bounds the adjustment loop. Each pass either returns or
// strictly advances the calendar day, and the calendar has at most three
// consecutive non-business day transitions to skip (Fri close -> Sat ->
// Sun -> Mon), so four passes always suffice.
const maxAdjustIterations = 4

// AdjustToBusinessHours returns the earliest business-hour timestamp at or
// after t. Overflow past a closing hour carries the excess wall-clock hours
// (and the original minutes and seconds) into the next open day; time before
// an opening hour snaps to the opening hour exactly.
func (c *Calendar) AdjustToBusinessHours(t time.Time) time.Time {
	for i := 0; i < maxAdjustIterations; i++ {
		if c.IsBusinessHour(t) {
			return t
		}

		switch {
		case t.Weekday() == time.Sunday:
			t = c.atOpening(t.AddDate(0, 0, 1), c.cfg.WeekdayOpen)

		case t.Weekday() == time.Saturday && t.Hour() >= c.cfg.SaturdayClose:
			// Carry the hours past Saturday close into Monday morning.
			overflow := t.Hour() - c.cfg.SaturdayClose
			t = c.withHour(t.AddDate(0, 0, 2), c.cfg.WeekdayOpen+overflow)

		case t.Weekday() == time.Saturday:
			t = c.atOpening(t, c.cfg.SaturdayOpen)

		case t.Hour() < c.cfg.WeekdayOpen:
			t = c.atOpening(t, c.cfg.WeekdayOpen)

		default:
			// Weekday at or past close: carry the excess into the next day.
			// Landing on Saturday or Sunday is resolved by the next pass.
			overflow := t.Hour() - c.cfg.WeekdayClose
			t = c.withHour(t.AddDate(0, 0, 1), c.cfg.WeekdayOpen+overflow)
		}
	}

	// Unreachable with a sane Config; return the last candidate.
	return t
}

// ComputeDeadline derives a follow-up deadline from its scheduled time and
// type. Unknown types use the default one-day rule. The raw offset result is
// normalized into business hours.
func (c *Calendar) ComputeDeadline(scheduledAt time.Time, followUpType string, rules DeadlineRules) time.Time {
	rule, ok := rules[followUpType]
	if !ok {
		rule = defaultRule
	}

	deadline := scheduledAt.AddDate(0, 0, rule.Days).Add(time.Duration(rule.Hours) * time.Hour)
	return c.AdjustToBusinessHours(deadline)
}

// BusinessDaysDeadline returns the close of business after n business days
// counted from startAt. Each full weekday counts 1.0, a Saturday session
// counts SaturdayDayWeight, Sundays are skipped. The returned timestamp is
// the weekday closing hour of the last counted day.
func (c *Calendar) BusinessDaysDeadline(startAt time.Time, n float64) time.Time {
	cursor := startAt
	accumulated := 0.0

	// n is small in practice (the SLA uses 2); the guard only protects
	// against a nonsensical huge n.
	for i := 0; accumulated < n && i < 366; i++ {
		cursor = cursor.AddDate(0, 0, 1)
		switch cursor.Weekday() {
		case time.Sunday:
			continue
		case time.Saturday:
			accumulated += c.cfg.SaturdayDayWeight
		default:
			accumulated += 1.0
		}
	}

	return time.Date(cursor.Year(), cursor.Month(), cursor.Day(),
		c.cfg.WeekdayClose, 0, 0, 0, cursor.Location())
}

// atOpening returns t's date at exactly the given opening hour.
func (c *Calendar) atOpening(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// withHour returns t with the hour replaced, preserving minutes and seconds.
func (c *Calendar) withHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour,
		t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
