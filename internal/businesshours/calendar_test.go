package businesshours

import (
	"testing"
	"time"
)

func limaCalendar(t *testing.T) *Calendar {
	t.Helper()
	return New(DefaultConfig())
}

// at builds a Lima-local timestamp. 2026-01-05 is a Monday.
func at(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2026, time.January, day, hour, minute, 0, 0, loc)
}

func TestIsBusinessHour(t *testing.T) {
	cal := limaCalendar(t)

	tests := []struct {
		name string
		in   time.Time
		want bool
	}{
		{"monday morning open", at(t, 5, 8, 0), true},
		{"monday just before open", at(t, 5, 7, 59), false},
		{"friday last open hour", at(t, 9, 17, 59), true},
		{"friday at close", at(t, 9, 18, 0), false},
		{"saturday open", at(t, 10, 9, 0), true},
		{"saturday at close", at(t, 10, 12, 0), false},
		{"saturday before open", at(t, 10, 8, 30), false},
		{"sunday midday", at(t, 11, 10, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cal.IsBusinessHour(tc.in); got != tc.want {
				t.Errorf("IsBusinessHour(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestAdjustToBusinessHours(t *testing.T) {
	cal := limaCalendar(t)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"inside window unchanged", at(t, 5, 10, 30), at(t, 5, 10, 30)},
		{"saturday at close to monday open", at(t, 10, 12, 0), at(t, 12, 8, 0)},
		{"saturday overflow keeps minutes", at(t, 10, 13, 30), at(t, 12, 9, 30)},
		{"friday at close to saturday open", at(t, 9, 18, 0), at(t, 10, 9, 0)},
		{"friday overflow into saturday", at(t, 9, 19, 15), at(t, 10, 9, 15)},
		{"friday deep overflow cascades past saturday", at(t, 9, 18, 30), at(t, 10, 9, 0)},
		{"sunday to monday open", at(t, 11, 10, 0), at(t, 12, 8, 0)},
		{"weekday before open snaps to opening", at(t, 5, 6, 45), at(t, 5, 8, 0)},
		{"saturday before open snaps to opening", at(t, 10, 7, 10), at(t, 10, 9, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := cal.AdjustToBusinessHours(tc.in)
			if !got.Equal(tc.want) {
				t.Errorf("AdjustToBusinessHours(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestAdjustToBusinessHoursIsIdempotent(t *testing.T) {
	cal := limaCalendar(t)

	start := at(t, 9, 23, 40) // Friday late evening
	once := cal.AdjustToBusinessHours(start)
	twice := cal.AdjustToBusinessHours(once)
	if !once.Equal(twice) {
		t.Errorf("second adjustment moved the time: %v -> %v", once, twice)
	}
}

// Every hour of a full week must land inside an open window, at or after the
// input, and never more than a few days out.
func TestAdjustToBusinessHoursTotality(t *testing.T) {
	cal := limaCalendar(t)

	for day := 5; day <= 11; day++ {
		for hour := 0; hour < 24; hour++ {
			in := at(t, day, hour, 17)
			got := cal.AdjustToBusinessHours(in)

			if !cal.IsBusinessHour(got) {
				t.Errorf("AdjustToBusinessHours(%v) = %v, outside business hours", in, got)
			}
			if got.Before(in) {
				t.Errorf("AdjustToBusinessHours(%v) = %v, moved backwards", in, got)
			}
			if got.Sub(in) > 4*24*time.Hour {
				t.Errorf("AdjustToBusinessHours(%v) = %v, moved too far forward", in, got)
			}
		}
	}
}

func TestComputeDeadline(t *testing.T) {
	cal := limaCalendar(t)
	rules := DefaultDeadlineRules()

	tests := []struct {
		name        string
		scheduledAt time.Time
		typ         string
		want        time.Time
	}{
		{"call two hours later same day", at(t, 5, 9, 0), "call", at(t, 5, 11, 0)},
		{"call late afternoon spills over", at(t, 5, 17, 0), "call", at(t, 6, 9, 0)},
		{"visit next business day", at(t, 5, 10, 0), "visit", at(t, 6, 10, 0)},
		{"quote two days out", at(t, 5, 10, 0), "quote", at(t, 7, 10, 0)},
		{"unknown type uses default day rule", at(t, 5, 10, 0), "fax", at(t, 6, 10, 0)},
		{"friday visit lands on saturday morning", at(t, 9, 14, 0), "visit", at(t, 12, 10, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := cal.ComputeDeadline(tc.scheduledAt, tc.typ, rules)
			if !got.Equal(tc.want) {
				t.Errorf("ComputeDeadline(%v, %q) = %v, want %v", tc.scheduledAt, tc.typ, got, tc.want)
			}
		})
	}
}

func TestBusinessDaysDeadline(t *testing.T) {
	cal := limaCalendar(t)

	tests := []struct {
		name  string
		start time.Time
		n     float64
		want  time.Time
	}{
		// Monday + 2 business days = Wednesday close.
		{"two days from monday", at(t, 5, 10, 0), 2, at(t, 7, 18, 0)},
		// Friday start: Sat 0.3, skip Sun, Mon 1.3, Tue 2.3 >= 2.
		{"two days from friday spans weekend", at(t, 9, 10, 0), 2, at(t, 13, 18, 0)},
		// Thursday start: Fri 1.0, Sat 1.3, skip Sun, Mon 2.3 >= 2.
		{"two days from thursday", at(t, 8, 10, 0), 2, at(t, 12, 18, 0)},
		{"single day from monday", at(t, 5, 10, 0), 1, at(t, 6, 18, 0)},
		// Saturday alone cannot satisfy a full day.
		{"single day from friday", at(t, 9, 10, 0), 1, at(t, 12, 18, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := cal.BusinessDaysDeadline(tc.start, tc.n)
			if !got.Equal(tc.want) {
				t.Errorf("BusinessDaysDeadline(%v, %v) = %v, want %v", tc.start, tc.n, got, tc.want)
			}
		})
	}
}

func TestNewFallsBackToUTCOnBadTimezone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Not/AZone"
	cal := New(cfg)
	if cal.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cal.Location())
	}
}
