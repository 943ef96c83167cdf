package leads

import (
	"testing"

	"sales_crm_backend/platform/validator"
)

type stubCalendarConfig struct {
	timezone string
}

func (s stubCalendarConfig) GetBusinessTimezone() string { return s.timezone }

func TestNewModuleAcceptsCalendarConfig(t *testing.T) {
	m := NewModule(nil, nil, nil, validator.New(), stubCalendarConfig{timezone: "UTC"}, nil)
	if m == nil {
		t.Fatal("NewModule returned nil")
	}
	if m.Name() != "leads" {
		t.Errorf("name = %q, want %q", m.Name(), "leads")
	}
	if m.FollowUpsService() == nil {
		t.Error("follow-ups service was not wired")
	}
	if m.OverdueProcessor() == nil {
		t.Error("overdue processor was not wired")
	}
}

func TestNewModuleWithoutConfigUsesDefaults(t *testing.T) {
	if m := NewModule(nil, nil, nil, validator.New(), nil, nil); m == nil {
		t.Fatal("NewModule returned nil")
	}
}
