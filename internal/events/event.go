// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"sales_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Follow-up Domain Events
// =============================================================================

// FollowUpScheduled is published when a follow-up is scheduled for a lead.
type FollowUpScheduled struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	FollowUpID  uuid.UUID `json:"followUpId"`
	AgentID     uuid.UUID `json:"agentId"`
	Type        string    `json:"type"`
	ScheduledAt time.Time `json:"scheduledAt"`
	DeadlineAt  time.Time `json:"deadlineAt"`
}

func (e FollowUpScheduled) EventName() string { return "followups.scheduled" }

// FollowUpCompleted is published when an agent completes a follow-up.
type FollowUpCompleted struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	FollowUpID uuid.UUID `json:"followUpId"`
	AgentID    uuid.UUID `json:"agentId"`
}

func (e FollowUpCompleted) EventName() string { return "followups.completed" }

// OverdueLeadInfo describes one overdue lead inside a FollowUpsOverdue event.
type OverdueLeadInfo struct {
	LeadID      uuid.UUID `json:"leadId"`
	ContactName string    `json:"contactName"`
	Phone       string    `json:"phone"`
	DueAt       time.Time `json:"dueAt"`
}

// FollowUpsOverdue is published once per owning agent per overdue-scan run,
// carrying every lead of theirs the scan flipped to overdue.
type FollowUpsOverdue struct {
	BaseEvent
	AgentID uuid.UUID         `json:"agentId"`
	Leads   []OverdueLeadInfo `json:"leads"`
}

func (e FollowUpsOverdue) EventName() string { return "followups.overdue" }

// =============================================================================
// Lead Conflict Events
// =============================================================================

// LeadConflictBlocked is published when a registration attempt is refused.
type LeadConflictBlocked struct {
	BaseEvent
	Phone             string    `json:"phone"`
	RequestingAgentID uuid.UUID `json:"requestingAgentId"`
	Reason            string    `json:"reason"`
}

func (e LeadConflictBlocked) EventName() string { return "leads.conflict.blocked" }
