package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error)
	FindLeadsByPhone(ctx context.Context, phone string) ([]Lead, error)
	FindActiveLeadIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ScheduleCacheWriter overwrites a lead's follow-up cache fields.
// The synchronizer is the only legal caller of UpdateScheduleCache.
type ScheduleCacheWriter interface {
	UpdateScheduleCache(ctx context.Context, leadID uuid.UUID, params ScheduleCacheParams) error
}

// FollowUpReader provides read access to a lead's follow-up log.
type FollowUpReader interface {
	FindPendingFollowUps(ctx context.Context, leadID uuid.UUID) ([]FollowUpRecord, error)
	ListFollowUpsByLead(ctx context.Context, leadID uuid.UUID) ([]FollowUpRecord, error)
	GetFollowUpByID(ctx context.Context, id uuid.UUID) (FollowUpRecord, error)
}

// FollowUpWriter appends to and mutates the follow-up log.
type FollowUpWriter interface {
	CreateFollowUp(ctx context.Context, params CreateFollowUpParams) (FollowUpRecord, error)
	CompleteFollowUp(ctx context.Context, id uuid.UUID) (FollowUpRecord, error)
}

// InterestedProductReader exposes the product codes attached to a lead.
type InterestedProductReader interface {
	ListInterestedProducts(ctx context.Context, leadID uuid.UUID) ([]string, error)
}

// OverdueScanner supports the batch processor's scan-then-flip loop.
type OverdueScanner interface {
	FindOverdueLeads(ctx context.Context, now time.Time) ([]OverdueLead, error)
	MarkFollowUpOverdue(ctx context.Context, leadID uuid.UUID) error
}

// AgentDirectory resolves agent contact details for notifications.
type AgentDirectory interface {
	GetAgentByID(ctx context.Context, id uuid.UUID) (Agent, error)
}

// =====================================
// Composite Interface
// =====================================

// LeadsRepository defines the complete interface for leads data operations.
// Composed of smaller, focused interfaces for better testability and flexibility.
type LeadsRepository interface {
	LeadReader
	ScheduleCacheWriter
	FollowUpReader
	FollowUpWriter
	InterestedProductReader
	OverdueScanner
	AgentDirectory
}

// Ensure Repository implements LeadsRepository
var _ LeadsRepository = (*Repository)(nil)
