// Package transport defines the request and response types for the leads
// HTTP surface, plus conversions from repository and service types.
package transport

import (
	"time"

	"sales_crm_backend/internal/leads/conflict"
	"sales_crm_backend/internal/leads/followups"
	"sales_crm_backend/internal/leads/overdue"
	"sales_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// =============================================================================
// Requests
// =============================================================================

// CheckConflictRequest asks whether a registration for this phone may proceed.
// The requesting agent is taken from the authenticated identity.
type CheckConflictRequest struct {
	Phone        string   `json:"phone" validate:"required"`
	ProductCodes []string `json:"productCodes"`
}

// ScheduleFollowUpRequest schedules a follow-up for a lead.
type ScheduleFollowUpRequest struct {
	Type           string    `json:"type" validate:"required"`
	ScheduledAt    time.Time `json:"scheduledAt" validate:"required"`
	VisibleToAgent *bool     `json:"visibleToAgent"`
	Notes          *string   `json:"notes"`
}

// SyncManyRequest resynchronizes an explicit set of leads.
type SyncManyRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1"`
}

// =============================================================================
// Responses
// =============================================================================

// ConflictDecisionResponse is the resolver's verdict.
type ConflictDecisionResponse struct {
	Outcome     string                    `json:"outcome"`
	Allowed     bool                      `json:"allowed"`
	Conflicts   []conflict.LeadConflict   `json:"conflicts,omitempty"`
	Overlaps    []conflict.ProductOverlap `json:"overlaps,omitempty"`
	Previous    []conflict.LeadConflict   `json:"previous,omitempty"`
	BlockReason string                    `json:"blockReason,omitempty"`
}

// FollowUpResponse is one follow-up record.
type FollowUpResponse struct {
	ID             uuid.UUID  `json:"id"`
	LeadID         uuid.UUID  `json:"leadId"`
	Type           string     `json:"type"`
	ScheduledAt    time.Time  `json:"scheduledAt"`
	DeadlineAt     time.Time  `json:"deadlineAt"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	VisibleToAgent bool       `json:"visibleToAgent"`
	Overdue        bool       `json:"overdue"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// FollowUpListResponse wraps a lead's follow-up log.
type FollowUpListResponse struct {
	Items []FollowUpResponse `json:"items"`
}

// CompleteFollowUpResponse reports the completed record and the lead's
// recomputed cache state.
type CompleteFollowUpResponse struct {
	FollowUp   FollowUpResponse  `json:"followUp"`
	HasPending bool              `json:"hasPending"`
	Next       *FollowUpResponse `json:"next,omitempty"`
}

// BatchFailureResponse is one failed item of a batch synchronization.
type BatchFailureResponse struct {
	LeadID uuid.UUID `json:"leadId"`
	Error  string    `json:"error"`
}

// BatchResultResponse summarizes a batch synchronization run.
type BatchResultResponse struct {
	Succeeded      int                    `json:"succeeded"`
	Failed         int                    `json:"failed"`
	WithPending    int                    `json:"withPending"`
	WithoutPending int                    `json:"withoutPending"`
	Failures       []BatchFailureResponse `json:"failures,omitempty"`
}

// ProcessOverdueResponse summarizes an overdue-scan run.
type ProcessOverdueResponse struct {
	Scanned        int                    `json:"scanned"`
	Marked         int                    `json:"marked"`
	Failed         int                    `json:"failed"`
	AgentsNotified int                    `json:"agentsNotified"`
	NotifyFailed   int                    `json:"notifyFailed"`
	Failures       []BatchFailureResponse `json:"failures,omitempty"`
}

// =============================================================================
// Conversions
// =============================================================================

// ToConflictDecisionResponse converts a resolver decision.
func ToConflictDecisionResponse(d conflict.Decision) ConflictDecisionResponse {
	return ConflictDecisionResponse{
		Outcome:     string(d.Outcome),
		Allowed:     d.Allowed(),
		Conflicts:   d.Conflicts,
		Overlaps:    d.Overlaps,
		Previous:    d.Previous,
		BlockReason: d.BlockReason,
	}
}

// ToFollowUpResponse converts a repository record.
func ToFollowUpResponse(rec repository.FollowUpRecord) FollowUpResponse {
	return FollowUpResponse{
		ID:             rec.ID,
		LeadID:         rec.LeadID,
		Type:           rec.Type,
		ScheduledAt:    rec.ScheduledAt,
		DeadlineAt:     rec.DeadlineAt,
		Completed:      rec.Completed,
		CompletedAt:    rec.CompletedAt,
		VisibleToAgent: rec.VisibleToAgent,
		Overdue:        rec.Overdue,
		Notes:          rec.Notes,
		CreatedAt:      rec.CreatedAt,
	}
}

// ToBatchResultResponse converts a synchronizer batch result.
func ToBatchResultResponse(r followups.BatchResult) BatchResultResponse {
	resp := BatchResultResponse{
		Succeeded:      r.Succeeded,
		Failed:         r.Failed,
		WithPending:    r.WithPending,
		WithoutPending: r.WithoutPending,
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, BatchFailureResponse{
			LeadID: f.LeadID,
			Error:  f.Err.Error(),
		})
	}
	return resp
}

// ToProcessOverdueResponse converts an overdue processor result.
func ToProcessOverdueResponse(r overdue.Result) ProcessOverdueResponse {
	resp := ProcessOverdueResponse{
		Scanned:        r.Scanned,
		Marked:         r.Marked,
		Failed:         r.Failed,
		AgentsNotified: r.AgentsNotified,
		NotifyFailed:   r.NotifyFailed,
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, BatchFailureResponse{
			LeadID: f.LeadID,
			Error:  f.Err.Error(),
		})
	}
	return resp
}
