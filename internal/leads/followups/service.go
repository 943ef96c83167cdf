// Package followups contains the follow-up scheduling service and the cache
// synchronizer for the leads bounded context.
//
// A lead's follow-up cache (next due date, completion, overdue flag, state) is
// a projection of its append-only follow-up log. The synchronizer recomputes
// that projection from source on every call instead of patching it
// incrementally, so the cache can never drift from the log.
package followups

import (
	"context"
	"errors"
	"time"

	"sales_crm_backend/internal/businesshours"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/apperr"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the follow-ups
// service. This is a consumer-driven interface - only what follow-ups needs.
type Repository interface {
	repository.LeadReader
	repository.ScheduleCacheWriter
	repository.FollowUpReader
	repository.FollowUpWriter
}

// Service schedules follow-ups and keeps lead caches synchronized.
type Service struct {
	repo     Repository
	calendar *businesshours.Calendar
	rules    businesshours.DeadlineRules
	bus      events.Bus
	log      *logger.Logger
}

// New creates a follow-ups service.
func New(repo Repository, calendar *businesshours.Calendar, rules businesshours.DeadlineRules, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		calendar: calendar,
		rules:    rules,
		bus:      bus,
		log:      log,
	}
}

// ScheduleParams describes a follow-up to create.
type ScheduleParams struct {
	Type           string
	ScheduledAt    time.Time
	VisibleToAgent bool
	Notes          *string
}

// Schedule creates a follow-up for a lead. The scheduled time is normalized
// into business hours and the deadline derived from the type's rule, then the
// lead's cache is resynchronized.
func (s *Service) Schedule(ctx context.Context, leadID uuid.UUID, agentID uuid.UUID, params ScheduleParams) (repository.FollowUpRecord, error) {
	if !domain.IsKnownFollowUpType(params.Type) {
		return repository.FollowUpRecord{}, apperr.Validation("unknown follow-up type")
	}

	lead, err := s.repo.GetLeadByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.FollowUpRecord{}, apperr.NotFound("lead not found")
		}
		return repository.FollowUpRecord{}, err
	}

	if domain.IsTerminal(lead.PipelineState) {
		return repository.FollowUpRecord{}, apperr.Validation("cannot schedule a follow-up on a closed lead")
	}

	scheduledAt := s.calendar.AdjustToBusinessHours(params.ScheduledAt.In(s.calendar.Location()))
	deadlineAt := s.calendar.ComputeDeadline(scheduledAt, params.Type, s.rules)

	record, err := s.repo.CreateFollowUp(ctx, repository.CreateFollowUpParams{
		LeadID:         leadID,
		Type:           params.Type,
		ScheduledAt:    scheduledAt,
		DeadlineAt:     deadlineAt,
		VisibleToAgent: params.VisibleToAgent,
		Notes:          params.Notes,
	})
	if err != nil {
		return repository.FollowUpRecord{}, err
	}

	if _, err := s.Synchronize(ctx, leadID); err != nil {
		return repository.FollowUpRecord{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.FollowUpScheduled{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      leadID,
			FollowUpID:  record.ID,
			AgentID:     agentID,
			Type:        record.Type,
			ScheduledAt: record.ScheduledAt,
			DeadlineAt:  record.DeadlineAt,
		})
	}

	return record, nil
}

// Complete marks a follow-up done and resynchronizes the lead's cache.
// Completing an already-completed record is safe to retry.
func (s *Service) Complete(ctx context.Context, followUpID uuid.UUID, agentID uuid.UUID) (repository.FollowUpRecord, SyncResult, error) {
	record, err := s.repo.CompleteFollowUp(ctx, followUpID)
	if err != nil {
		if errors.Is(err, repository.ErrFollowUpNotFound) {
			return repository.FollowUpRecord{}, SyncResult{}, apperr.NotFound("follow-up not found")
		}
		return repository.FollowUpRecord{}, SyncResult{}, err
	}

	result, err := s.Synchronize(ctx, record.LeadID)
	if err != nil {
		return repository.FollowUpRecord{}, SyncResult{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.FollowUpCompleted{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     record.LeadID,
			FollowUpID: record.ID,
			AgentID:    agentID,
		})
	}

	return record, result, nil
}

// ListByLead returns a lead's full follow-up log, newest first.
func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID) ([]repository.FollowUpRecord, error) {
	if _, err := s.repo.GetLeadByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}

	return s.repo.ListFollowUpsByLead(ctx, leadID)
}
