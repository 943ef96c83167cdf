// Package overdue implements the periodic scan that marks follow-ups overdue
// and alerts the owning agents.
//
// The lead cache state machine is one-way here: pending -> overdue, triggered
// when the cached due date has passed and the lead is still in a non-terminal
// pipeline state. Synchronization after a completion is the only path to
// done; Won and Lost leads freeze the cache and are skipped by the scan query.
package overdue

import (
	"context"
	"time"

	"sales_crm_backend/internal/businesshours"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository defines the data access the processor needs.
type Repository interface {
	repository.OverdueScanner
}

// Notifier delivers an overdue digest to one agent. Implementations live in
// the notification module; the processor only emits requests.
type Notifier interface {
	NotifyOverdue(ctx context.Context, agentID uuid.UUID, leads []events.OverdueLeadInfo) error
}

// Failure records one lead that could not be flipped.
type Failure struct {
	LeadID uuid.UUID
	Err    error
}

// Result summarizes one processing run. Per-lead and per-agent failures are
// reported here, never raised as a run-level error.
type Result struct {
	Scanned        int
	Marked         int
	Failed         int
	AgentsNotified int
	NotifyFailed   int
	Failures       []Failure
}

// Processor is the batch orchestration over the follow-up cache.
type Processor struct {
	repo     Repository
	notifier Notifier
	calendar *businesshours.Calendar
	log      *logger.Logger
}

// New creates an overdue processor.
func New(repo Repository, notifier Notifier, calendar *businesshours.Calendar, log *logger.Logger) *Processor {
	return &Processor{
		repo:     repo,
		notifier: notifier,
		calendar: calendar,
		log:      log,
	}
}

// Process runs one scan. Each candidate lead is flipped independently; a
// failure on one lead never blocks the others. Flipped leads are grouped by
// owning agent so several simultaneous overdues produce one notification
// request per agent, not one per lead.
func (p *Processor) Process(ctx context.Context) (Result, error) {
	now := time.Now().In(p.calendar.Location())

	candidates, err := p.repo.FindOverdueLeads(ctx, now)
	if err != nil {
		return Result{}, err
	}

	result := Result{Scanned: len(candidates)}
	byAgent := make(map[uuid.UUID][]events.OverdueLeadInfo)

	for _, lead := range candidates {
		if err := p.repo.MarkFollowUpOverdue(ctx, lead.LeadID); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, Failure{LeadID: lead.LeadID, Err: err})
			if p.log != nil {
				p.log.SyncFailure(lead.LeadID.String(), err)
			}
			continue
		}

		result.Marked++
		byAgent[lead.OwningAgentID] = append(byAgent[lead.OwningAgentID], events.OverdueLeadInfo{
			LeadID:      lead.LeadID,
			ContactName: lead.ContactName,
			Phone:       lead.Phone,
			DueAt:       lead.DueAt,
		})
	}

	for agentID, leads := range byAgent {
		if p.notifier == nil {
			break
		}
		if err := p.notifier.NotifyOverdue(ctx, agentID, leads); err != nil {
			result.NotifyFailed++
			if p.log != nil {
				p.log.NotificationEvent(agentID.String(), len(leads), false, err.Error())
			}
			continue
		}
		result.AgentsNotified++
		if p.log != nil {
			p.log.NotificationEvent(agentID.String(), len(leads), true, "")
		}
	}

	return result, nil
}
