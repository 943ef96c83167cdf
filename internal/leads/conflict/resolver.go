// Package conflict decides whether a new lead registration may proceed when
// the same contact already exists in another agent's pipeline.
//
// The same contact legitimately recurs across inbound channels, so the
// resolver distinguishes "abandoned opportunity, safe to re-open" from
// "active deal in progress, must not be poached". Blocking is reserved for
// duplicated commercial effort on the same product past the qualification
// stage; everything else resolves to a permit, possibly with a warning.
package conflict

import (
	"context"
	"fmt"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/logger"
	"sales_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Outcome tags a Decision. Every input combination maps to exactly one
// outcome; there is no fall-through default.
type Outcome string

const (
	// OutcomeAllowNew permits registration of a brand new lead.
	OutcomeAllowNew Outcome = "allow_new"
	// OutcomeAllowReactivation permits the same agent to resume their own closed lead.
	OutcomeAllowReactivation Outcome = "allow_reactivation"
	// OutcomeAllowWithWarning permits registration but surfaces competing agents.
	OutcomeAllowWithWarning Outcome = "allow_with_warning"
	// OutcomeBlock refuses registration.
	OutcomeBlock Outcome = "block"
)

// LeadConflict identifies another lead holding the same phone.
type LeadConflict struct {
	LeadID        uuid.UUID `json:"leadId"`
	AgentID       uuid.UUID `json:"agentId"`
	PipelineState string    `json:"pipelineState"`
}

// ProductOverlap is a non-blocking product collision with a lead still in New.
type ProductOverlap struct {
	LeadID        uuid.UUID `json:"leadId"`
	AgentID       uuid.UUID `json:"agentId"`
	ProductCode   string    `json:"productCode"`
	PipelineState string    `json:"pipelineState"`
}

// Decision is the resolver's result. "Blocked" is a successful, typed result,
// not an error.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	// Conflicts lists the agents currently holding this phone in a
	// non-terminal lead.
	Conflicts []LeadConflict `json:"conflicts,omitempty"`
	// Overlaps lists product collisions with leads still in New.
	Overlaps []ProductOverlap `json:"overlaps,omitempty"`
	// Previous lists historical terminal leads for this phone (informational).
	Previous []LeadConflict `json:"previous,omitempty"`
	// BlockReason is set only when Outcome is OutcomeBlock.
	BlockReason string `json:"blockReason,omitempty"`
}

// Allowed reports whether the registration may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome != OutcomeBlock
}

// Repository defines the read-only data access the resolver needs.
type Repository interface {
	repository.LeadReader
	repository.InterestedProductReader
}

// Resolver classifies a (phone, requesting agent, requested products) tuple.
type Resolver struct {
	repo Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a conflict resolver. The bus may be nil; blocked decisions are
// then still returned but not announced.
func New(repo Repository, bus events.Bus, log *logger.Logger) *Resolver {
	return &Resolver{repo: repo, bus: bus, log: log}
}

// Resolve evaluates the decision table in order:
//  1. phone unknown                      -> allow new
//  2. only terminal leads exist          -> reactivation for the same agent,
//     otherwise allow new with history
//  3. a non-terminal lead exists         -> block on a product overlap past
//     qualification, warn otherwise
//
// Repository failures propagate verbatim; the resolver raises no domain errors.
func (r *Resolver) Resolve(ctx context.Context, rawPhone string, agentID uuid.UUID, productCodes []string) (Decision, error) {
	normalized := phone.NormalizeE164(rawPhone)

	leads, err := r.repo.FindLeadsByPhone(ctx, normalized)
	if err != nil {
		return Decision{}, err
	}

	if len(leads) == 0 {
		return r.logged(ctx, normalized, agentID, Decision{Outcome: OutcomeAllowNew}), nil
	}

	var active, terminal []repository.Lead
	for _, lead := range leads {
		if domain.IsTerminal(lead.PipelineState) {
			terminal = append(terminal, lead)
		} else {
			active = append(active, lead)
		}
	}

	if len(active) == 0 {
		return r.logged(ctx, normalized, agentID, r.resolveTerminalOnly(terminal, agentID)), nil
	}

	decision, err := r.resolveActive(ctx, active, agentID, productCodes)
	if err != nil {
		return Decision{}, err
	}
	return r.logged(ctx, normalized, agentID, decision), nil
}

// resolveTerminalOnly handles phones whose every lead is Won or Lost.
func (r *Resolver) resolveTerminalOnly(terminal []repository.Lead, agentID uuid.UUID) Decision {
	previous := toConflicts(terminal)

	for _, lead := range terminal {
		if lead.OwningAgentID == agentID || lead.OriginalAgentID == agentID {
			return Decision{Outcome: OutcomeAllowReactivation, Previous: previous}
		}
	}

	// A different agent may freely re-engage a closed contact.
	return Decision{Outcome: OutcomeAllowNew, Previous: previous}
}

// resolveActive handles phones with at least one lead still in play.
func (r *Resolver) resolveActive(ctx context.Context, active []repository.Lead, agentID uuid.UUID, productCodes []string) (Decision, error) {
	conflicts := toConflicts(active)

	if len(productCodes) == 0 {
		return Decision{Outcome: OutcomeAllowWithWarning, Conflicts: conflicts}, nil
	}

	requested := make(map[string]struct{}, len(productCodes))
	for _, code := range productCodes {
		requested[code] = struct{}{}
	}

	var overlaps []ProductOverlap
	for _, lead := range active {
		held, err := r.repo.ListInterestedProducts(ctx, lead.ID)
		if err != nil {
			return Decision{}, err
		}

		for _, code := range held {
			if _, wanted := requested[code]; !wanted {
				continue
			}

			// First advanced-stage match wins.
			if domain.IsAdvanced(lead.PipelineState) {
				return Decision{
					Outcome:   OutcomeBlock,
					Conflicts: conflicts,
					BlockReason: fmt.Sprintf(
						"product %s already in advanced pipeline stage (%s) with agent %s",
						code, lead.PipelineState, lead.OwningAgentID,
					),
				}, nil
			}

			overlaps = append(overlaps, ProductOverlap{
				LeadID:        lead.ID,
				AgentID:       lead.OwningAgentID,
				ProductCode:   code,
				PipelineState: lead.PipelineState,
			})
		}
	}

	return Decision{Outcome: OutcomeAllowWithWarning, Conflicts: conflicts, Overlaps: overlaps}, nil
}

func (r *Resolver) logged(ctx context.Context, phone string, agentID uuid.UUID, decision Decision) Decision {
	if r.log != nil {
		r.log.ConflictDecision(phone, string(decision.Outcome), agentID.String())
	}
	if decision.Outcome == OutcomeBlock && r.bus != nil {
		r.bus.Publish(ctx, events.LeadConflictBlocked{
			BaseEvent:         events.NewBaseEvent(),
			Phone:             phone,
			RequestingAgentID: agentID,
			Reason:            decision.BlockReason,
		})
	}
	return decision
}

func toConflicts(leads []repository.Lead) []LeadConflict {
	conflicts := make([]LeadConflict, 0, len(leads))
	for _, lead := range leads {
		conflicts = append(conflicts, LeadConflict{
			LeadID:        lead.ID,
			AgentID:       lead.OwningAgentID,
			PipelineState: lead.PipelineState,
		})
	}
	return conflicts
}
