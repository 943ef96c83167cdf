package notification

import (
	"context"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/overdue"

	"github.com/google/uuid"
)

// BusNotifier implements the overdue processor's Notifier port by publishing
// a FollowUpsOverdue event synchronously, so a delivery failure surfaces in
// the processor's result instead of vanishing into a goroutine.
type BusNotifier struct {
	bus events.Bus
}

// NewBusNotifier creates a notifier backed by the event bus.
func NewBusNotifier(bus events.Bus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

// NotifyOverdue publishes the per-agent overdue digest event.
func (n *BusNotifier) NotifyOverdue(ctx context.Context, agentID uuid.UUID, leads []events.OverdueLeadInfo) error {
	return n.bus.PublishSync(ctx, events.FollowUpsOverdue{
		BaseEvent: events.NewBaseEvent(),
		AgentID:   agentID,
		Leads:     leads,
	})
}

var _ overdue.Notifier = (*BusNotifier)(nil)
