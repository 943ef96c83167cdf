// Package notification turns domain events into agent-facing alerts.
// Content stays minimal by design; delivery channels beyond the overdue
// digest email belong to the surrounding system.
package notification

import (
	"context"
	"fmt"
	"strings"

	"sales_crm_backend/internal/email"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/logger"
)

// Module subscribes to follow-up events and emails the owning agents.
type Module struct {
	directory repository.AgentDirectory
	sender    email.Sender
	log       *logger.Logger
}

// New creates the notification module.
func New(directory repository.AgentDirectory, sender email.Sender, log *logger.Logger) *Module {
	return &Module{
		directory: directory,
		sender:    sender,
		log:       log,
	}
}

// RegisterHandlers subscribes the module to the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.FollowUpsOverdue{}.EventName(), events.HandlerFunc(m.handleOverdue))
}

// handleOverdue emails one agent a digest of their leads that just went
// overdue. One event carries all of the agent's leads from a single scan run.
func (m *Module) handleOverdue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.FollowUpsOverdue)
	if !ok {
		return nil
	}

	agent, err := m.directory.GetAgentByID(ctx, e.AgentID)
	if err != nil {
		return fmt.Errorf("resolve agent %s: %w", e.AgentID, err)
	}

	subject := fmt.Sprintf("Seguimientos vencidos: %d", len(e.Leads))
	return m.sender.Send(ctx, agent.Email, subject, renderOverdueDigest(agent.FullName, e.Leads))
}

func renderOverdueDigest(agentName string, leads []events.OverdueLeadInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hola %s,</p>", agentName)
	fmt.Fprintf(&b, "<p>Tienes %d seguimiento(s) vencido(s):</p><ul>", len(leads))
	for _, lead := range leads {
		fmt.Fprintf(&b, "<li>%s (%s) - vencido desde %s</li>",
			lead.ContactName, lead.Phone, lead.DueAt.Format("02/01/2006 15:04"))
	}
	b.WriteString("</ul>")
	return b.String()
}
