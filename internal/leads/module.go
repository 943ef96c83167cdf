// Package leads provides the lead follow-up bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"sales_crm_backend/internal/businesshours"
	"sales_crm_backend/internal/events"
	apphttp "sales_crm_backend/internal/http"
	"sales_crm_backend/internal/leads/conflict"
	"sales_crm_backend/internal/leads/followups"
	"sales_crm_backend/internal/leads/handler"
	"sales_crm_backend/internal/leads/overdue"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"
	"sales_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	followups *followups.Service
	resolver  *conflict.Resolver
	processor *overdue.Processor
	repo      *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
// The notifier may be nil in contexts that never run the overdue processor.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, notifier overdue.Notifier, val *validator.Validator, cfg config.CalendarConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)

	calendarCfg := businesshours.DefaultConfig()
	if cfg != nil && cfg.GetBusinessTimezone() != "" {
		calendarCfg.Timezone = cfg.GetBusinessTimezone()
	}
	calendar := businesshours.New(calendarCfg)

	followupsSvc := followups.New(repo, calendar, businesshours.DefaultDeadlineRules(), eventBus, log)
	resolver := conflict.New(repo, eventBus, log)
	processor := overdue.New(repo, notifier, calendar, log)

	h := handler.New(followupsSvc, resolver, processor, val)

	return &Module{
		handler:   h,
		followups: followupsSvc,
		resolver:  resolver,
		processor: processor,
		repo:      repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// FollowUpsService returns the follow-ups service for external use.
func (m *Module) FollowUpsService() *followups.Service {
	return m.followups
}

// ConflictResolver returns the conflict resolver for external use.
func (m *Module) ConflictResolver() *conflict.Resolver {
	return m.resolver
}

// OverdueProcessor returns the overdue processor for external use.
func (m *Module) OverdueProcessor() *overdue.Processor {
	return m.processor
}

// Repository returns the shared leads repository.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterFollowUpRoutes(ctx.Protected.Group("/followups"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
