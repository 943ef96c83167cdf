package handler

import (
	"net/http"

	"sales_crm_backend/internal/leads/conflict"
	"sales_crm_backend/internal/leads/followups"
	"sales_crm_backend/internal/leads/overdue"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/httpkit"
	"sales_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	followups *followups.Service
	resolver  *conflict.Resolver
	processor *overdue.Processor
	val       *validator.Validator
}

func New(followupsSvc *followups.Service, resolver *conflict.Resolver, processor *overdue.Processor, val *validator.Validator) *Handler {
	return &Handler{
		followups: followupsSvc,
		resolver:  resolver,
		processor: processor,
		val:       val,
	}
}

// RegisterLeadRoutes mounts the per-lead routes.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.POST("/check-conflict", h.CheckConflict)
	rg.GET("/:id/followups", h.ListFollowUps)
	rg.POST("/:id/followups", h.ScheduleFollowUp)
}

// RegisterFollowUpRoutes mounts the follow-up and batch routes.
func (h *Handler) RegisterFollowUpRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/complete", h.CompleteFollowUp)
	rg.POST("/sync", h.SyncMany)
	rg.POST("/sync-all", h.SyncAllActive)
	rg.POST("/process-overdue", h.ProcessOverdue)
}

// CheckConflict resolves whether a registration for a phone may proceed.
// The requesting agent comes from the access token, never the request body.
func (h *Handler) CheckConflict(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CheckConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	decision, err := h.resolver.Resolve(c.Request.Context(), req.Phone, identity.AgentID(), req.ProductCodes)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToConflictDecisionResponse(decision))
}

func (h *Handler) ListFollowUps(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	records, err := h.followups.ListByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.FollowUpListResponse{Items: make([]transport.FollowUpResponse, 0, len(records))}
	for _, rec := range records {
		resp.Items = append(resp.Items, transport.ToFollowUpResponse(rec))
	}

	httpkit.OK(c, resp)
}

func (h *Handler) ScheduleFollowUp(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ScheduleFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	visible := true
	if req.VisibleToAgent != nil {
		visible = *req.VisibleToAgent
	}

	record, err := h.followups.Schedule(c.Request.Context(), leadID, identity.AgentID(), followups.ScheduleParams{
		Type:           req.Type,
		ScheduledAt:    req.ScheduledAt,
		VisibleToAgent: visible,
		Notes:          req.Notes,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToFollowUpResponse(record))
}

func (h *Handler) CompleteFollowUp(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	followUpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	record, syncResult, err := h.followups.Complete(c.Request.Context(), followUpID, identity.AgentID())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.CompleteFollowUpResponse{
		FollowUp:   transport.ToFollowUpResponse(record),
		HasPending: syncResult.HasPending,
	}
	if syncResult.Next != nil {
		next := transport.ToFollowUpResponse(*syncResult.Next)
		resp.Next = &next
	}

	httpkit.OK(c, resp)
}

func (h *Handler) SyncMany(c *gin.Context) {
	var req transport.SyncManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result := h.followups.SynchronizeMany(c.Request.Context(), req.LeadIDs)
	httpkit.OK(c, transport.ToBatchResultResponse(result))
}

func (h *Handler) SyncAllActive(c *gin.Context) {
	result, err := h.followups.SynchronizeAllActive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToBatchResultResponse(result))
}

// ProcessOverdue runs one overdue scan. The external cron calls this endpoint
// on its cadence; the scheduler worker invokes the same processor directly.
func (h *Handler) ProcessOverdue(c *gin.Context) {
	result, err := h.processor.Process(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToProcessOverdueResponse(result))
}
