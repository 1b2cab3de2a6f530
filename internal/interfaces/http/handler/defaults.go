package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	installmentapp "github.com/goldshop/backend/internal/application/installment"
	"github.com/google/uuid"
)

// ScanScheduler reports the nightly default scan's last run
type ScanScheduler interface {
	LastRun() (at *time.Time, result *installmentapp.ScanResult, err error)
}

// DefaultHandler handles delinquency assessment and penalty API endpoints
type DefaultHandler struct {
	BaseHandler
	defaultService *installmentapp.DefaultService
	scheduler      ScanScheduler
}

// NewDefaultHandler creates a new DefaultHandler
func NewDefaultHandler(defaultService *installmentapp.DefaultService) *DefaultHandler {
	return &DefaultHandler{defaultService: defaultService}
}

// SetScheduler attaches the nightly scan scheduler for status reporting
func (h *DefaultHandler) SetScheduler(scheduler ScanScheduler) {
	h.scheduler = scheduler
}

// ApplyPenaltyRequest is the request body for an operator-approved penalty
type ApplyPenaltyRequest struct {
	PenaltyWeight string `json:"penalty_weight" binding:"required"`
	Reason        string `json:"reason" binding:"required,min=1,max=500"`
	Actor         string `json:"actor" binding:"required,min=1,max=100"`
}

// Assess evaluates a contract's delinquency standing without changing anything
func (h *DefaultHandler) Assess(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	assessment, err := h.defaultService.AssessContract(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, assessment)
}

// ApplyPenalty appends a penalty entry that an operator has signed off on
func (h *DefaultHandler) ApplyPenalty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req ApplyPenaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.defaultService.ApplyPenalty(c.Request.Context(), installmentapp.ApplyPenaltyRequest{
		TenantID:      tenantID,
		ContractID:    contractID,
		PenaltyWeight: req.PenaltyWeight,
		Reason:        req.Reason,
		Actor:         req.Actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// TriggerScan runs the default scan immediately instead of waiting for the
// scheduled run
func (h *DefaultHandler) TriggerScan(c *gin.Context) {
	result, err := h.defaultService.ScanForDefaults(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// SchedulerStatus reports whether the nightly scan is enabled and how its
// last run went
func (h *DefaultHandler) SchedulerStatus(c *gin.Context) {
	status := SchedulerStatusData{Enabled: h.scheduler != nil}
	if h.scheduler != nil {
		at, _, err := h.scheduler.LastRun()
		if at != nil {
			status.LastRunAt = at.Format(time.RFC3339)
		}
		if err != nil {
			status.LastError = err.Error()
		}
	}

	h.Success(c, status)
}
