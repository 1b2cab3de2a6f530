package handler

import (
	"github.com/gin-gonic/gin"
	installmentapp "github.com/goldshop/backend/internal/application/installment"
	"github.com/google/uuid"
)

// AdjustmentHandler handles manual ledger correction API endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustmentService *installmentapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustmentService *installmentapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

// ApplyAdjustmentRequest is the request body for a manual weight correction
type ApplyAdjustmentRequest struct {
	// WeightDelta is signed: negative reduces the balance, positive raises it
	WeightDelta string `json:"weight_delta" binding:"required"`
	Reason      string `json:"reason" binding:"required,min=1,max=500"`
	Actor       string `json:"actor" binding:"required,min=1,max=100"`
}

// ReverseEntryRequest is the request body for reversing a prior entry
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
	Actor  string `json:"actor" binding:"required,min=1,max=100"`
}

// Apply appends a manual weight correction to the ledger
func (h *AdjustmentHandler) Apply(c *gin.Context) {
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

	var req ApplyAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.adjustmentService.ApplyAdjustment(c.Request.Context(), installmentapp.ApplyAdjustmentRequest{
		TenantID:    tenantID,
		ContractID:  contractID,
		WeightDelta: req.WeightDelta,
		Reason:      req.Reason,
		Actor:       req.Actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// Reverse appends a compensating entry that exactly undoes a prior entry.
// The original stays in the ledger untouched.
func (h *AdjustmentHandler) Reverse(c *gin.Context) {
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

	entryID, err := uuid.Parse(c.Param("entry_id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	var req ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.adjustmentService.ReverseEntry(c.Request.Context(), installmentapp.ReverseEntryRequest{
		TenantID:   tenantID,
		ContractID: contractID,
		EntryID:    entryID,
		Reason:     req.Reason,
		Actor:      req.Actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}
