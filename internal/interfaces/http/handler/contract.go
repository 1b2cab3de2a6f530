package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	installmentapp "github.com/goldshop/backend/internal/application/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractHandler handles installment contract API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *installmentapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *installmentapp.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// CreateContractRequest is the request body for creating a contract
type CreateContractRequest struct {
	ContractNumber string `json:"contract_number" binding:"required,min=1,max=64"`
	CustomerID     string `json:"customer_id" binding:"required,uuid"`
	// InitialWeight is the owed gold weight in grams, up to 3 decimal places
	InitialWeight           string           `json:"initial_weight" binding:"required"`
	OriginalPricePerGram    decimal.Decimal  `json:"original_price_per_gram" binding:"required"`
	Frequency               string           `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY"`
	InstallmentCount        int              `json:"installment_count" binding:"required,gt=0"`
	SignedAt                time.Time        `json:"signed_at" binding:"required"`
	CeilingPrice            *decimal.Decimal `json:"ceiling_price"`
	FloorPrice              *decimal.Decimal `json:"floor_price"`
	EarlyPayoffDiscountRate *decimal.Decimal `json:"early_payoff_discount_rate"`
	AllowCredit             bool             `json:"allow_credit"`
	GraceDays               int              `json:"grace_days" binding:"omitempty,gte=0"`
	PenaltyRate             decimal.Decimal  `json:"penalty_rate"`
}

// CancelContractRequest is the request body for cancelling a contract
type CancelContractRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// Create registers a new installment contract
func (h *ContractHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), installmentapp.CreateContractRequest{
		TenantID:                tenantID,
		ContractNumber:          req.ContractNumber,
		CustomerID:              customerID,
		InitialWeight:           req.InitialWeight,
		OriginalPricePerGram:    req.OriginalPricePerGram,
		Frequency:               req.Frequency,
		InstallmentCount:        req.InstallmentCount,
		SignedAt:                req.SignedAt,
		CeilingPrice:            req.CeilingPrice,
		FloorPrice:              req.FloorPrice,
		EarlyPayoffDiscountRate: req.EarlyPayoffDiscountRate,
		AllowCredit:             req.AllowCredit,
		GraceDays:               req.GraceDays,
		PenaltyRate:             req.PenaltyRate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, contract)
}

// GetByID retrieves a contract by ID
func (h *ContractHandler) GetByID(c *gin.Context) {
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

	contract, err := h.contractService.GetContract(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// List retrieves a paginated list of contracts, optionally filtered by status
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}

	result, err := h.contractService.ListContracts(c.Request.Context(), tenantID, c.Query("status"), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Cancel voids a contract that has no payments yet
func (h *ContractHandler) Cancel(c *gin.Context) {
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

	var req CancelContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	contract, err := h.contractService.CancelContract(c.Request.Context(), tenantID, contractID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// GetStatement retrieves a contract with its full entry history and the
// folded balance
func (h *ContractHandler) GetStatement(c *gin.Context) {
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

	statement, err := h.contractService.GetStatement(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// GetHistory retrieves a page of a contract's ledger entries
func (h *ContractHandler) GetHistory(c *gin.Context) {
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

	listReq := dto.DefaultListRequest()
	listReq.OrderBy = "sequence"
	listReq.OrderDir = "asc"
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}

	result, err := h.contractService.GetHistory(c.Request.Context(), tenantID, contractID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
