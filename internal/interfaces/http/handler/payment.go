package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	installmentapp "github.com/goldshop/backend/internal/application/installment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles installment payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *installmentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *installmentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ProcessPaymentRequest is the request body for a payment. The price quote is
// supplied by the caller; the ledger never fetches market prices itself.
type ProcessPaymentRequest struct {
	CashAmount        decimal.Decimal `json:"cash_amount" binding:"required"`
	QuotePricePerGram decimal.Decimal `json:"quote_price_per_gram" binding:"required"`
	QuotedAt          time.Time       `json:"quoted_at" binding:"required"`
	QuoteSource       string          `json:"quote_source" binding:"required,min=1,max=100"`
	IsEarlyPayoff     bool            `json:"is_early_payoff"`
	Actor             string          `json:"actor" binding:"required,min=1,max=100"`
}

// Process converts a cash payment into a weight reduction on the contract.
// Retries carrying the same X-Idempotency-Key replay the original outcome.
func (h *PaymentHandler) Process(c *gin.Context) {
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

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), installmentapp.ProcessPaymentRequest{
		TenantID:          tenantID,
		ContractID:        contractID,
		CashAmount:        req.CashAmount,
		QuotePricePerGram: req.QuotePricePerGram,
		QuotedAt:          req.QuotedAt,
		QuoteSource:       req.QuoteSource,
		IsEarlyPayoff:     req.IsEarlyPayoff,
		Actor:             req.Actor,
		IdempotencyKey:    getIdempotencyKey(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if result.Duplicate {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}
