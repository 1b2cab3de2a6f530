package installment

import (
	"time"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractResponse is the read model for a contract
type ContractResponse struct {
	ID                      uuid.UUID        `json:"id"`
	ContractNumber          string           `json:"contract_number"`
	CustomerID              uuid.UUID        `json:"customer_id"`
	InitialWeight           string           `json:"initial_weight"`
	CurrentBalance          string           `json:"current_balance"`
	OriginalPricePerGram    decimal.Decimal  `json:"original_price_per_gram"`
	Frequency               string           `json:"frequency"`
	InstallmentCount        int              `json:"installment_count"`
	SignedAt                time.Time        `json:"signed_at"`
	CeilingPrice            *decimal.Decimal `json:"ceiling_price,omitempty"`
	FloorPrice              *decimal.Decimal `json:"floor_price,omitempty"`
	EarlyPayoffDiscountRate *decimal.Decimal `json:"early_payoff_discount_rate,omitempty"`
	AllowCredit             bool             `json:"allow_credit"`
	GraceDays               int              `json:"grace_days"`
	PenaltyRate             decimal.Decimal  `json:"penalty_rate"`
	Status                  string           `json:"status"`
	LastSequence            int64            `json:"last_sequence"`
	Version                 int              `json:"version"`
	CompletedAt             *time.Time       `json:"completed_at,omitempty"`
	DefaultedAt             *time.Time       `json:"defaulted_at,omitempty"`
	CancelledAt             *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason            string           `json:"cancel_reason,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// ToContractResponse maps a contract aggregate to its read model
func ToContractResponse(c *installment.Contract) ContractResponse {
	return ContractResponse{
		ID:                      c.ID,
		ContractNumber:          c.ContractNumber,
		CustomerID:              c.CustomerID,
		InitialWeight:           c.InitialWeight.String(),
		CurrentBalance:          c.CurrentBalance.String(),
		OriginalPricePerGram:    c.OriginalPricePerGram,
		Frequency:               c.Frequency.String(),
		InstallmentCount:        c.InstallmentCount,
		SignedAt:                c.SignedAt,
		CeilingPrice:            c.CeilingPrice,
		FloorPrice:              c.FloorPrice,
		EarlyPayoffDiscountRate: c.EarlyPayoffDiscountRate,
		AllowCredit:             c.AllowCredit,
		GraceDays:               c.GraceDays,
		PenaltyRate:             c.PenaltyRate,
		Status:                  c.Status.String(),
		LastSequence:            c.LastSequence,
		Version:                 c.Version,
		CompletedAt:             c.CompletedAt,
		DefaultedAt:             c.DefaultedAt,
		CancelledAt:             c.CancelledAt,
		CancelReason:            c.CancelReason,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

// LedgerEntryResponse is the read model for a ledger entry
type LedgerEntryResponse struct {
	ID              uuid.UUID        `json:"id"`
	ContractID      uuid.UUID        `json:"contract_id"`
	Sequence        int64            `json:"sequence"`
	Kind            string           `json:"kind"`
	WeightDelta     string           `json:"weight_delta"`
	CashAmount      *decimal.Decimal `json:"cash_amount,omitempty"`
	PricePerGram    *decimal.Decimal `json:"price_per_gram,omitempty"`
	QuotedAt        *time.Time       `json:"quoted_at,omitempty"`
	QuoteSource     string           `json:"quote_source,omitempty"`
	Actor           string           `json:"actor"`
	Reason          string           `json:"reason,omitempty"`
	BalanceAfter    string           `json:"balance_after"`
	ReversesEntryID *uuid.UUID       `json:"reverses_entry_id,omitempty"`
	EntryDate       time.Time        `json:"entry_date"`
}

// ToLedgerEntryResponse maps a ledger entry to its read model
func ToLedgerEntryResponse(e *installment.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:              e.ID,
		ContractID:      e.ContractID,
		Sequence:        e.Sequence,
		Kind:            e.Kind.String(),
		WeightDelta:     e.WeightDelta.String(),
		CashAmount:      e.CashAmount,
		PricePerGram:    e.PricePerGram,
		QuotedAt:        e.QuotedAt,
		QuoteSource:     e.QuoteSource,
		Actor:           e.Actor,
		Reason:          e.Reason,
		BalanceAfter:    e.BalanceAfter.String(),
		ReversesEntryID: e.ReversesEntryID,
		EntryDate:       e.EntryDate,
	}
}

// StatementResponse is the full read model of a contract and its history.
// Balance and history come from the same fold, so the statement is always
// internally consistent.
type StatementResponse struct {
	Contract      ContractResponse      `json:"contract"`
	Entries       []LedgerEntryResponse `json:"entries"`
	FoldedBalance string                `json:"folded_balance"`
}

// PaginatedEntriesResponse is a page of ledger entries
type PaginatedEntriesResponse = shared.Paginated[LedgerEntryResponse]

// AssessmentResponse is the read model of a default assessment
type AssessmentResponse struct {
	ContractID             uuid.UUID  `json:"contract_id"`
	State                  string     `json:"state"`
	IsOverdue              bool       `json:"is_overdue"`
	MissedInstallments     int        `json:"missed_installments"`
	GraceDaysRemaining     int        `json:"grace_days_remaining"`
	SuggestedPenaltyWeight string     `json:"suggested_penalty_weight"`
	NextDueDate            *time.Time `json:"next_due_date,omitempty"`
	EvaluatedAt            time.Time  `json:"evaluated_at"`
}

// ToAssessmentResponse maps a default assessment to its read model
func ToAssessmentResponse(contractID uuid.UUID, a installment.DefaultAssessment) AssessmentResponse {
	return AssessmentResponse{
		ContractID:             contractID,
		State:                  a.State.String(),
		IsOverdue:              a.IsOverdue,
		MissedInstallments:     a.MissedInstallments,
		GraceDaysRemaining:     a.GraceDaysRemaining,
		SuggestedPenaltyWeight: a.SuggestedPenaltyWeight.String(),
		NextDueDate:            a.NextDueDate,
		EvaluatedAt:            a.EvaluatedAt,
	}
}

// PaymentResult reports the outcome of a processed payment
type PaymentResult struct {
	Entry LedgerEntryResponse `json:"entry"`
	// AppliedWeight is the weight actually credited against the balance
	AppliedWeight string `json:"applied_weight"`
	// RemainderCash is unconsumed cash the caller must return to the customer
	RemainderCash decimal.Decimal `json:"remainder_cash"`
	BalanceAfter  string          `json:"balance_after"`
	Completed     bool            `json:"completed"`
	// Duplicate is true when an idempotency key matched a prior payment and
	// the original outcome was returned unchanged
	Duplicate bool `json:"duplicate"`
}
