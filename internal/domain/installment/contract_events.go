package installment

import (
	"time"

	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractCreatedEvent is raised when a new installment contract is signed
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID       uuid.UUID        `json:"contract_id"`
	ContractNumber   string           `json:"contract_number"`
	CustomerID       uuid.UUID        `json:"customer_id"`
	InitialWeight    string           `json:"initial_weight"`
	PricePerGram     decimal.Decimal  `json:"price_per_gram"`
	Frequency        PaymentFrequency `json:"frequency"`
	InstallmentCount int              `json:"installment_count"`
	SignedAt         time.Time        `json:"signed_at"`
}

// EventType returns the event type name
func (e *ContractCreatedEvent) EventType() string {
	return "ContractCreated"
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("ContractCreated", "Contract", c.ID, c.TenantID),
		ContractID:       c.ID,
		ContractNumber:   c.ContractNumber,
		CustomerID:       c.CustomerID,
		InitialWeight:    c.InitialWeight.String(),
		PricePerGram:     c.OriginalPricePerGram,
		Frequency:        c.Frequency,
		InstallmentCount: c.InstallmentCount,
		SignedAt:         c.SignedAt,
	}
}

// PaymentAppliedEvent is raised when a cash payment reduces the balance
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	EntryID        uuid.UUID       `json:"entry_id"`
	Sequence       int64           `json:"sequence"`
	CashAmount     decimal.Decimal `json:"cash_amount"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	WeightDelta    string          `json:"weight_delta"`
	BalanceAfter   string          `json:"balance_after"`
}

// EventType returns the event type name
func (e *PaymentAppliedEvent) EventType() string {
	return "PaymentApplied"
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(c *Contract, entry *LedgerEntry) *PaymentAppliedEvent {
	ev := &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentApplied", "Contract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		EntryID:         entry.ID,
		Sequence:        entry.Sequence,
		WeightDelta:     entry.WeightDelta.String(),
		BalanceAfter:    entry.BalanceAfter.String(),
	}
	if entry.CashAmount != nil {
		ev.CashAmount = *entry.CashAmount
	}
	if entry.PricePerGram != nil {
		ev.EffectivePrice = *entry.PricePerGram
	}
	return ev
}

// AdjustmentAppliedEvent is raised when a manual weight correction is appended
type AdjustmentAppliedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	EntryID        uuid.UUID `json:"entry_id"`
	Sequence       int64     `json:"sequence"`
	WeightDelta    string    `json:"weight_delta"`
	BalanceAfter   string    `json:"balance_after"`
	Reason         string    `json:"reason"`
	Actor          string    `json:"actor"`
}

// EventType returns the event type name
func (e *AdjustmentAppliedEvent) EventType() string {
	return "AdjustmentApplied"
}

// NewAdjustmentAppliedEvent creates a new AdjustmentAppliedEvent
func NewAdjustmentAppliedEvent(c *Contract, entry *LedgerEntry) *AdjustmentAppliedEvent {
	return &AdjustmentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AdjustmentApplied", "Contract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		EntryID:         entry.ID,
		Sequence:        entry.Sequence,
		WeightDelta:     entry.WeightDelta.String(),
		BalanceAfter:    entry.BalanceAfter.String(),
		Reason:          entry.Reason,
		Actor:           entry.Actor,
	}
}

// PenaltyAccruedEvent is raised when penalty weight is added to a contract
type PenaltyAccruedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	EntryID        uuid.UUID `json:"entry_id"`
	PenaltyWeight  string    `json:"penalty_weight"`
	BalanceAfter   string    `json:"balance_after"`
	Reason         string    `json:"reason"`
}

// EventType returns the event type name
func (e *PenaltyAccruedEvent) EventType() string {
	return "PenaltyAccrued"
}

// NewPenaltyAccruedEvent creates a new PenaltyAccruedEvent
func NewPenaltyAccruedEvent(c *Contract, entry *LedgerEntry) *PenaltyAccruedEvent {
	return &PenaltyAccruedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PenaltyAccrued", "Contract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		EntryID:         entry.ID,
		PenaltyWeight:   entry.WeightDelta.String(),
		BalanceAfter:    entry.BalanceAfter.String(),
		Reason:          entry.Reason,
	}
}

// PaymentReversedEvent is raised when a compensating reversal entry is appended
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	ContractID      uuid.UUID `json:"contract_id"`
	ContractNumber  string    `json:"contract_number"`
	EntryID         uuid.UUID `json:"entry_id"`
	ReversedEntryID uuid.UUID `json:"reversed_entry_id"`
	WeightDelta     string    `json:"weight_delta"`
	BalanceAfter    string    `json:"balance_after"`
	Reason          string    `json:"reason"`
	Actor           string    `json:"actor"`
}

// EventType returns the event type name
func (e *PaymentReversedEvent) EventType() string {
	return "PaymentReversed"
}

// NewPaymentReversedEvent creates a new PaymentReversedEvent
func NewPaymentReversedEvent(c *Contract, entry *LedgerEntry) *PaymentReversedEvent {
	ev := &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReversed", "Contract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		EntryID:         entry.ID,
		WeightDelta:     entry.WeightDelta.String(),
		BalanceAfter:    entry.BalanceAfter.String(),
		Reason:          entry.Reason,
		Actor:           entry.Actor,
	}
	if entry.ReversesEntryID != nil {
		ev.ReversedEntryID = *entry.ReversesEntryID
	}
	return ev
}

// ContractCompletedEvent is raised when the folded balance reaches exactly zero
type ContractCompletedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CompletedAt    time.Time `json:"completed_at"`
}

// EventType returns the event type name
func (e *ContractCompletedEvent) EventType() string {
	return "ContractCompleted"
}

// NewContractCompletedEvent creates a new ContractCompletedEvent
func NewContractCompletedEvent(c *Contract) *ContractCompletedEvent {
	completedAt := time.Now()
	if c.CompletedAt != nil {
		completedAt = *c.CompletedAt
	}
	return &ContractCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCompleted", "Contract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		CompletedAt:     completedAt,
	}
}

// ContractDefaultedEvent is raised when the grace period is exhausted without cure
type ContractDefaultedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	DefaultedAt    time.Time `json:"defaulted_at"`
	Balance        string    `json:"balance"`
}

// EventType returns the event type name
func (e *ContractDefaultedEvent) EventType() string {
	return "ContractDefaulted"
}

// NewContractDefaultedEvent creates a new ContractDefaultedEvent
func NewContractDefaultedEvent(c *Contract) *ContractDefaultedEvent {
	defaultedAt := time.Now()
	if c.DefaultedAt != nil {
		defaultedAt = *c.DefaultedAt
	}
	return &ContractDefaultedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractDefaulted", "Contract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		DefaultedAt:     defaultedAt,
		Balance:         c.CurrentBalance.String(),
	}
}

// ContractCancelledEvent is raised when a contract is cancelled administratively
type ContractCancelledEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CancelReason   string    `json:"cancel_reason"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// EventType returns the event type name
func (e *ContractCancelledEvent) EventType() string {
	return "ContractCancelled"
}

// NewContractCancelledEvent creates a new ContractCancelledEvent
func NewContractCancelledEvent(c *Contract) *ContractCancelledEvent {
	cancelledAt := time.Now()
	if c.CancelledAt != nil {
		cancelledAt = *c.CancelledAt
	}
	return &ContractCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCancelled", "Contract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		CancelReason:    c.CancelReason,
		CancelledAt:     cancelledAt,
	}
}
