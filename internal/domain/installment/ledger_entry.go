package installment

import (
	"strings"
	"time"

	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind represents the kind of ledger entry
type EntryKind string

const (
	// EntryKindPayment represents a cash payment converted to a weight reduction
	EntryKindPayment EntryKind = "PAYMENT"
	// EntryKindManualAdjustment represents a manual weight correction with a mandatory reason
	EntryKindManualAdjustment EntryKind = "MANUAL_ADJUSTMENT"
	// EntryKindPenalty represents penalty weight accrued on a delinquent contract
	EntryKindPenalty EntryKind = "PENALTY"
	// EntryKindReversal represents a compensating entry that undoes a prior entry
	EntryKindReversal EntryKind = "REVERSAL"
)

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	return string(k)
}

// IsValid returns true if the entry kind is valid
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindPayment, EntryKindManualAdjustment, EntryKindPenalty, EntryKindReversal:
		return true
	}
	return false
}

// RequiresAuditInfo returns true if the kind must carry a non-empty reason and actor
func (k EntryKind) RequiresAuditInfo() bool {
	return k == EntryKindManualAdjustment || k == EntryKindPenalty
}

// LedgerEntry is an immutable record of a weight change on a contract.
// Entries are append-only: corrections are made by appending a compensating
// reversal entry referencing the original, never by editing or deleting.
type LedgerEntry struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	ContractID uuid.UUID
	// Sequence is the per-contract monotonically increasing entry number.
	// It is assigned by the contract at append time.
	Sequence    int64
	Kind        EntryKind
	WeightDelta valueobject.Weight // signed; negative reduces the outstanding balance
	// CashAmount is present for payment entries; the cash the customer handed over
	CashAmount *decimal.Decimal
	// PricePerGram is the effective price applied to a payment, after
	// protection clamping but before any early-payoff discount
	PricePerGram *decimal.Decimal
	QuotedAt     *time.Time
	QuoteSource  string
	Actor        string
	Reason       string
	// BalanceAfter is the outstanding weight after this entry was applied,
	// stored for fast reads and audit; it is always re-derivable from the fold
	BalanceAfter valueobject.Weight
	// IdempotencyKey deduplicates retried payment requests
	IdempotencyKey *string
	// ReversesEntryID references the original entry for reversal entries
	ReversesEntryID *uuid.UUID
	EntryDate       time.Time
}

// NewLedgerEntry creates a ledger entry. Sequence and BalanceAfter are filled
// in by Contract.ApplyEntry before the entry is persisted.
func NewLedgerEntry(
	tenantID, contractID uuid.UUID,
	kind EntryKind,
	weightDelta valueobject.Weight,
	actor string,
) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if contractID == uuid.Nil {
		return nil, NewInvalidEntryError("Contract ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, NewInvalidEntryError("Invalid ledger entry kind")
	}
	if weightDelta.IsZero() {
		return nil, NewInvalidEntryError("Weight delta cannot be zero")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, NewMissingAuditInfoError("Actor is required on every ledger entry")
	}

	return &LedgerEntry{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		ContractID:  contractID,
		Kind:        kind,
		WeightDelta: weightDelta,
		Actor:       actor,
		EntryDate:   time.Now(),
	}, nil
}

// NewPaymentEntry creates a payment entry carrying the cash amount, the
// effective price it was converted at, and the quote it derived from
func NewPaymentEntry(
	tenantID, contractID uuid.UUID,
	weightDelta valueobject.Weight,
	cashAmount decimal.Decimal,
	effectivePrice decimal.Decimal,
	quote PriceQuote,
	actor string,
) (*LedgerEntry, error) {
	if !weightDelta.IsNegative() {
		return nil, NewInvalidEntryError("Payment entries must reduce the outstanding balance")
	}
	if !cashAmount.IsPositive() {
		return nil, NewInvalidEntryError("Cash amount must be positive")
	}
	entry, err := NewLedgerEntry(tenantID, contractID, EntryKindPayment, weightDelta, actor)
	if err != nil {
		return nil, err
	}
	quotedAt := quote.QuotedAt
	entry.CashAmount = &cashAmount
	entry.PricePerGram = &effectivePrice
	entry.QuotedAt = &quotedAt
	entry.QuoteSource = quote.Source
	return entry, nil
}

// NewAdjustmentEntry creates a manual adjustment entry. Reason and actor are
// mandatory so every manual correction stays traceable.
func NewAdjustmentEntry(
	tenantID, contractID uuid.UUID,
	weightDelta valueobject.Weight,
	reason, actor string,
) (*LedgerEntry, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, NewMissingAuditInfoError("Reason is required for manual adjustments")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, NewMissingAuditInfoError("Actor is required for manual adjustments")
	}
	entry, err := NewLedgerEntry(tenantID, contractID, EntryKindManualAdjustment, weightDelta, actor)
	if err != nil {
		return nil, err
	}
	entry.Reason = reason
	return entry, nil
}

// NewPenaltyEntry creates a penalty accrual entry. Penalties increase the
// outstanding balance and carry the same audit requirements as adjustments.
func NewPenaltyEntry(
	tenantID, contractID uuid.UUID,
	penaltyWeight valueobject.Weight,
	reason, actor string,
) (*LedgerEntry, error) {
	if !penaltyWeight.IsPositive() {
		return nil, NewInvalidEntryError("Penalty weight must be positive")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, NewMissingAuditInfoError("Reason is required for penalty entries")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, NewMissingAuditInfoError("Actor is required for penalty entries")
	}
	entry, err := NewLedgerEntry(tenantID, contractID, EntryKindPenalty, penaltyWeight, actor)
	if err != nil {
		return nil, err
	}
	entry.Reason = reason
	return entry, nil
}

// NewReversalEntry creates a compensating entry that undoes a prior entry.
// The delta is the exact negation of the original's delta.
func NewReversalEntry(
	tenantID, contractID uuid.UUID,
	original *LedgerEntry,
	reason, actor string,
) (*LedgerEntry, error) {
	if original == nil {
		return nil, NewInvalidEntryError("Original entry is required for a reversal")
	}
	if original.Kind == EntryKindReversal {
		return nil, NewInvalidEntryError("A reversal entry cannot itself be reversed")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, NewMissingAuditInfoError("Reason is required for reversal entries")
	}
	entry, err := NewLedgerEntry(tenantID, contractID, EntryKindReversal, original.WeightDelta.Neg(), actor)
	if err != nil {
		return nil, err
	}
	originalID := original.ID
	entry.Reason = reason
	entry.ReversesEntryID = &originalID
	return entry, nil
}

// WithIdempotencyKey attaches an idempotency key to the entry
func (e *LedgerEntry) WithIdempotencyKey(key string) *LedgerEntry {
	if key != "" {
		e.IdempotencyKey = &key
	}
	return e
}

// WithEntryDate overrides the entry date (used by tests with injected clocks)
func (e *LedgerEntry) WithEntryDate(t time.Time) *LedgerEntry {
	e.EntryDate = t
	return e
}

// IsReduction returns true if this entry reduced the outstanding balance
func (e *LedgerEntry) IsReduction() bool {
	return e.WeightDelta.IsNegative()
}

// FoldBalance replays entries over an initial weight and returns the
// resulting outstanding balance. currentBalance(c) must always equal
// FoldBalance(c.InitialWeight, history(c)); the stored snapshot is only a
// projection of this fold.
func FoldBalance(initial valueobject.Weight, entries []*LedgerEntry) valueobject.Weight {
	balance := initial
	for _, e := range entries {
		balance = balance.Add(e.WeightDelta)
	}
	return balance
}
