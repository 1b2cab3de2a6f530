package installment

import (
	"strings"
	"time"

	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle status of an installment contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusDefaulted ContractStatus = "DEFAULTED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusDefaulted, ContractStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no further entries are accepted in this status
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// PaymentFrequency represents how often installments fall due
type PaymentFrequency string

const (
	FrequencyWeekly   PaymentFrequency = "WEEKLY"
	FrequencyBiweekly PaymentFrequency = "BIWEEKLY"
	FrequencyMonthly  PaymentFrequency = "MONTHLY"
)

// String returns the string representation of PaymentFrequency
func (f PaymentFrequency) String() string {
	return string(f)
}

// IsValid returns true if the frequency is valid
func (f PaymentFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// NthDueDate returns the due date of the nth installment (1-based) counted
// from the signing date
func (f PaymentFrequency) NthDueDate(signedAt time.Time, n int) time.Time {
	switch f {
	case FrequencyWeekly:
		return signedAt.AddDate(0, 0, 7*n)
	case FrequencyBiweekly:
		return signedAt.AddDate(0, 0, 14*n)
	default:
		return signedAt.AddDate(0, n, 0)
	}
}

// ContractSpec carries the caller-supplied parameters for a new contract
type ContractSpec struct {
	ContractNumber string
	CustomerID     uuid.UUID
	// InitialWeight is the fine-gold weight sold, in grams
	InitialWeight valueobject.Weight
	// OriginalPricePerGram is the market price at signing, kept for the record
	OriginalPricePerGram decimal.Decimal
	Frequency            PaymentFrequency
	InstallmentCount     int
	SignedAt             time.Time
	// CeilingPrice caps the effective price, protecting the customer
	CeilingPrice *decimal.Decimal
	// FloorPrice bounds the effective price from below, protecting the shop
	FloorPrice *decimal.Decimal
	// EarlyPayoffDiscountRate is a fraction in (0,1) applied to the price
	// divisor when the customer clears the balance early
	EarlyPayoffDiscountRate *decimal.Decimal
	// AllowCredit permits the balance to go negative (customer credit)
	AllowCredit bool
	GraceDays   int
	// PenaltyRate is the fraction of one scheduled installment's weight
	// suggested as penalty per missed installment
	PenaltyRate decimal.Decimal
}

// Contract is the gold-weight installment contract aggregate root. The
// outstanding balance is denominated in grams of fine gold; cash payments
// reduce it at the effective price prevailing when each payment is made.
//
// CurrentBalance and LastSequence are projections maintained transactionally
// with every ledger append; the ledger entries remain the source of truth.
type Contract struct {
	shared.TenantAggregateRoot
	ContractNumber          string
	CustomerID              uuid.UUID
	InitialWeight           valueobject.Weight
	OriginalPricePerGram    decimal.Decimal
	Frequency               PaymentFrequency
	InstallmentCount        int
	SignedAt                time.Time
	CeilingPrice            *decimal.Decimal
	FloorPrice              *decimal.Decimal
	EarlyPayoffDiscountRate *decimal.Decimal
	AllowCredit             bool
	GraceDays               int
	PenaltyRate             decimal.Decimal
	Status                  ContractStatus
	CurrentBalance          valueobject.Weight
	LastSequence            int64
	CompletedAt             *time.Time
	DefaultedAt             *time.Time
	CancelledAt             *time.Time
	CancelReason            string
}

// NewContract validates a spec and creates an active contract
func NewContract(tenantID uuid.UUID, spec ContractSpec) (*Contract, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(spec.ContractNumber) == "" {
		return nil, NewInvalidContractSpecError("Contract number is required")
	}
	if spec.CustomerID == uuid.Nil {
		return nil, NewInvalidContractSpecError("Customer reference is required")
	}
	if !spec.InitialWeight.IsPositive() {
		return nil, NewInvalidContractSpecError("Initial weight must be positive")
	}
	if !spec.OriginalPricePerGram.IsPositive() {
		return nil, NewInvalidContractSpecError("Original price per gram must be positive")
	}
	if !spec.Frequency.IsValid() {
		return nil, NewInvalidContractSpecError("Invalid payment frequency")
	}
	if spec.InstallmentCount <= 0 {
		return nil, NewInvalidContractSpecError("Installment count must be positive")
	}
	if spec.SignedAt.IsZero() {
		return nil, NewInvalidContractSpecError("Signing date is required")
	}
	if spec.CeilingPrice != nil && !spec.CeilingPrice.IsPositive() {
		return nil, NewInvalidContractSpecError("Ceiling price must be positive")
	}
	if spec.FloorPrice != nil && !spec.FloorPrice.IsPositive() {
		return nil, NewInvalidContractSpecError("Floor price must be positive")
	}
	if spec.CeilingPrice != nil && spec.FloorPrice != nil && spec.CeilingPrice.LessThan(*spec.FloorPrice) {
		return nil, NewInvalidContractSpecError("Ceiling price must be greater than or equal to floor price")
	}
	if spec.EarlyPayoffDiscountRate != nil {
		rate := *spec.EarlyPayoffDiscountRate
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, NewInvalidContractSpecError("Early payoff discount rate must be in [0, 1)")
		}
	}
	if spec.GraceDays < 0 {
		return nil, NewInvalidContractSpecError("Grace days cannot be negative")
	}
	if spec.PenaltyRate.IsNegative() {
		return nil, NewInvalidContractSpecError("Penalty rate cannot be negative")
	}

	contract := &Contract{
		TenantAggregateRoot:     shared.NewTenantAggregateRoot(tenantID),
		ContractNumber:          strings.TrimSpace(spec.ContractNumber),
		CustomerID:              spec.CustomerID,
		InitialWeight:           spec.InitialWeight,
		OriginalPricePerGram:    spec.OriginalPricePerGram,
		Frequency:               spec.Frequency,
		InstallmentCount:        spec.InstallmentCount,
		SignedAt:                spec.SignedAt,
		CeilingPrice:            spec.CeilingPrice,
		FloorPrice:              spec.FloorPrice,
		EarlyPayoffDiscountRate: spec.EarlyPayoffDiscountRate,
		AllowCredit:             spec.AllowCredit,
		GraceDays:               spec.GraceDays,
		PenaltyRate:             spec.PenaltyRate,
		Status:                  ContractStatusActive,
		CurrentBalance:          spec.InitialWeight,
		LastSequence:            0,
	}

	contract.AddDomainEvent(NewContractCreatedEvent(contract))
	return contract, nil
}

// CanAcceptEntries returns an error if the contract no longer accepts
// ledger appends
func (c *Contract) CanAcceptEntries() error {
	if c.Status.IsTerminal() {
		return NewStaleContractError("Contract " + c.ContractNumber + " is " + strings.ToLower(c.Status.String()) + " and accepts no further entries")
	}
	return nil
}

// ApplyEntry validates the entry against the balance-sign policy, assigns
// the next sequence number, stamps the resulting balance snapshot, and
// advances the projection. The entry and the contract must be persisted in
// the same transaction.
func (c *Contract) ApplyEntry(entry *LedgerEntry) error {
	if err := c.CanAcceptEntries(); err != nil {
		return err
	}
	if entry.ContractID != c.ID {
		return NewInvalidEntryError("Entry does not belong to this contract")
	}

	newBalance := c.CurrentBalance.Add(entry.WeightDelta)
	if newBalance.IsNegative() && !c.AllowCredit {
		return NewInvalidEntryError("Entry would drive the balance below zero on a contract that disallows credit")
	}

	c.LastSequence++
	entry.Sequence = c.LastSequence
	entry.BalanceAfter = newBalance
	c.CurrentBalance = newBalance
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	if newBalance.IsZero() && c.Status == ContractStatusActive {
		now := time.Now()
		c.Status = ContractStatusCompleted
		c.CompletedAt = &now
		c.AddDomainEvent(NewContractCompletedEvent(c))
	}

	return nil
}

// MarkDefaulted transitions an active contract to the defaulted state.
// Defaulted contracts still accept entries (payments against a defaulted
// contract are a collections concern, not a ledger one).
func (c *Contract) MarkDefaulted(at time.Time) error {
	if c.Status != ContractStatusActive {
		return shared.ErrInvalidState
	}
	c.Status = ContractStatusDefaulted
	c.DefaultedAt = &at
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractDefaultedEvent(c))
	return nil
}

// Cancel administratively terminates the contract. Terminal: no further
// entries are accepted afterwards.
func (c *Contract) Cancel(reason string) error {
	if c.Status.IsTerminal() {
		return NewStaleContractError("Contract is already " + strings.ToLower(c.Status.String()))
	}
	if strings.TrimSpace(reason) == "" {
		return NewMissingAuditInfoError("Cancellation reason is required")
	}
	now := time.Now()
	c.Status = ContractStatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	c.UpdatedAt = now
	c.IncrementVersion()
	c.AddDomainEvent(NewContractCancelledEvent(c))
	return nil
}

// ScheduledInstallmentWeight returns the weight expected per installment
func (c *Contract) ScheduledInstallmentWeight() valueobject.Weight {
	per := c.InitialWeight.Grams().Div(decimal.NewFromInt(int64(c.InstallmentCount)))
	return valueobject.NewWeight(per).Truncate()
}

// DueDates returns all scheduled due dates in order
func (c *Contract) DueDates() []time.Time {
	dates := make([]time.Time, 0, c.InstallmentCount)
	for i := 1; i <= c.InstallmentCount; i++ {
		dates = append(dates, c.Frequency.NthDueDate(c.SignedAt, i))
	}
	return dates
}
