package models

import (
	"time"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the installment Contract aggregate.
type ContractModel struct {
	AggregateModel
	TenantID                uuid.UUID                    `gorm:"type:uuid;not null;index;uniqueIndex:idx_contracts_tenant_number,priority:1"`
	ContractNumber          string                       `gorm:"type:varchar(64);not null;uniqueIndex:idx_contracts_tenant_number,priority:2"`
	CustomerID              uuid.UUID                    `gorm:"type:uuid;not null;index"`
	InitialWeight           decimal.Decimal              `gorm:"type:decimal(12,3);not null"`
	OriginalPricePerGram    decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	Frequency               installment.PaymentFrequency `gorm:"type:varchar(16);not null"`
	InstallmentCount        int                          `gorm:"not null"`
	SignedAt                time.Time                    `gorm:"not null"`
	CeilingPrice            *decimal.Decimal             `gorm:"type:decimal(18,4)"`
	FloorPrice              *decimal.Decimal             `gorm:"type:decimal(18,4)"`
	EarlyPayoffDiscountRate *decimal.Decimal             `gorm:"type:decimal(8,6)"`
	AllowCredit             bool                         `gorm:"not null;default:false"`
	GraceDays               int                          `gorm:"not null;default:0"`
	PenaltyRate             decimal.Decimal              `gorm:"type:decimal(8,6);not null;default:0"`
	Status                  installment.ContractStatus   `gorm:"type:varchar(16);not null;index"`
	CurrentBalance          decimal.Decimal              `gorm:"type:decimal(12,3);not null"`
	LastSequence            int64                        `gorm:"not null;default:0"`
	CompletedAt             *time.Time
	DefaultedAt             *time.Time
	CancelledAt             *time.Time
	CancelReason            string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "installment_contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
func (m *ContractModel) ToDomain() *installment.Contract {
	return &installment.Contract{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID: m.TenantID,
		},
		ContractNumber:          m.ContractNumber,
		CustomerID:              m.CustomerID,
		InitialWeight:           valueobject.NewWeight(m.InitialWeight),
		OriginalPricePerGram:    m.OriginalPricePerGram,
		Frequency:               m.Frequency,
		InstallmentCount:        m.InstallmentCount,
		SignedAt:                m.SignedAt,
		CeilingPrice:            m.CeilingPrice,
		FloorPrice:              m.FloorPrice,
		EarlyPayoffDiscountRate: m.EarlyPayoffDiscountRate,
		AllowCredit:             m.AllowCredit,
		GraceDays:               m.GraceDays,
		PenaltyRate:             m.PenaltyRate,
		Status:                  m.Status,
		CurrentBalance:          valueobject.NewWeight(m.CurrentBalance),
		LastSequence:            m.LastSequence,
		CompletedAt:             m.CompletedAt,
		DefaultedAt:             m.DefaultedAt,
		CancelledAt:             m.CancelledAt,
		CancelReason:            m.CancelReason,
	}
}

// ContractModelFromDomain converts a domain Contract to its persistence model.
func ContractModelFromDomain(c *installment.Contract) *ContractModel {
	m := &ContractModel{
		TenantID:                c.TenantID,
		ContractNumber:          c.ContractNumber,
		CustomerID:              c.CustomerID,
		InitialWeight:           c.InitialWeight.Grams(),
		OriginalPricePerGram:    c.OriginalPricePerGram,
		Frequency:               c.Frequency,
		InstallmentCount:        c.InstallmentCount,
		SignedAt:                c.SignedAt,
		CeilingPrice:            c.CeilingPrice,
		FloorPrice:              c.FloorPrice,
		EarlyPayoffDiscountRate: c.EarlyPayoffDiscountRate,
		AllowCredit:             c.AllowCredit,
		GraceDays:               c.GraceDays,
		PenaltyRate:             c.PenaltyRate,
		Status:                  c.Status,
		CurrentBalance:          c.CurrentBalance.Grams(),
		LastSequence:            c.LastSequence,
		CompletedAt:             c.CompletedAt,
		DefaultedAt:             c.DefaultedAt,
		CancelledAt:             c.CancelledAt,
		CancelReason:            c.CancelReason,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// LedgerEntryModel is the persistence model for immutable ledger entries.
// Rows in this table are only ever inserted, never updated or deleted.
type LedgerEntryModel struct {
	BaseModel
	TenantID    uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_tenant_idem,priority:1"`
	ContractID  uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_contract_seq,priority:1"`
	Sequence    int64                 `gorm:"not null;uniqueIndex:idx_ledger_contract_seq,priority:2"`
	Kind        installment.EntryKind `gorm:"type:varchar(24);not null"`
	WeightDelta decimal.Decimal       `gorm:"type:decimal(12,3);not null"`
	CashAmount  *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	// PricePerGram is the effective price after protection clamping
	PricePerGram    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	QuotedAt        *time.Time
	QuoteSource     string          `gorm:"type:varchar(100)"`
	Actor           string          `gorm:"type:varchar(100);not null"`
	Reason          string          `gorm:"type:text"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	IdempotencyKey  *string         `gorm:"type:varchar(160);uniqueIndex:idx_ledger_tenant_idem,priority:2"`
	ReversesEntryID *uuid.UUID      `gorm:"type:uuid"`
	EntryDate       time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry.
func (m *LedgerEntryModel) ToDomain() *installment.LedgerEntry {
	return &installment.LedgerEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:        m.TenantID,
		ContractID:      m.ContractID,
		Sequence:        m.Sequence,
		Kind:            m.Kind,
		WeightDelta:     valueobject.NewWeight(m.WeightDelta),
		CashAmount:      m.CashAmount,
		PricePerGram:    m.PricePerGram,
		QuotedAt:        m.QuotedAt,
		QuoteSource:     m.QuoteSource,
		Actor:           m.Actor,
		Reason:          m.Reason,
		BalanceAfter:    valueobject.NewWeight(m.BalanceAfter),
		IdempotencyKey:  m.IdempotencyKey,
		ReversesEntryID: m.ReversesEntryID,
		EntryDate:       m.EntryDate,
	}
}

// LedgerEntryModelFromDomain converts a domain LedgerEntry to its persistence model.
func LedgerEntryModelFromDomain(e *installment.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{
		TenantID:        e.TenantID,
		ContractID:      e.ContractID,
		Sequence:        e.Sequence,
		Kind:            e.Kind,
		WeightDelta:     e.WeightDelta.Grams(),
		CashAmount:      e.CashAmount,
		PricePerGram:    e.PricePerGram,
		QuotedAt:        e.QuotedAt,
		QuoteSource:     e.QuoteSource,
		Actor:           e.Actor,
		Reason:          e.Reason,
		BalanceAfter:    e.BalanceAfter.Grams(),
		IdempotencyKey:  e.IdempotencyKey,
		ReversesEntryID: e.ReversesEntryID,
		EntryDate:       e.EntryDate,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
