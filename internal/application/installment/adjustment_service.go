package installment

import (
	"context"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AdjustmentService appends manual corrections and reversals. Every mutation
// through this service carries a reason and an actor; anonymous changes to a
// financial ledger are not accepted.
type AdjustmentService struct {
	contractRepo   installment.ContractRepository
	entryRepo      installment.LedgerEntryRepository
	eventPublisher shared.EventPublisher
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	contractRepo installment.ContractRepository,
	entryRepo installment.LedgerEntryRepository,
) *AdjustmentService {
	return &AdjustmentService{
		contractRepo: contractRepo,
		entryRepo:    entryRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AdjustmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyAdjustmentRequest carries the input for a manual adjustment
type ApplyAdjustmentRequest struct {
	TenantID   uuid.UUID
	ContractID uuid.UUID
	// WeightDelta is signed: negative reduces the balance, positive raises it
	WeightDelta string
	Reason      string
	Actor       string
}

// ApplyAdjustment appends a manual weight correction to the ledger
func (s *AdjustmentService) ApplyAdjustment(ctx context.Context, req ApplyAdjustmentRequest) (*LedgerEntryResponse, error) {
	delta, err := valueobject.NewWeightFromString(req.WeightDelta)
	if err != nil {
		return nil, installment.NewInvalidEntryError("Invalid weight delta: " + err.Error())
	}

	contract, err := s.contractRepo.FindByID(ctx, req.TenantID, req.ContractID)
	if err != nil {
		return nil, err
	}

	entry, err := installment.NewAdjustmentEntry(req.TenantID, req.ContractID, delta, req.Reason, req.Actor)
	if err != nil {
		return nil, err
	}

	if err := contract.ApplyEntry(entry); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Append(ctx, contract, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, contract, installment.NewAdjustmentAppliedEvent(contract, entry))

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// ReverseEntryRequest carries the input for reversing a prior entry
type ReverseEntryRequest struct {
	TenantID   uuid.UUID
	ContractID uuid.UUID
	EntryID    uuid.UUID
	Reason     string
	Actor      string
}

// ReverseEntry appends a compensating entry that exactly undoes a prior
// entry. The original stays in the ledger untouched; corrections never edit
// or delete.
func (s *AdjustmentService) ReverseEntry(ctx context.Context, req ReverseEntryRequest) (*LedgerEntryResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, req.TenantID, req.ContractID)
	if err != nil {
		return nil, err
	}

	original, err := s.entryRepo.FindByID(ctx, req.TenantID, req.ContractID, req.EntryID)
	if err != nil {
		return nil, err
	}

	entry, err := installment.NewReversalEntry(req.TenantID, req.ContractID, original, req.Reason, req.Actor)
	if err != nil {
		return nil, err
	}

	if err := contract.ApplyEntry(entry); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Append(ctx, contract, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, contract, installment.NewPaymentReversedEvent(contract, entry))

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

func (s *AdjustmentService) publishEvents(ctx context.Context, contract *installment.Contract, extra shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, extra)
	for _, event := range contract.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	contract.ClearDomainEvents()
}
