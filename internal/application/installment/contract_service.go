package installment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractService manages the contract lifecycle and read models
type ContractService struct {
	contractRepo   installment.ContractRepository
	entryRepo      installment.LedgerEntryRepository
	eventPublisher shared.EventPublisher
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo installment.ContractRepository,
	entryRepo installment.LedgerEntryRepository,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		entryRepo:    entryRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ContractService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateContractRequest carries the input for a new contract
type CreateContractRequest struct {
	TenantID                uuid.UUID
	ContractNumber          string
	CustomerID              uuid.UUID
	InitialWeight           string
	OriginalPricePerGram    decimal.Decimal
	Frequency               string
	InstallmentCount        int
	SignedAt                time.Time
	CeilingPrice            *decimal.Decimal
	FloorPrice              *decimal.Decimal
	EarlyPayoffDiscountRate *decimal.Decimal
	AllowCredit             bool
	GraceDays               int
	PenaltyRate             decimal.Decimal
}

// CreateContract validates and persists a new installment contract
func (s *ContractService) CreateContract(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	weight, err := valueobject.NewWeightFromString(req.InitialWeight)
	if err != nil {
		return nil, installment.NewInvalidContractSpecError("Invalid initial weight: " + err.Error())
	}

	existing, err := s.contractRepo.FindByNumber(ctx, req.TenantID, req.ContractNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check contract number: %w", err)
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	contract, err := installment.NewContract(req.TenantID, installment.ContractSpec{
		ContractNumber:          req.ContractNumber,
		CustomerID:              req.CustomerID,
		InitialWeight:           weight,
		OriginalPricePerGram:    req.OriginalPricePerGram,
		Frequency:               installment.PaymentFrequency(req.Frequency),
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
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	s.publishEvents(ctx, contract)

	resp := ToContractResponse(contract)
	return &resp, nil
}

// GetContract returns a contract by ID
func (s *ContractService) GetContract(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	resp := ToContractResponse(contract)
	return &resp, nil
}

// ListContracts returns a page of contracts, optionally filtered by status
func (s *ContractService) ListContracts(ctx context.Context, tenantID uuid.UUID, status string, filter shared.Filter) (*shared.Paginated[ContractResponse], error) {
	var statusFilter *installment.ContractStatus
	if status != "" {
		st := installment.ContractStatus(status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown contract status: "+status)
		}
		statusFilter = &st
	}

	page, err := s.contractRepo.List(ctx, tenantID, statusFilter, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ContractResponse, 0, len(page.Items))
	for _, c := range page.Items {
		items = append(items, ToContractResponse(c))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// CancelContract administratively terminates a contract. The reason is
// mandatory and recorded on the contract.
func (s *ContractService) CancelContract(ctx context.Context, tenantID, contractID uuid.UUID, reason string) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	if err := contract.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, contract)

	resp := ToContractResponse(contract)
	return &resp, nil
}

// GetStatement returns the contract together with its full entry history.
// The folded balance is recomputed from the history so a discrepancy with
// the stored projection would be visible to the caller.
func (s *ContractService) GetStatement(ctx context.Context, tenantID, contractID uuid.UUID) (*StatementResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.AllByContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger history: %w", err)
	}

	entryResponses := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		entryResponses = append(entryResponses, ToLedgerEntryResponse(e))
	}

	folded := installment.FoldBalance(contract.InitialWeight, entries)
	return &StatementResponse{
		Contract:      ToContractResponse(contract),
		Entries:       entryResponses,
		FoldedBalance: folded.String(),
	}, nil
}

// GetHistory returns a page of ledger entries ordered by sequence
func (s *ContractService) GetHistory(ctx context.Context, tenantID, contractID uuid.UUID, filter shared.Filter) (*PaginatedEntriesResponse, error) {
	if _, err := s.contractRepo.FindByID(ctx, tenantID, contractID); err != nil {
		return nil, err
	}

	page, err := s.entryRepo.ListByContract(ctx, tenantID, contractID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]LedgerEntryResponse, 0, len(page.Items))
	for _, e := range page.Items {
		items = append(items, ToLedgerEntryResponse(e))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

func (s *ContractService) publishEvents(ctx context.Context, contract *installment.Contract) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range contract.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	contract.ClearDomainEvents()
}
