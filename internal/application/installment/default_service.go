package installment

import (
	"context"
	"time"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultService assesses contracts against their installment schedule,
// marks exhausted-grace contracts defaulted, and applies penalties that a
// collections operator has signed off on.
type DefaultService struct {
	contractRepo   installment.ContractRepository
	entryRepo      installment.LedgerEntryRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(
	contractRepo installment.ContractRepository,
	entryRepo installment.LedgerEntryRepository,
	logger *zap.Logger,
) *DefaultService {
	return &DefaultService{
		contractRepo: contractRepo,
		entryRepo:    entryRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *DefaultService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the clock used for assessments
func (s *DefaultService) SetClock(now func() time.Time) {
	s.now = now
}

// AssessContract evaluates a contract's delinquency standing without
// changing anything
func (s *DefaultService) AssessContract(ctx context.Context, tenantID, contractID uuid.UUID) (*AssessmentResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.AllByContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	assessment := installment.EvaluateDefault(contract, entries, s.now())
	resp := ToAssessmentResponse(contractID, assessment)
	return &resp, nil
}

// ApplyPenaltyRequest carries the input for a penalty accrual
type ApplyPenaltyRequest struct {
	TenantID      uuid.UUID
	ContractID    uuid.UUID
	PenaltyWeight string
	Reason        string
	Actor         string
}

// ApplyPenalty appends a penalty entry. The weight typically comes from a
// prior assessment's suggestion, but the operator decides; nothing accrues
// automatically.
func (s *DefaultService) ApplyPenalty(ctx context.Context, req ApplyPenaltyRequest) (*LedgerEntryResponse, error) {
	weight, err := valueobject.NewWeightFromString(req.PenaltyWeight)
	if err != nil {
		return nil, installment.NewInvalidEntryError("Invalid penalty weight: " + err.Error())
	}

	contract, err := s.contractRepo.FindByID(ctx, req.TenantID, req.ContractID)
	if err != nil {
		return nil, err
	}

	entry, err := installment.NewPenaltyEntry(req.TenantID, req.ContractID, weight, req.Reason, req.Actor)
	if err != nil {
		return nil, err
	}

	if err := contract.ApplyEntry(entry); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Append(ctx, contract, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, contract, installment.NewPenaltyAccruedEvent(contract, entry))

	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// ScanResult summarizes one run of the default scan
type ScanResult struct {
	Scanned   int `json:"scanned"`
	Defaulted int `json:"defaulted"`
	InGrace   int `json:"in_grace"`
	Conflicts int `json:"conflicts"`
}

// ScanForDefaults walks every active contract and marks those whose grace
// window has been exhausted. A version conflict on an individual contract is
// counted and skipped; the next run will see its new state.
func (s *DefaultService) ScanForDefaults(ctx context.Context) (*ScanResult, error) {
	contracts, err := s.contractRepo.FindActiveForScan(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Scanned: len(contracts)}
	now := s.now()

	for _, contract := range contracts {
		entries, err := s.entryRepo.AllByContract(ctx, contract.TenantID, contract.ID)
		if err != nil {
			s.logger.Warn("default scan: failed to load history",
				zap.String("contract_number", contract.ContractNumber),
				zap.Error(err))
			continue
		}

		assessment := installment.EvaluateDefault(contract, entries, now)
		switch assessment.State {
		case installment.DefaultStateGrace:
			result.InGrace++
		case installment.DefaultStateDefaulted:
			if err := contract.MarkDefaulted(now); err != nil {
				continue
			}
			if err := s.contractRepo.Update(ctx, contract); err != nil {
				result.Conflicts++
				s.logger.Warn("default scan: contract moved during scan",
					zap.String("contract_number", contract.ContractNumber),
					zap.Error(err))
				continue
			}
			result.Defaulted++
			s.publishContractEvents(ctx, contract)
			s.logger.Info("contract marked defaulted",
				zap.String("contract_number", contract.ContractNumber),
				zap.Int("missed_installments", assessment.MissedInstallments))
		}
	}

	return result, nil
}

func (s *DefaultService) publishEvents(ctx context.Context, contract *installment.Contract, extra shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, extra)
	s.publishContractEvents(ctx, contract)
}

func (s *DefaultService) publishContractEvents(ctx context.Context, contract *installment.Contract) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range contract.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	contract.ClearDomainEvents()
}
