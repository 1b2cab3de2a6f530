package installment

import (
	"context"
	"testing"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdjustmentService_ApplyAdjustment(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	t.Run("positive adjustment raises the balance and persists the reason", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		entryRepo := new(MockLedgerEntryRepository)
		contract := newTestContract(t, tenantID, func(s *installment.ContractSpec) {
			s.InitialWeight, _ = valueobject.NewWeightFromString("3.000")
		})

		contractRepo.On("FindByID", ctx, tenantID, contract.ID).Return(contract, nil)
		entryRepo.On("Append", ctx, contract, mock.AnythingOfType("*installment.LedgerEntry")).Return(nil)

		svc := NewAdjustmentService(contractRepo, entryRepo)
		result, err := svc.ApplyAdjustment(ctx, ApplyAdjustmentRequest{
			TenantID:    tenantID,
			ContractID:  contract.ID,
			WeightDelta: "0.500",
			Reason:      "scale correction",
			Actor:       "admin1",
		})
		require.NoError(t, err)

		assert.Equal(t, "MANUAL_ADJUSTMENT", result.Kind)
		assert.Equal(t, "0.500", result.WeightDelta)
		assert.Equal(t, "3.500", result.BalanceAfter)
		assert.Equal(t, "scale correction", result.Reason)
		assert.Equal(t, "admin1", result.Actor)
		assert.Equal(t, "3.500", contract.CurrentBalance.String())
	})

	t.Run("missing reason never reaches the repository", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		entryRepo := new(MockLedgerEntryRepository)
		contract := newTestContract(t, tenantID, nil)

		contractRepo.On("FindByID", ctx, tenantID, contract.ID).Return(contract, nil)

		svc := NewAdjustmentService(contractRepo, entryRepo)
		_, err := svc.ApplyAdjustment(ctx, ApplyAdjustmentRequest{
			TenantID:    tenantID,
			ContractID:  contract.ID,
			WeightDelta: "-0.500",
			Reason:      "  ",
			Actor:       "admin1",
		})
		assertDomainCode(t, err, installment.ErrCodeMissingAuditInfo)
		entryRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("adjustment driving a non-credit balance negative is rejected", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		entryRepo := new(MockLedgerEntryRepository)
		contract := newTestContract(t, tenantID, func(s *installment.ContractSpec) {
			s.InitialWeight, _ = valueobject.NewWeightFromString("1.000")
		})

		contractRepo.On("FindByID", ctx, tenantID, contract.ID).Return(contract, nil)

		svc := NewAdjustmentService(contractRepo, entryRepo)
		_, err := svc.ApplyAdjustment(ctx, ApplyAdjustmentRequest{
			TenantID:    tenantID,
			ContractID:  contract.ID,
			WeightDelta: "-1.500",
			Reason:      "goodwill",
			Actor:       "admin1",
		})
		assertDomainCode(t, err, installment.ErrCodeInvalidEntry)
	})

	t.Run("malformed weight delta is rejected", func(t *testing.T) {
		svc := NewAdjustmentService(new(MockContractRepository), new(MockLedgerEntryRepository))
		_, err := svc.ApplyAdjustment(ctx, ApplyAdjustmentRequest{
			TenantID:    tenantID,
			ContractID:  uuid.New(),
			WeightDelta: "a lot",
			Reason:      "r",
			Actor:       "a",
		})
		assertDomainCode(t, err, installment.ErrCodeInvalidEntry)
	})
}

func TestAdjustmentService_ReverseEntry(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	newAdjusted := func(t *testing.T) (*installment.Contract, *installment.LedgerEntry) {
		contract := newTestContract(t, tenantID, nil)
		delta, err := valueobject.NewWeightFromString("-2.000")
		require.NoError(t, err)
		entry, err := installment.NewAdjustmentEntry(tenantID, contract.ID, delta, "initial correction", "admin1")
		require.NoError(t, err)
		require.NoError(t, contract.ApplyEntry(entry))
		return contract, entry
	}

	t.Run("reversal restores the original balance", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		entryRepo := new(MockLedgerEntryRepository)
		contract, original := newAdjusted(t)
		require.Equal(t, "8.000", contract.CurrentBalance.String())

		contractRepo.On("FindByID", ctx, tenantID, contract.ID).Return(contract, nil)
		entryRepo.On("FindByID", ctx, tenantID, contract.ID, original.ID).Return(original, nil)
		entryRepo.On("Append", ctx, contract, mock.Anything).Return(nil)

		svc := NewAdjustmentService(contractRepo, entryRepo)
		result, err := svc.ReverseEntry(ctx, ReverseEntryRequest{
			TenantID:   tenantID,
			ContractID: contract.ID,
			EntryID:    original.ID,
			Reason:     "posted to wrong contract",
			Actor:      "supervisor-2",
		})
		require.NoError(t, err)

		assert.Equal(t, "REVERSAL", result.Kind)
		assert.Equal(t, "2.000", result.WeightDelta)
		require.NotNil(t, result.ReversesEntryID)
		assert.Equal(t, original.ID, *result.ReversesEntryID)
		assert.Equal(t, "10.000", contract.CurrentBalance.String())
	})

	t.Run("reversing a reversal is rejected", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		entryRepo := new(MockLedgerEntryRepository)
		contract, original := newAdjusted(t)

		reversal, err := installment.NewReversalEntry(tenantID, contract.ID, original, "undo", "supervisor-2")
		require.NoError(t, err)
		require.NoError(t, contract.ApplyEntry(reversal))

		contractRepo.On("FindByID", ctx, tenantID, contract.ID).Return(contract, nil)
		entryRepo.On("FindByID", ctx, tenantID, contract.ID, reversal.ID).Return(reversal, nil)

		svc := NewAdjustmentService(contractRepo, entryRepo)
		_, err = svc.ReverseEntry(ctx, ReverseEntryRequest{
			TenantID:   tenantID,
			ContractID: contract.ID,
			EntryID:    reversal.ID,
			Reason:     "undo the undo",
			Actor:      "supervisor-2",
		})
		assertDomainCode(t, err, installment.ErrCodeInvalidEntry)
	})

	t.Run("unknown entry yields not found", func(t *testing.T) {
		contractRepo := new(MockContractRepository)
		entryRepo := new(MockLedgerEntryRepository)
		contract := newTestContract(t, tenantID, nil)
		missing := uuid.New()

		contractRepo.On("FindByID", ctx, tenantID, contract.ID).Return(contract, nil)
		entryRepo.On("FindByID", ctx, tenantID, contract.ID, missing).Return(nil, shared.ErrNotFound)

		svc := NewAdjustmentService(contractRepo, entryRepo)
		_, err := svc.ReverseEntry(ctx, ReverseEntryRequest{
			TenantID:   tenantID,
			ContractID: contract.ID,
			EntryID:    missing,
			Reason:     "r",
			Actor:      "a",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
