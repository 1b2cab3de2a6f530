package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/goldshop/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractSortFields contains allowed sort fields for installment contracts
var ContractSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"contract_number": true,
	"signed_at":       true,
	"status":          true,
	"current_balance": true,
}

// GormContractRepository implements installment.ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// Save inserts a new contract
func (r *GormContractRepository) Save(ctx context.Context, contract *installment.Contract) error {
	model := models.ContractModelFromDomain(contract)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

// Update persists contract state changes guarded by the aggregate version.
// The version on the aggregate has already been incremented by the domain
// operation, so the guard matches against the previous stored version.
func (r *GormContractRepository) Update(ctx context.Context, contract *installment.Contract) error {
	model := models.ContractModelFromDomain(contract)
	result := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", contract.ID, contract.TenantID, contract.Version-1).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"current_balance": model.CurrentBalance,
			"last_sequence":   model.LastSequence,
			"completed_at":    model.CompletedAt,
			"defaulted_at":    model.DefaultedAt,
			"cancelled_at":    model.CancelledAt,
			"cancel_reason":   model.CancelReason,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update contract: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a contract by ID within a tenant
func (r *GormContractRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*installment.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a contract by its contract number within a tenant
func (r *GormContractRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, contractNumber string) (*installment.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_number = ?", tenantID, contractNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of contracts for a tenant, optionally filtered by status
func (r *GormContractRepository) List(ctx context.Context, tenantID uuid.UUID, status *installment.ContractStatus, filter shared.Filter) (shared.Paginated[*installment.Contract], error) {
	query := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("tenant_id = ?", tenantID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*installment.Contract]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ContractSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var contractModels []models.ContractModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&contractModels).Error; err != nil {
		return shared.Paginated[*installment.Contract]{}, err
	}

	contracts := make([]*installment.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return shared.NewPaginated(contracts, total, page, pageSize), nil
}

// FindActiveForScan returns all active contracts across tenants for the
// default scan job. Terminal and already-defaulted contracts are excluded.
func (r *GormContractRepository) FindActiveForScan(ctx context.Context) ([]*installment.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", installment.ContractStatusActive).
		Order("signed_at ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]*installment.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return contracts, nil
}

// Ensure GormContractRepository implements ContractRepository
var _ installment.ContractRepository = (*GormContractRepository)(nil)
