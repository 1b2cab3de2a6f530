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

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"sequence":   true,
	"entry_date": true,
	"kind":       true,
}

// GormLedgerEntryRepository implements installment.LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append inserts the entry and advances the contract projection in a single
// transaction. The contract row update runs first and is guarded by the
// aggregate version: a stale snapshot fails the guard and rolls back before
// the entry row is written, so a lost race surfaces as a concurrency
// conflict, not as a sequence collision. A duplicate idempotency key on a
// fresh snapshot fails the entry insert and rolls back the projection
// update. Either way, no partial write survives.
func (r *GormLedgerEntryRepository) Append(ctx context.Context, contract *installment.Contract, entry *installment.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contractModel := models.ContractModelFromDomain(contract)
		result := tx.
			Model(&models.ContractModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", contract.ID, contract.TenantID, contract.Version-1).
			Updates(map[string]interface{}{
				"status":          contractModel.Status,
				"current_balance": contractModel.CurrentBalance,
				"last_sequence":   contractModel.LastSequence,
				"completed_at":    contractModel.CompletedAt,
				"defaulted_at":    contractModel.DefaultedAt,
				"version":         contractModel.Version,
				"updated_at":      contractModel.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to advance contract projection: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		entryModel := models.LedgerEntryModelFromDomain(entry)
		if err := tx.Create(entryModel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
		return nil
	})
}

// FindByID finds a ledger entry by ID within a contract
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, tenantID, contractID, entryID uuid.UUID) (*installment.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_id = ? AND id = ?", tenantID, contractID, entryID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIdempotencyKey finds the entry recorded under a previously used
// idempotency key, or ErrNotFound if the key has never been used
func (r *GormLedgerEntryRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*installment.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByContract returns a page of a contract's entries ordered by sequence
func (r *GormLedgerEntryRepository) ListByContract(ctx context.Context, tenantID, contractID uuid.UUID, filter shared.Filter) (shared.Paginated[*installment.LedgerEntry], error) {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*installment.LedgerEntry]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, LedgerEntrySortFields, "sequence")
	orderDir := ValidateSortOrder(filter.OrderDir)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var entryModels []models.LedgerEntryModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entryModels).Error; err != nil {
		return shared.Paginated[*installment.LedgerEntry]{}, err
	}

	entries := make([]*installment.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return shared.NewPaginated(entries, total, page, pageSize), nil
}

// AllByContract returns a contract's full entry history in sequence order,
// for balance folds and default assessment
func (r *GormLedgerEntryRepository) AllByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]*installment.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Order("sequence ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*installment.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ installment.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
