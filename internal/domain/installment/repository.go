package installment

import (
	"context"

	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractRepository persists contract aggregates
type ContractRepository interface {
	// Save inserts a new contract
	Save(ctx context.Context, contract *Contract) error
	// Update writes a contract guarded by its version; returns
	// shared.ErrConcurrencyConflict when the stored version moved
	Update(ctx context.Context, contract *Contract) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, contractNumber string) (*Contract, error)
	List(ctx context.Context, tenantID uuid.UUID, status *ContractStatus, filter shared.Filter) (shared.Paginated[*Contract], error)
	// FindActiveForScan returns active contracts across all tenants for the
	// default scan job
	FindActiveForScan(ctx context.Context) ([]*Contract, error)
}

// LedgerEntryRepository persists ledger entries. Entries are append-only:
// there is no update or delete.
type LedgerEntryRepository interface {
	// Append persists the entry and the contract's advanced projection in a
	// single transaction, guarded by the contract version it was loaded at.
	// Returns shared.ErrConcurrencyConflict if another append won the race;
	// neither row is written in that case.
	Append(ctx context.Context, contract *Contract, entry *LedgerEntry) error
	FindByID(ctx context.Context, tenantID, contractID, entryID uuid.UUID) (*LedgerEntry, error)
	// FindByIdempotencyKey returns the entry a retried request already
	// produced, or shared.ErrNotFound
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*LedgerEntry, error)
	// ListByContract returns a page of entries ordered by sequence
	ListByContract(ctx context.Context, tenantID, contractID uuid.UUID, filter shared.Filter) (shared.Paginated[*LedgerEntry], error)
	// AllByContract returns the full history ordered by sequence, for folds
	AllByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]*LedgerEntry, error)
}
