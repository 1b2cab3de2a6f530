package installment

import (
	"context"
	"time"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) Save(ctx context.Context, contract *installment.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) Update(ctx context.Context, contract *installment.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*installment.Contract, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, contractNumber string) (*installment.Contract, error) {
	args := m.Called(ctx, tenantID, contractNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.Contract), args.Error(1)
}

func (m *MockContractRepository) List(ctx context.Context, tenantID uuid.UUID, status *installment.ContractStatus, filter shared.Filter) (shared.Paginated[*installment.Contract], error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).(shared.Paginated[*installment.Contract]), args.Error(1)
}

func (m *MockContractRepository) FindActiveForScan(ctx context.Context) ([]*installment.Contract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*installment.Contract), args.Error(1)
}

type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Append(ctx context.Context, contract *installment.Contract, entry *installment.LedgerEntry) error {
	args := m.Called(ctx, contract, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) FindByID(ctx context.Context, tenantID, contractID, entryID uuid.UUID) (*installment.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, contractID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*installment.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) ListByContract(ctx context.Context, tenantID, contractID uuid.UUID, filter shared.Filter) (shared.Paginated[*installment.LedgerEntry], error) {
	args := m.Called(ctx, tenantID, contractID, filter)
	return args.Get(0).(shared.Paginated[*installment.LedgerEntry]), args.Error(1)
}

func (m *MockLedgerEntryRepository) AllByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]*installment.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*installment.LedgerEntry), args.Error(1)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
	Published []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.Published = append(m.Published, events...)
	args := m.Called(ctx, events)
	return args.Error(0)
}
