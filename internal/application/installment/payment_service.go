package installment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldshop/backend/internal/domain/installment"
	"github.com/goldshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService converts cash payments into ledger entries. All price
// resolution and discount math runs before the transactional append; the
// balance constraint is re-validated inside it.
type PaymentService struct {
	contractRepo     installment.ContractRepository
	entryRepo        installment.LedgerEntryRepository
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	quoteMaxAge      time.Duration
	idempotencyTTL   time.Duration
	now              func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	contractRepo installment.ContractRepository,
	entryRepo installment.LedgerEntryRepository,
	idempotencyStore shared.IdempotencyStore,
	quoteMaxAge time.Duration,
) *PaymentService {
	return &PaymentService{
		contractRepo:     contractRepo,
		entryRepo:        entryRepo,
		idempotencyStore: idempotencyStore,
		quoteMaxAge:      quoteMaxAge,
		idempotencyTTL:   shared.DefaultIdempotencyConfig().TTL,
		now:              time.Now,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the clock used for staleness checks
func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

// SetIdempotencyTTL overrides how long processed payment keys are remembered
// on the fast path
func (s *PaymentService) SetIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// ProcessPaymentRequest carries the input for a payment
type ProcessPaymentRequest struct {
	TenantID   uuid.UUID
	ContractID uuid.UUID
	CashAmount decimal.Decimal
	// Quote is the market price observation the caller obtained; the ledger
	// never fetches prices itself
	QuotePricePerGram decimal.Decimal
	QuotedAt          time.Time
	QuoteSource       string
	// IsEarlyPayoff requests the configured early-payoff discount; the cash
	// must then clear the remaining balance entirely
	IsEarlyPayoff  bool
	Actor          string
	IdempotencyKey string
}

// ProcessPayment converts the cash amount into a weight reduction at the
// effective (protection-clamped) price and appends a payment entry.
//
// Overpayment policy: on credit-enabled contracts the balance may flip
// negative. Otherwise a regular payment exceeding the payoff need fails with
// OVERPAYMENT, while an early payoff clamps at zero and reports the
// unconsumed cash remainder back to the caller.
func (s *PaymentService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, error) {
	if !req.CashAmount.IsPositive() {
		return nil, installment.NewInvalidEntryError("Cash amount must be positive")
	}

	quote, err := installment.NewPriceQuote(req.QuotePricePerGram, req.QuotedAt, req.QuoteSource)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if quote.IsStale(now, s.quoteMaxAge) {
		return nil, installment.NewStalePriceError(fmt.Sprintf(
			"Quote from %s is older than the %s staleness threshold",
			quote.QuotedAt.Format(time.RFC3339), s.quoteMaxAge))
	}

	if req.IdempotencyKey != "" {
		// the store lets fresh keys skip the durable lookup; an expired or
		// missing store answer falls back to the unique key index on append
		maybeSeen := true
		if s.idempotencyStore != nil {
			if processed, err := s.idempotencyStore.IsProcessed(ctx, s.scopedKey(req)); err == nil {
				maybeSeen = processed
			}
		}
		if maybeSeen {
			if result, found, err := s.replayedResult(ctx, req); err != nil {
				return nil, err
			} else if found {
				return result, nil
			}
		}
	}

	contract, err := s.contractRepo.FindByID(ctx, req.TenantID, req.ContractID)
	if err != nil {
		return nil, err
	}
	if err := contract.CanAcceptEntries(); err != nil {
		return nil, err
	}

	effectivePrice := installment.ResolveEffectivePrice(contract, quote)
	divisor := effectivePrice
	if req.IsEarlyPayoff && contract.EarlyPayoffDiscountRate != nil {
		divisor = effectivePrice.Mul(decimal.NewFromInt(1).Sub(*contract.EarlyPayoffDiscountRate))
	}

	reduction := installment.ComputeWeightReduction(
		req.CashAmount, effectivePrice, contract.EarlyPayoffDiscountRate, req.IsEarlyPayoff)
	if reduction.IsZero() {
		return nil, installment.NewInvalidEntryError("Cash amount is too small to reduce the balance at the current price")
	}

	balance := contract.CurrentBalance
	applied := reduction
	remainder := decimal.Zero

	if req.IsEarlyPayoff && reduction.LessThan(balance) {
		return nil, installment.NewInvalidEntryError("Early payoff requires cash sufficient to clear the remaining balance")
	}

	if reduction.GreaterThan(balance) && !contract.AllowCredit {
		if !req.IsEarlyPayoff {
			return nil, installment.NewOverpaymentError(fmt.Sprintf(
				"Cash exceeds the payoff need: %s grams offered against a balance of %s",
				reduction.String(), balance.String()))
		}
		// early payoff clamps at zero; unconsumed cash goes back to the customer
		applied = balance
		consumed := applied.Grams().Mul(divisor)
		remainder = req.CashAmount.Sub(consumed)
	}

	entry, err := installment.NewPaymentEntry(
		req.TenantID, req.ContractID, applied.Neg(),
		req.CashAmount.Sub(remainder), effectivePrice, quote, req.Actor)
	if err != nil {
		return nil, err
	}
	entry.WithIdempotencyKey(req.IdempotencyKey)

	if err := contract.ApplyEntry(entry); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Append(ctx, contract, entry); err != nil {
		// a concurrent retry with the same key may have won the unique index
		if req.IdempotencyKey != "" && errors.Is(err, shared.ErrAlreadyExists) {
			if result, found, replayErr := s.replayedResult(ctx, req); replayErr == nil && found {
				return result, nil
			}
		}
		return nil, err
	}

	if s.idempotencyStore != nil && req.IdempotencyKey != "" {
		_, _ = s.idempotencyStore.MarkProcessed(ctx, s.scopedKey(req), s.idempotencyTTL)
	}

	s.publishEvents(ctx, contract, installment.NewPaymentAppliedEvent(contract, entry))

	return &PaymentResult{
		Entry:         ToLedgerEntryResponse(entry),
		AppliedWeight: applied.String(),
		RemainderCash: remainder,
		BalanceAfter:  contract.CurrentBalance.String(),
		Completed:     contract.Status == installment.ContractStatusCompleted,
	}, nil
}

// replayedResult returns the outcome of a prior payment with the same
// idempotency key, if one exists. The unique key index on the ledger is the
// durable source of truth; the store is a volatile hint that may expire
// before the ledger forgets.
func (s *PaymentService) replayedResult(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, bool, error) {
	entry, err := s.entryRepo.FindByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &PaymentResult{
		Entry:         ToLedgerEntryResponse(entry),
		AppliedWeight: entry.WeightDelta.Neg().String(),
		RemainderCash: decimal.Zero,
		BalanceAfter:  entry.BalanceAfter.String(),
		Completed:     entry.BalanceAfter.IsZero(),
		Duplicate:     true,
	}, true, nil
}

func (s *PaymentService) scopedKey(req ProcessPaymentRequest) string {
	return "payment:" + req.TenantID.String() + ":" + req.IdempotencyKey
}

func (s *PaymentService) publishEvents(ctx context.Context, contract *installment.Contract, extra shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, extra)
	for _, event := range contract.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	contract.ClearDomainEvents()
}
