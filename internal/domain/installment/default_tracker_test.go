package installment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateDefault(t *testing.T) {
	tenantID := uuid.New()
	signedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	newContract := func(t *testing.T, mutate func(*ContractSpec)) *Contract {
		spec := validSpec(t)
		spec.SignedAt = signedAt
		spec.Frequency = FrequencyMonthly
		spec.InstallmentCount = 10
		spec.InitialWeight = mustWeight(t, "10.000")
		spec.GraceDays = 7
		spec.PenaltyRate = decimal.RequireFromString("0.05")
		if mutate != nil {
			mutate(&spec)
		}
		c, err := NewContract(tenantID, spec)
		require.NoError(t, err)
		return c
	}

	paymentEntries := func(t *testing.T, c *Contract, n int) []*LedgerEntry {
		entries := make([]*LedgerEntry, 0, n)
		for i := 0; i < n; i++ {
			e, err := NewPaymentEntry(tenantID, c.ID, mustWeight(t, "-1.000"),
				decimal.NewFromInt(100), decimal.NewFromInt(100), quoteAt(t, "100"), "cashier")
			require.NoError(t, err)
			entries = append(entries, e)
		}
		return entries
	}

	t.Run("current before the first due date", func(t *testing.T) {
		c := newContract(t, nil)
		now := signedAt.AddDate(0, 0, 20) // first due date is Feb 1

		a := EvaluateDefault(c, nil, now)
		assert.Equal(t, DefaultStateCurrent, a.State)
		assert.False(t, a.IsOverdue)
		require.NotNil(t, a.NextDueDate)
		assert.Equal(t, signedAt.AddDate(0, 1, 0), *a.NextDueDate)
	})

	t.Run("current when every elapsed due date is covered", func(t *testing.T) {
		c := newContract(t, nil)
		now := signedAt.AddDate(0, 2, 5) // two due dates elapsed

		a := EvaluateDefault(c, paymentEntries(t, c, 2), now)
		assert.Equal(t, DefaultStateCurrent, a.State)
		assert.Equal(t, 0, a.MissedInstallments)
	})

	t.Run("grace window after a missed due date", func(t *testing.T) {
		c := newContract(t, nil)
		// first due date Feb 1, now Feb 4: 4 of 7 grace days remain
		now := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)

		a := EvaluateDefault(c, nil, now)
		assert.Equal(t, DefaultStateGrace, a.State)
		assert.True(t, a.IsOverdue)
		assert.Equal(t, 1, a.MissedInstallments)
		assert.Equal(t, 4, a.GraceDaysRemaining)
	})

	t.Run("defaulted once grace is exhausted", func(t *testing.T) {
		c := newContract(t, nil)
		now := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC) // Feb 1 + 7 grace, passed

		a := EvaluateDefault(c, nil, now)
		assert.Equal(t, DefaultStateDefaulted, a.State)
		assert.True(t, a.IsOverdue)
	})

	t.Run("payment during grace cures the delinquency", func(t *testing.T) {
		c := newContract(t, nil)
		now := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)

		a := EvaluateDefault(c, paymentEntries(t, c, 1), now)
		assert.Equal(t, DefaultStateCurrent, a.State)
		assert.False(t, a.IsOverdue)
	})

	t.Run("suggested penalty scales with missed installments", func(t *testing.T) {
		c := newContract(t, nil)
		// three due dates elapsed, one covered -> two missed
		now := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)

		a := EvaluateDefault(c, paymentEntries(t, c, 1), now)
		assert.Equal(t, 2, a.MissedInstallments)
		// installment weight 1.000, rate 0.05, two missed -> 0.100
		assert.Equal(t, "0.100", a.SuggestedPenaltyWeight.String())
	})

	t.Run("penalty is advisory only", func(t *testing.T) {
		c := newContract(t, nil)
		now := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
		balanceBefore := c.CurrentBalance

		a := EvaluateDefault(c, nil, now)
		assert.True(t, a.SuggestedPenaltyWeight.IsPositive())
		assert.True(t, c.CurrentBalance.Equal(balanceBefore))
		assert.Equal(t, ContractStatusActive, c.Status)
	})

	t.Run("reversal gives back a covered installment", func(t *testing.T) {
		c := newContract(t, nil)
		entries := paymentEntries(t, c, 1)
		rev, err := NewReversalEntry(tenantID, c.ID, entries[0], "wrong contract", "supervisor")
		require.NoError(t, err)
		entries = append(entries, rev)

		now := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
		a := EvaluateDefault(c, entries, now)
		assert.Equal(t, DefaultStateGrace, a.State)
		assert.Equal(t, 1, a.MissedInstallments)
	})

	t.Run("terminal contracts are never assessed overdue", func(t *testing.T) {
		c := newContract(t, nil)
		require.NoError(t, c.Cancel("closed early"))

		now := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		a := EvaluateDefault(c, nil, now)
		assert.Equal(t, DefaultStateCurrent, a.State)
		assert.False(t, a.IsOverdue)
	})

	t.Run("already defaulted contract reports defaulted even within grace math", func(t *testing.T) {
		c := newContract(t, nil)
		require.NoError(t, c.MarkDefaulted(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)))

		now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
		a := EvaluateDefault(c, nil, now)
		assert.Equal(t, DefaultStateDefaulted, a.State)
	})

	t.Run("zero penalty rate suggests nothing", func(t *testing.T) {
		c := newContract(t, func(s *ContractSpec) { s.PenaltyRate = decimal.Zero })
		now := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

		a := EvaluateDefault(c, nil, now)
		assert.True(t, a.SuggestedPenaltyWeight.IsZero())
	})

	t.Run("zero grace days defaults immediately after the due date", func(t *testing.T) {
		c := newContract(t, func(s *ContractSpec) { s.GraceDays = 0 })
		now := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

		a := EvaluateDefault(c, nil, now)
		assert.Equal(t, DefaultStateDefaulted, a.State)
	})
}
