package installment

import (
	"time"

	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultState classifies a contract's delinquency standing
type DefaultState string

const (
	// DefaultStateCurrent means every elapsed due date has been met
	DefaultStateCurrent DefaultState = "CURRENT"
	// DefaultStateGrace means an installment is overdue but still within the grace window
	DefaultStateGrace DefaultState = "GRACE"
	// DefaultStateDefaulted means the grace window has been exhausted without cure
	DefaultStateDefaulted DefaultState = "DEFAULTED"
)

// String returns the string representation of DefaultState
func (s DefaultState) String() string {
	return string(s)
}

// DefaultAssessment is the outcome of evaluating a contract's payment
// schedule at a point in time. It is purely descriptive: nothing about the
// contract changes until a caller acts on it.
type DefaultAssessment struct {
	State              DefaultState
	IsOverdue          bool
	MissedInstallments int
	GraceDaysRemaining int
	// SuggestedPenaltyWeight is advisory. Appending it as a PENALTY entry
	// is a separate, audited operation.
	SuggestedPenaltyWeight valueobject.Weight
	NextDueDate            *time.Time
	EvaluatedAt            time.Time
}

// EvaluateDefault assesses a contract's standing against its installment
// schedule. One qualifying payment covers one scheduled installment, oldest
// first; reversals of payments give the covered installment back. The
// evaluation is side-effect free and deterministic for a given clock value.
func EvaluateDefault(c *Contract, entries []*LedgerEntry, now time.Time) DefaultAssessment {
	assessment := DefaultAssessment{
		State:       DefaultStateCurrent,
		EvaluatedAt: now,
	}

	if c.Status.IsTerminal() {
		return assessment
	}

	dueDates := c.DueDates()
	covered := coveredInstallments(entries)

	elapsed := 0
	for _, d := range dueDates {
		if !d.After(now) {
			elapsed++
		}
	}

	if covered < len(dueDates) {
		next := dueDates[covered]
		assessment.NextDueDate = &next
	}

	missed := elapsed - covered
	if missed <= 0 {
		if c.Status == ContractStatusDefaulted {
			// already marked; a cure payment resets the assessment but the
			// status transition back is an administrative decision
			assessment.State = DefaultStateDefaulted
		}
		return assessment
	}

	assessment.IsOverdue = true
	assessment.MissedInstallments = missed
	assessment.SuggestedPenaltyWeight = suggestedPenalty(c, missed)

	// the oldest unmet due date drives the grace window
	oldestUnmet := dueDates[covered]
	graceEnds := oldestUnmet.AddDate(0, 0, c.GraceDays)
	if now.After(graceEnds) || c.Status == ContractStatusDefaulted {
		assessment.State = DefaultStateDefaulted
		return assessment
	}

	assessment.State = DefaultStateGrace
	remaining := int(graceEnds.Sub(now).Hours() / 24)
	if remaining < 0 {
		remaining = 0
	}
	assessment.GraceDaysRemaining = remaining
	return assessment
}

// coveredInstallments counts how many scheduled installments the entry
// history has satisfied: one per payment entry, minus one per reversal that
// undid a balance reduction.
func coveredInstallments(entries []*LedgerEntry) int {
	covered := 0
	for _, e := range entries {
		switch {
		case e.Kind == EntryKindPayment:
			covered++
		case e.Kind == EntryKindReversal && e.WeightDelta.IsPositive():
			covered--
		}
	}
	if covered < 0 {
		covered = 0
	}
	return covered
}

func suggestedPenalty(c *Contract, missed int) valueobject.Weight {
	if !c.PenaltyRate.IsPositive() || missed <= 0 {
		return valueobject.ZeroWeight()
	}
	per := c.ScheduledInstallmentWeight().Grams().Mul(c.PenaltyRate)
	total := per.Mul(decimal.NewFromInt(int64(missed)))
	return valueobject.NewWeight(total).Truncate()
}
