package installment

import (
	"github.com/goldshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ResolveEffectivePrice clamps a quoted market price into the contract's
// protection band. A ceiling caps what the customer can be charged per gram;
// a floor bounds what the shop can be forced to accept. Either bound may be
// absent, in which case the quote passes through on that side.
func ResolveEffectivePrice(c *Contract, quote PriceQuote) decimal.Decimal {
	price := quote.PricePerGram
	if c.CeilingPrice != nil && price.GreaterThan(*c.CeilingPrice) {
		price = *c.CeilingPrice
	}
	if c.FloorPrice != nil && price.LessThan(*c.FloorPrice) {
		price = *c.FloorPrice
	}
	return price
}

// ComputeWeightReduction converts a cash amount into the gold weight it pays
// off at the effective price. When an early-payoff discount applies, the
// divisor shrinks so the same cash clears more weight. The result is
// truncated at the weight scale; the sub-milligram remainder stays unpaid
// rather than being forgiven.
func ComputeWeightReduction(cash, effectivePrice decimal.Decimal, discountRate *decimal.Decimal, earlyPayoff bool) valueobject.Weight {
	divisor := effectivePrice
	if earlyPayoff && discountRate != nil && discountRate.IsPositive() {
		divisor = effectivePrice.Mul(decimal.NewFromInt(1).Sub(*discountRate))
	}
	if !divisor.IsPositive() {
		return valueobject.ZeroWeight()
	}
	return valueobject.NewWeight(cash.Div(divisor)).Truncate()
}

// CashValueOf returns the cash equivalent of a weight at the given price.
// Used to report the unconsumed remainder of an overpayment.
func CashValueOf(weight valueobject.Weight, pricePerGram decimal.Decimal) decimal.Decimal {
	return weight.Grams().Mul(pricePerGram)
}
