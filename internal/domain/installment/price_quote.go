package installment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is an immutable price-per-gram observation from an external
// market source. The ledger never fetches prices itself; every quote is
// handed in by the caller and stamped onto the entry it produced, so any
// conversion can be reproduced from its recorded inputs.
type PriceQuote struct {
	PricePerGram decimal.Decimal
	QuotedAt     time.Time
	Source       string
}

// NewPriceQuote creates a price quote
func NewPriceQuote(pricePerGram decimal.Decimal, quotedAt time.Time, source string) (PriceQuote, error) {
	if !pricePerGram.IsPositive() {
		return PriceQuote{}, NewStalePriceError("Quoted price per gram must be positive")
	}
	if quotedAt.IsZero() {
		return PriceQuote{}, NewStalePriceError("Quote timestamp is required")
	}
	return PriceQuote{
		PricePerGram: pricePerGram,
		QuotedAt:     quotedAt,
		Source:       source,
	}, nil
}

// IsStale returns true if the quote is older than maxAge relative to now
func (q PriceQuote) IsStale(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(q.QuotedAt) > maxAge
}
