package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightScale is the number of fractional digits carried for gold weights.
// Three digits (milligram resolution) is the jewelry-industry convention.
const WeightScale = 3

// Weight is a value object representing a quantity of fine gold in grams.
// It is immutable - all operations return new Weight instances.
type Weight struct {
	grams decimal.Decimal
}

// NewWeight creates a Weight from a decimal gram value
func NewWeight(grams decimal.Decimal) Weight {
	return Weight{grams: grams}
}

// NewWeightFromString creates a Weight from a string representation
func NewWeightFromString(grams string) (Weight, error) {
	d, err := decimal.NewFromString(grams)
	if err != nil {
		return Weight{}, fmt.Errorf("invalid weight string: %w", err)
	}
	return Weight{grams: d}, nil
}

// ZeroWeight returns a zero-gram Weight
func ZeroWeight() Weight {
	return Weight{grams: decimal.Zero}
}

// Grams returns the decimal gram value
func (w Weight) Grams() decimal.Decimal {
	return w.grams
}

// IsZero returns true if the weight is zero
func (w Weight) IsZero() bool {
	return w.grams.IsZero()
}

// IsPositive returns true if the weight is positive
func (w Weight) IsPositive() bool {
	return w.grams.IsPositive()
}

// IsNegative returns true if the weight is negative
func (w Weight) IsNegative() bool {
	return w.grams.IsNegative()
}

// Add returns a new Weight with the sum of both weights
func (w Weight) Add(other Weight) Weight {
	return Weight{grams: w.grams.Add(other.grams)}
}

// Sub returns a new Weight with the difference of both weights
func (w Weight) Sub(other Weight) Weight {
	return Weight{grams: w.grams.Sub(other.grams)}
}

// Neg returns the weight with its sign flipped
func (w Weight) Neg() Weight {
	return Weight{grams: w.grams.Neg()}
}

// Min returns the smaller of the two weights
func (w Weight) Min(other Weight) Weight {
	if w.grams.LessThan(other.grams) {
		return w
	}
	return other
}

// Cmp compares two weights: -1 if w < other, 0 if equal, +1 if w > other
func (w Weight) Cmp(other Weight) int {
	return w.grams.Cmp(other.grams)
}

// Equal returns true if both weights are numerically equal
func (w Weight) Equal(other Weight) bool {
	return w.grams.Equal(other.grams)
}

// LessThan returns true if w < other
func (w Weight) LessThan(other Weight) bool {
	return w.grams.LessThan(other.grams)
}

// GreaterThan returns true if w > other
func (w Weight) GreaterThan(other Weight) bool {
	return w.grams.GreaterThan(other.grams)
}

// Truncate returns the weight truncated (rounded toward zero) at WeightScale
// fractional digits. Weight credited to a customer is always truncated, never
// rounded up, so a rounding remainder can only favor the shop.
func (w Weight) Truncate() Weight {
	return Weight{grams: w.grams.Truncate(WeightScale)}
}

// String returns the gram value fixed at WeightScale digits
func (w Weight) String() string {
	return w.grams.StringFixed(WeightScale)
}

// MarshalJSON implements json.Marshaler
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (w *Weight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid weight value: %w", err)
	}
	w.grams = d
	return nil
}

// Value implements driver.Valuer for database storage
func (w Weight) Value() (driver.Value, error) {
	return w.grams.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (w *Weight) Scan(value interface{}) error {
	if value == nil {
		w.grams = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return errors.New("failed to scan Weight: " + err.Error())
	}
	w.grams = d
	return nil
}
