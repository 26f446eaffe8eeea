// Package valueobjects contains immutable value objects of the ledger domain.
//
// Amount is the single money type in the system. Every balance, transaction
// amount and ledger entry is an Amount: a fixed-point decimal normalized to
// scale 2, matching the NUMERIC(20,2) columns in the store.
package valueobjects

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ============================================
// Amount Value Object
// ============================================

// amountScale is the fixed fractional precision of every Amount.
const amountScale = 2

// maxIntegerDigits caps the integral part so the value always fits
// NUMERIC(20,2) in the store.
const maxIntegerDigits = 18

// Amount is an immutable scale-2 decimal quantity of a virtual asset.
//
// The zero value is a valid Amount equal to 0.00.
type Amount struct {
	value decimal.Decimal
}

// Zero returns the 0.00 amount.
func Zero() Amount {
	return Amount{value: decimal.Zero}
}

// NewAmount parses a decimal string into an Amount.
//
// The input is normalized to scale 2 with banker-free truncation disabled:
// more than two fractional digits is rejected rather than silently rounded,
// so "1.005" is an error, not 1.00 or 1.01.
func NewAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, fmt.Errorf("amount: empty string")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("amount: not a decimal number: %q", s)
	}

	return fromDecimal(d)
}

// NewAmountFromDecimal converts a raw decimal into an Amount, applying the
// same scale and magnitude checks as NewAmount.
func NewAmountFromDecimal(d decimal.Decimal) (Amount, error) {
	return fromDecimal(d)
}

// MustAmount is NewAmount that panics on error. For constants and tests only.
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func fromDecimal(d decimal.Decimal) (Amount, error) {
	if d.Exponent() < -amountScale {
		// Exponent alone over-rejects values like 1.100 (exponent -3,
		// but representable at scale 2), so compare after truncation.
		if !d.Equal(d.Truncate(amountScale)) {
			return Amount{}, fmt.Errorf("amount: more than %d fractional digits: %s", amountScale, d)
		}
	}

	limit := decimal.New(1, maxIntegerDigits)
	if d.Abs().Cmp(limit) >= 0 {
		return Amount{}, fmt.Errorf("amount: magnitude out of range: %s", d)
	}

	return Amount{value: d.Round(amountScale)}, nil
}

// ============================================
// Arithmetic
// ============================================

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

// Sub returns a - other. The result may be negative; callers that require
// non-negative balances must check before persisting.
func (a Amount) Sub(other Amount) Amount {
	return Amount{value: a.value.Sub(other.value)}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{value: a.value.Neg()}
}

// ============================================
// Comparisons
// ============================================

// Cmp compares a and other: -1 if a < other, 0 if equal, +1 if a > other.
func (a Amount) Cmp(other Amount) int {
	return a.value.Cmp(other.value)
}

// Equal reports whether two amounts represent the same quantity.
func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

// IsZero reports whether a == 0.00.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool {
	return a.value.IsNegative()
}

// GreaterThanOrEqual reports a >= other.
func (a Amount) GreaterThanOrEqual(other Amount) bool {
	return a.value.Cmp(other.value) >= 0
}

// ============================================
// Representation
// ============================================

// String renders the amount with exactly two fractional digits ("12.50").
// This is the canonical wire and store representation.
func (a Amount) String() string {
	return a.value.StringFixed(amountScale)
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// MarshalJSON renders the amount as a JSON string to avoid float precision
// loss in clients.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both string ("10.50") and bare number (10.5) forms.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := NewAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
