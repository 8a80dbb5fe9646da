package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a currency value stored in the smallest unit (paise / cents).
// Arithmetic on Amount is exact, so every value is already rounded to 2 decimals.
type Amount int64

// Zero is the zero amount
const Zero Amount = 0

// FromFloat converts a decimal value to an Amount, rounding half away from zero
func FromFloat(f float64) Amount {
	return Amount(math.Round(f * 100))
}

// FromCents wraps a raw cent value
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// Parse reads user-entered currency text. Anything that is not a digit or the
// first decimal point is dropped, so "₹ 1,250.5" parses as 1250.50.
// An input without any digit is reported as empty (ok == false).
func Parse(s string) (Amount, bool) {
	var b strings.Builder
	seenDot := false
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			hasDigit = true
		case r == '.' && !seenDot:
			b.WriteRune(r)
			seenDot = true
		}
	}
	if !hasDigit {
		return Zero, false
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return Zero, false
	}
	return FromFloat(f), true
}

// Cents returns the raw value in the smallest unit
func (a Amount) Cents() int64 {
	return int64(a)
}

// Float returns the decimal representation
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// Mul multiplies the amount by an integer quantity
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// IsZero reports whether the amount is zero
func (a Amount) IsZero() bool {
	return a == 0
}

// String formats the amount with exactly two decimals, e.g. "20.00"
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a decimal number
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string
func (a *Amount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = FromFloat(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("money: invalid amount %s", string(data))
	}
	if strings.TrimSpace(s) == "" {
		*a = Zero
		return nil
	}
	v, ok := Parse(s)
	if !ok {
		return fmt.Errorf("money: invalid amount %q", s)
	}
	*a = v
	return nil
}

// Sum adds a list of amounts
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
