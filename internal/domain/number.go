package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.-]+`)
	numericPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// Number is a backend numeric field. It accepts JSON numbers, numeric
// strings and currency-formatted strings ("$1,299.00", "99 ر.س"). Anything
// else, including null, decodes to an unset Number.
type Number struct {
	text string
	set  bool
}

// NumberOf returns a set Number holding f.
func NumberOf(f float64) Number {
	return Number{text: strconv.FormatFloat(f, 'f', -1, 64), set: true}
}

// ParseNumber coerces s by stripping every character outside [0-9.-] and
// reading the longest numeric prefix of what remains.
func ParseNumber(s string) Number {
	cleaned := numericPrefix.FindString(nonNumeric.ReplaceAllString(s, ""))
	cleaned = strings.TrimSuffix(cleaned, ".")
	if cleaned == "" || cleaned == "-" {
		return Number{}
	}
	return Number{text: cleaned, set: true}
}

// IsSet reports whether the field was present and numeric.
func (n Number) IsSet() bool {
	return n.set
}

// Float returns the value, or 0 when unset.
func (n Number) Float() float64 {
	if !n.set {
		return 0
	}
	f, err := strconv.ParseFloat(n.text, 64)
	if err != nil {
		return 0
	}
	return f
}

// Int returns the value truncated to an int.
func (n Number) Int() int {
	return int(n.Float())
}

// Decimal returns the exact decimal value, or zero when unset.
func (n Number) Decimal() decimal.Decimal {
	if !n.set {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// UnmarshalJSON never fails.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*n = ParseNumber(s)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var num json.Number
		if err := json.Unmarshal(data, &num); err == nil {
			*n = Number{text: num.String(), set: true}
		}
	}
	return nil
}

// MarshalJSON writes a JSON number, or null when unset.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Float(), 'f', -1, 64)), nil
}

// FirstNonZero returns the first alias that is set and non-zero, mirroring
// the legacy "a || b || c" fallback chains, or 0.
func FirstNonZero(aliases ...Number) float64 {
	for _, n := range aliases {
		if f := n.Float(); n.set && f != 0 {
			return f
		}
	}
	return 0
}

// FirstSet returns the first alias that is present at all, even when zero.
func FirstSet(aliases ...Number) (float64, bool) {
	for _, n := range aliases {
		if n.set {
			return n.Float(), true
		}
	}
	return 0, false
}
