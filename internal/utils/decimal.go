package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses user-entered money strings. Form entry arrives with
// thousand separators and stray whitespace, so those are tolerated; anything
// else that is not a plain decimal is an error.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// ParseAmountDefault is ParseAmount with a fallback for blank-or-invalid
// input, used where a missing form value means zero.
func ParseAmountDefault(s string, def decimal.Decimal) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return def
	}
	return d
}
