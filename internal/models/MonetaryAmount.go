package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonetaryAmount is a fixed-point on-chain token quantity, e.g.
// {"amount":"2000000000000000000","unit":"WILD","precision":18} is 2 WILD.
type MonetaryAmount struct {
	Amount    string `json:"amount"`
	Unit      string `json:"unit"`
	Precision int    `json:"precision"`
}

// Decimal returns the token quantity with precision applied.
func (m MonetaryAmount) Decimal() (decimal.Decimal, error) {
	if m.Amount == "" {
		return decimal.Zero, nil
	}
	raw, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("monetary amount %q: %w", m.Amount, err)
	}
	return raw.Shift(int32(-m.Precision)), nil
}

// ToUSD converts the amount to a plain number at the given unit price.
func (m MonetaryAmount) ToUSD(price float64) (float64, error) {
	qty, err := m.Decimal()
	if err != nil {
		return 0, err
	}
	usd, _ := qty.Mul(decimal.NewFromFloat(price)).Float64()
	return usd, nil
}
