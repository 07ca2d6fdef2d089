// Package pricing computes order amounts. Both the storefront and the order
// service use it, so a total computed at checkout matches the one the
// server recomputes.
package pricing

import "github.com/shopspring/decimal"

// TaxRate is the flat surcharge applied to every order subtotal.
var TaxRate = decimal.RequireFromString("0.10")

type Line struct {
	UnitPrice float64
	Quantity  int
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal returns unitPrice * quantity rounded to cents.
func LineTotal(unitPrice float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

func Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.UnitPrice, l.Quantity))
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Amount converts a cent-rounded decimal to the float64 used on the wire
// and in storage.
func Amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Matches reports whether a wire amount equals d once both are rounded to
// cents.
func Matches(amount float64, d decimal.Decimal) bool {
	return decimal.NewFromFloat(amount).Round(2).Equal(d.Round(2))
}
