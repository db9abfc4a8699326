package order

import "github.com/shopspring/decimal"

// PriceLine is a single line item input for price calculation. Unit prices
// must come from the catalog, never from the client.
type PriceLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// PriceParams holds the inputs for a price calculation. DiscountAmount wins
// over DiscountPercent when both are set; TaxRate and DiscountPercent are
// percentages.
type PriceParams struct {
	Lines           []PriceLine
	ShippingFee     decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Totals is the computed price breakdown of a checkout, each figure rounded
// to 2 decimal places.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Price computes subtotal, discount, tax, and total for a cart. Tax applies
// to the discounted subtotal, floored at zero. Rounding happens once at the
// boundary so intermediate figures do not compound rounding error.
func Price(p PriceParams) Totals {
	subtotal := decimal.Zero
	for _, line := range p.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discount := decimal.Zero
	switch {
	case p.DiscountAmount.IsPositive():
		discount = p.DiscountAmount
	case p.DiscountPercent.IsPositive():
		discount = subtotal.Mul(p.DiscountPercent).Div(hundred)
	}

	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	tax := decimal.Zero
	if p.TaxRate.IsPositive() {
		tax = taxable.Mul(p.TaxRate).Div(hundred)
	}

	total := subtotal.Add(p.ShippingFee).Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal.Round(2),
		Discount: discount.Round(2),
		Tax:      tax.Round(2),
		Total:    total.Round(2),
	}
}

var hundred = decimal.NewFromInt(100)
