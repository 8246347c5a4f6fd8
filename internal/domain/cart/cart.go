// Package cart implements the storefront cart engine: an ordered list of
// line items with locked-in unit prices, derived totals, and persistence of
// every mutation to a storage slot.
package cart

import (
	"github.com/shopspring/decimal"
)

// TaxRate is applied to the subtotal when computing totals.
var TaxRate = decimal.RequireFromString("0.10")

// LineItem is one row in the cart: a purchasable configuration (product and
// size combined into a single display name), the unit price captured at the
// moment the item was added, and a quantity that is always >= 1 while the
// item exists.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// sameLine reports whether two additions address the same line item.
// Name and unit price together form the sole de-duplication key: catalog
// price drift produces a new line rather than touching existing ones.
func (li LineItem) sameLine(name string, price decimal.Decimal) bool {
	return li.Name == name && li.UnitPrice.Equal(price)
}

// Totals are derived from the current line items on every query and are
// never stored independently of them.
type Totals struct {
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// ComputeTotals returns the totals for the given line items. The tax is
// rounded to 2 decimal places; an empty cart yields all-zero totals.
func ComputeTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
		count += item.Quantity
	}

	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
		ItemCount: count,
	}
}

// cloneItems returns a defensive copy of items.
func cloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
