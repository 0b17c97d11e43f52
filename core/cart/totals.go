package cart

// Policy carries the pricing constants applied to locally computed carts.
// The server remains authoritative for authenticated carts; this policy
// governs guest carts and checkout quotes only.
type Policy struct {
	TaxRateBP             int64
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// DefaultPolicy is 18% GST, free shipping from ₹499, flat ₹50 otherwise.
func DefaultPolicy() Policy {
	return Policy{
		TaxRateBP:             1800,
		FreeShippingThreshold: 49900,
		FlatShippingFee:       5000,
	}
}

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// Calculate derives cart totals from the line items. It is pure: the same
// items, policy and discount always yield the same totals. The total never
// goes below zero, however large the discount.
func Calculate(items []LineItem, p Policy, discount int64) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.UnitPrice * int64(it.Quantity)
	}

	// Half-up rounding to whole paise.
	tax := (subtotal*p.TaxRateBP + 5000) / 10000

	var shipping int64
	if subtotal > 0 && subtotal < p.FreeShippingThreshold {
		shipping = p.FlatShippingFee
	}

	total := subtotal + tax + shipping - discount
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}

// Recalculate rebuilds every derived field of a snapshot after a mutation.
// Line totals are never trusted from storage; they are recomputed from unit
// price and quantity every time.
func Recalculate(items []LineItem, p Policy) Snapshot {
	for i := range items {
		items[i].LineTotal = items[i].UnitPrice * int64(items[i].Quantity)
	}

	t := Calculate(items, p, 0)
	return Snapshot{
		Items:    items,
		Subtotal: t.Subtotal,
		Tax:      t.Tax,
		Shipping: t.Shipping,
		Total:    t.Total,
	}
}
