// Package checkout prices the final order. The coupon discount lives only
// here: it is applied to a quote, never written into cart state.
package checkout

import "github.com/prakash4830/dry-fruits-ecommerce/core/cart"

type Quote struct {
	cart.Totals
	CouponCode string `json:"couponCode,omitempty"`
}

// BuildQuote projects the cart through the pricing policy with the coupon
// discount applied. The cart snapshot itself stays untouched.
func BuildQuote(snap cart.Snapshot, p cart.Policy, discount int64, couponCode string) Quote {
	return Quote{
		Totals:     cart.Calculate(snap.Items, p, discount),
		CouponCode: couponCode,
	}
}
