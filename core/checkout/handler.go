package checkout

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prakash4830/dry-fruits-ecommerce/api/web"
	"github.com/prakash4830/dry-fruits-ecommerce/api/weberr"
	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
	"github.com/prakash4830/dry-fruits-ecommerce/core/upstream"
	"github.com/prakash4830/dry-fruits-ecommerce/validate"
)

type QuoteNew struct {
	CouponCode string `json:"couponCode" validate:"omitempty,min=3,max=50"`
}

func HandleQuote(sel cart.Selector, up *upstream.Client, policy cart.Policy) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in QuoteNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		b, err := sel.Backend(ctx)
		if err != nil {
			return err
		}

		snap, err := b.Get(ctx)
		if err != nil {
			return err
		}

		var discount int64
		code := ""
		if in.CouponCode != "" {
			res, err := up.ValidateCoupon(ctx, in.CouponCode, snap.Subtotal)
			if err != nil {
				return fmt.Errorf("validating coupon: %w", err)
			}
			discount = res.Discount
			code = in.CouponCode
		}

		return web.Respond(ctx, w, BuildQuote(snap, policy, discount, code), http.StatusOK)
	}
}
