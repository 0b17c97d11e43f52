package upstream

import (
	"context"
	"encoding/json"
	"net/http"
)

type CouponResult struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount_amount"`
}

// ValidateCoupon asks the upstream whether a coupon code applies to the
// given order total and what absolute discount it grants.
func (c *Client) ValidateCoupon(ctx context.Context, code string, total int64) (CouponResult, error) {
	in := struct {
		Code  string `json:"code"`
		Total int64  `json:"total"`
	}{Code: code, Total: total}

	var res CouponResult
	if err := c.do(ctx, http.MethodPost, "orders/validate-coupon/", nil, nil, nil, in, &res); err != nil {
		return CouponResult{}, err
	}
	return res, nil
}

// OrderHistory reads one shopper's past orders. Like the catalog, payloads
// are forwarded verbatim; the upstream owns the order schema.
type OrderHistory struct {
	client  *Client
	token   *Token
	persist func(context.Context, Token)
}

func NewOrderHistory(c *Client, tok Token, persist func(context.Context, Token)) *OrderHistory {
	return &OrderHistory{client: c, token: &tok, persist: persist}
}

func (h *OrderHistory) List(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := h.client.doAuth(ctx, http.MethodGet, "orders/", h.token, h.persist, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (h *OrderHistory) Get(ctx context.Context, orderID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := h.client.doAuth(ctx, http.MethodGet, "orders/"+orderID+"/", h.token, h.persist, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
