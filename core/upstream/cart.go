package upstream

import (
	"context"
	"net/http"

	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
)

type wireItem struct {
	ID        string          `json:"id"`
	Product   cart.ProductRef `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice int64           `json:"unitPrice"`
	LineTotal int64           `json:"lineTotal"`
}

type wireCart struct {
	Items    []wireItem `json:"items"`
	Subtotal int64      `json:"subtotal"`
	Tax      int64      `json:"tax"`
	Shipping int64      `json:"shipping"`
	Total    int64      `json:"total"`
}

// snapshot adopts the upstream cart verbatim. Totals are never recomputed on
// this side; the server owns them for authenticated carts.
func (wc wireCart) snapshot() cart.Snapshot {
	items := make([]cart.LineItem, 0, len(wc.Items))
	for _, it := range wc.Items {
		items = append(items, cart.LineItem{
			ID:        it.ID,
			Product:   it.Product,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return cart.Snapshot{
		Items:    items,
		Subtotal: wc.Subtotal,
		Tax:      wc.Tax,
		Shipping: wc.Shipping,
		Total:    wc.Total,
	}
}

// Cart mutations come back wrapped next to a human-readable message.
type cartEnvelope struct {
	Message string   `json:"message"`
	Cart    wireCart `json:"cart"`
}

// CartBackend is the authenticated cart capability. Every operation is one
// upstream round-trip returning the recomputed server cart.
type CartBackend struct {
	client *Client
	token  *Token

	// persist is invoked after a transparent token refresh so the session
	// keeps the renewed access token.
	persist func(context.Context, Token)
}

func NewCartBackend(c *Client, tok Token, persist func(context.Context, Token)) *CartBackend {
	return &CartBackend{client: c, token: &tok, persist: persist}
}

func (b *CartBackend) Get(ctx context.Context) (cart.Snapshot, error) {
	var wc wireCart
	if err := b.client.doAuth(ctx, http.MethodGet, "cart/", b.token, b.persist, nil, nil, &wc); err != nil {
		return cart.Snapshot{}, err
	}
	return wc.snapshot(), nil
}

func (b *CartBackend) Add(ctx context.Context, p cart.ProductRef, quantity int) (cart.Snapshot, error) {
	return b.AddItem(ctx, p.ID, quantity, "")
}

// AddItem replays one product into the server cart. The server sums the
// quantity into any line it already holds for the product. A non-empty
// mergeKey travels as the Idempotency-Key header so a repeated replay of the
// same guest line can be deduplicated upstream.
func (b *CartBackend) AddItem(ctx context.Context, productID string, quantity int, mergeKey string) (cart.Snapshot, error) {
	in := struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}{ProductID: productID, Quantity: quantity}

	var header http.Header
	if mergeKey != "" {
		header = http.Header{"Idempotency-Key": []string{mergeKey}}
	}

	var env cartEnvelope
	if err := b.client.doAuth(ctx, http.MethodPost, "cart/add/", b.token, b.persist, header, in, &env); err != nil {
		return cart.Snapshot{}, err
	}
	return env.Cart.snapshot(), nil
}

func (b *CartBackend) SetQuantity(ctx context.Context, itemID string, quantity int) (cart.Snapshot, error) {
	if quantity <= 0 {
		return b.Remove(ctx, itemID)
	}

	in := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}

	var env cartEnvelope
	if err := b.client.doAuth(ctx, http.MethodPut, "cart/items/"+itemID+"/", b.token, b.persist, nil, in, &env); err != nil {
		return cart.Snapshot{}, err
	}
	return env.Cart.snapshot(), nil
}

func (b *CartBackend) Remove(ctx context.Context, itemID string) (cart.Snapshot, error) {
	var env cartEnvelope
	if err := b.client.doAuth(ctx, http.MethodDelete, "cart/items/"+itemID+"/", b.token, b.persist, nil, nil, &env); err != nil {
		return cart.Snapshot{}, err
	}
	return env.Cart.snapshot(), nil
}

func (b *CartBackend) Clear(ctx context.Context) error {
	return b.client.doAuth(ctx, http.MethodDelete, "cart/", b.token, b.persist, nil, nil, nil)
}

// ServerMerge invokes the upstream's own merge primitive. Its semantics are
// owned by the upstream; this is a plain passthrough.
func (b *CartBackend) ServerMerge(ctx context.Context) (cart.Snapshot, error) {
	var env cartEnvelope
	if err := b.client.doAuth(ctx, http.MethodPost, "cart/merge/", b.token, b.persist, nil, nil, &env); err != nil {
		return cart.Snapshot{}, err
	}
	return env.Cart.snapshot(), nil
}
