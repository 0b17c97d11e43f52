package upstream

import (
	"context"
	"encoding/json"
	"net/url"
)

// The catalog is served verbatim: list endpoints carry upstream pagination
// envelopes this service has no reason to reshape.

func (c *Client) Products(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.get(ctx, "products/", query)
}

// Product takes the raw slug; the URL is escaped once when the request is
// built, so pre-escaping here would double-encode it.
func (c *Client) Product(ctx context.Context, slug string) (json.RawMessage, error) {
	return c.get(ctx, "products/"+slug+"/", nil)
}

func (c *Client) FeaturedProducts(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "products/featured/", nil)
}
