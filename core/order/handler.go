// Package order serves the shopper's order history from the upstream store
// API. Orders are placed upstream; this service only reads them back.
package order

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prakash4830/dry-fruits-ecommerce/api/web"
)

// Source reads one shopper's order history.
type Source interface {
	List(ctx context.Context) (json.RawMessage, error)
	Get(ctx context.Context, orderID string) (json.RawMessage, error)
}

// Selector binds the current session to its order history.
type Selector interface {
	History(ctx context.Context) (Source, error)
}

func HandleList(sel Selector) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		src, err := sel.History(ctx)
		if err != nil {
			return err
		}

		raw, err := src.List(ctx)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, raw, http.StatusOK)
	}
}

func HandleShow(sel Selector) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		src, err := sel.History(ctx)
		if err != nil {
			return err
		}

		raw, err := src.Get(ctx, web.Param(r, "id"))
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, raw, http.StatusOK)
	}
}
