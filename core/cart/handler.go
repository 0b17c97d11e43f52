package cart

import (
	"context"
	"net/http"

	"github.com/prakash4830/dry-fruits-ecommerce/api/web"
	"github.com/prakash4830/dry-fruits-ecommerce/api/weberr"
	"github.com/prakash4830/dry-fruits-ecommerce/validate"
)

func HandleShow(sel Selector) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := sel.Backend(ctx)
		if err != nil {
			return err
		}

		snap, err := b.Get(ctx)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, snap, http.StatusOK)
	}
}

func HandleClear(sel Selector) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := sel.Backend(ctx)
		if err != nil {
			return err
		}

		if err := b.Clear(ctx); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleAddItem(sel Selector) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ItemNew
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

		snap, err := b.Add(ctx, in.Product, in.Quantity)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, snap, http.StatusOK)
	}
}

func HandleUpdateItem(sel Selector) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")

		var in ItemUp
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

		// Zero is a removal, not a stored quantity.
		snap, err := b.SetQuantity(ctx, id, in.Quantity)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, snap, http.StatusOK)
	}
}

func HandleDeleteItem(sel Selector) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")

		b, err := sel.Backend(ctx)
		if err != nil {
			return err
		}

		snap, err := b.Remove(ctx, id)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, snap, http.StatusOK)
	}
}
