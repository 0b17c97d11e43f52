// Package catalog forwards product reads to the upstream store API.
package catalog

import (
	"context"
	"net/http"

	"github.com/prakash4830/dry-fruits-ecommerce/api/web"
	"github.com/prakash4830/dry-fruits-ecommerce/core/upstream"
)

func HandleList(up *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		raw, err := up.Products(ctx, r.URL.Query())
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, raw, http.StatusOK)
	}
}

func HandleShow(up *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		raw, err := up.Product(ctx, web.Param(r, "slug"))
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, raw, http.StatusOK)
	}
}

func HandleFeatured(up *upstream.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		raw, err := up.FeaturedProducts(ctx)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, raw, http.StatusOK)
	}
}
