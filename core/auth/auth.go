// Package auth owns the session: who is logged in, which upstream tokens
// they hold, and which cart backend serves them.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/prakash4830/dry-fruits-ecommerce/api/web"
	"github.com/prakash4830/dry-fruits-ecommerce/api/weberr"
	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
	"github.com/prakash4830/dry-fruits-ecommerce/core/claims"
	"github.com/prakash4830/dry-fruits-ecommerce/core/guest"
	"github.com/prakash4830/dry-fruits-ecommerce/core/order"
	"github.com/prakash4830/dry-fruits-ecommerce/core/upstream"
	"github.com/prakash4830/dry-fruits-ecommerce/validate"
)

// Session keys. The guest cart id survives a failed merge on purpose: the
// durable guest record is only forgotten once the merge protocol completes.
const (
	sessUserID  = "user_id"
	sessEmail   = "user_email"
	sessAccess  = "access_token"
	sessRefresh = "refresh_token"
	sessCartID  = "guest_cart_id"
)

// Authenticate rejects requests without a logged-in session and loads the
// shopper's claims into the context.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := session.GetString(ctx, sessUserID)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("no authenticated session"))
			}

			ctx = claims.Set(ctx, claims.Claims{
				UserID: userID,
				Email:  session.GetString(ctx, sessEmail),
			})

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Selector picks the cart backend for the current session: the server cart
// for authenticated shoppers, the durable guest cart for everyone else.
type Selector struct {
	Session  *scs.SessionManager
	Guest    *guest.Store
	Upstream *upstream.Client
}

func (s *Selector) Backend(ctx context.Context) (cart.Backend, error) {
	if s.Session.GetString(ctx, sessUserID) != "" {
		return s.serverBackend(ctx), nil
	}
	return s.Guest.Bind(s.guestCartID(ctx)), nil
}

// History is the order.Selector side: order reads always need an
// authenticated session, there is no guest order history.
func (s *Selector) History(ctx context.Context) (order.Source, error) {
	if s.Session.GetString(ctx, sessUserID) == "" {
		return nil, weberr.NotAuthorized(errors.New("no authenticated session"))
	}

	tok := tokenFromSession(ctx, s.Session)
	return upstream.NewOrderHistory(s.Upstream, tok, persistToken(s.Session)), nil
}

func (s *Selector) serverBackend(ctx context.Context) *upstream.CartBackend {
	tok := tokenFromSession(ctx, s.Session)
	return upstream.NewCartBackend(s.Upstream, tok, persistToken(s.Session))
}

// guestCartID mints the visitor's cart id on first use so the guest cart has
// a stable storage key across reloads.
func (s *Selector) guestCartID(ctx context.Context) string {
	id := s.Session.GetString(ctx, sessCartID)
	if id == "" {
		id = validate.GenerateID()
		s.Session.Put(ctx, sessCartID, id)
	}
	return id
}

func tokenFromSession(ctx context.Context, session *scs.SessionManager) upstream.Token {
	return upstream.Token{
		Access:  session.GetString(ctx, sessAccess),
		Refresh: session.GetString(ctx, sessRefresh),
	}
}

// persistToken keeps the session's access token current after a transparent
// refresh inside the upstream client.
func persistToken(session *scs.SessionManager) func(context.Context, upstream.Token) {
	return func(ctx context.Context, tok upstream.Token) {
		session.Put(ctx, sessAccess, tok.Access)
	}
}
