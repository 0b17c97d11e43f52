package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/prakash4830/dry-fruits-ecommerce/api/web"
	"github.com/prakash4830/dry-fruits-ecommerce/api/weberr"
	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
	"github.com/prakash4830/dry-fruits-ecommerce/core/guest"
	"github.com/prakash4830/dry-fruits-ecommerce/core/upstream"
	"github.com/prakash4830/dry-fruits-ecommerce/rate"
	"github.com/prakash4830/dry-fruits-ecommerce/validate"
	"github.com/sirupsen/logrus"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Signup struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,gte=8,lte=64"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// sessionResponse is what login and signup return: the shopper plus, when
// the merge protocol succeeded, the authoritative cart. A failed merge is
// not distinguishable here; the guest cart simply survives for a retry.
type sessionResponse struct {
	User upstream.User  `json:"user"`
	Cart *cart.Snapshot `json:"cart,omitempty"`
}

func HandleLogin(up *upstream.Client, session *scs.SessionManager, g *guest.Store, limiter *rate.Limiter, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Credentials
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if !limiter.Check(in.Email) {
			err := errors.New("too many login attempts")
			return weberr.NewError(err, err.Error(), http.StatusTooManyRequests)
		}

		usr, tok, err := up.Login(ctx, in.Email, in.Password)
		if err != nil {
			return fmt.Errorf("upstream login: %w", err)
		}

		if err := establishSession(ctx, session, usr, tok); err != nil {
			return err
		}

		resp := sessionResponse{User: usr}
		resp.Cart = mergeGuestCart(ctx, session, g, up, tok, log)

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleSignup(up *upstream.Client, session *scs.SessionManager, g *guest.Store, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Signup
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		usr, tok, err := up.Register(ctx, upstream.Registration{
			Email:     in.Email,
			Password:  in.Password,
			FirstName: in.FirstName,
			LastName:  in.LastName,
		})
		if err != nil {
			return fmt.Errorf("upstream registration: %w", err)
		}

		// Registration logs the shopper straight in, so the guest cart
		// merges here exactly as it does on login.
		if err := establishSession(ctx, session, usr, tok); err != nil {
			return err
		}

		resp := sessionResponse{User: usr}
		resp.Cart = mergeGuestCart(ctx, session, g, up, tok, log)

		return web.Respond(ctx, w, resp, http.StatusCreated)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleMerge re-runs the merge protocol for an authenticated shopper whose
// guest cart survived a failed merge at login time.
func HandleMerge(up *upstream.Client, session *scs.SessionManager, g *guest.Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		tok := tokenFromSession(ctx, session)
		gc := g.Bind(session.GetString(ctx, sessCartID))
		remote := upstream.NewCartBackend(up, tok, persistToken(session))

		snap, err := cart.Merge(ctx, gc, remote)
		if err != nil {
			return fmt.Errorf("merging guest cart: %w", err)
		}

		session.Remove(ctx, sessCartID)

		return web.Respond(ctx, w, snap, http.StatusOK)
	}
}

func establishSession(ctx context.Context, session *scs.SessionManager, usr upstream.User, tok upstream.Token) error {
	// Fresh token on privilege change.
	if err := session.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}

	session.Put(ctx, sessUserID, usr.ID)
	session.Put(ctx, sessEmail, usr.Email)
	session.Put(ctx, sessAccess, tok.Access)
	session.Put(ctx, sessRefresh, tok.Refresh)
	return nil
}

// mergeGuestCart runs the merge protocol and absorbs its failure: login
// never fails because the merge did. On success the guest cart id leaves the
// session; on failure both the id and the durable record stay for a retry.
func mergeGuestCart(ctx context.Context, session *scs.SessionManager, g *guest.Store, up *upstream.Client, tok upstream.Token, log logrus.FieldLogger) *cart.Snapshot {
	gc := g.Bind(session.GetString(ctx, sessCartID))
	remote := upstream.NewCartBackend(up, tok, persistToken(session))

	snap, err := cart.Merge(ctx, gc, remote)
	if err != nil {
		log.Warnf("guest cart merge failed, keeping guest cart: %v", err)
		return nil
	}

	session.Remove(ctx, sessCartID)
	return &snap
}
