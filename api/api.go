package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prakash4830/dry-fruits-ecommerce/api/middleware"
	"github.com/prakash4830/dry-fruits-ecommerce/api/web"
	"github.com/prakash4830/dry-fruits-ecommerce/core/auth"
	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
	"github.com/prakash4830/dry-fruits-ecommerce/core/catalog"
	"github.com/prakash4830/dry-fruits-ecommerce/core/checkout"
	"github.com/prakash4830/dry-fruits-ecommerce/core/guest"
	"github.com/prakash4830/dry-fruits-ecommerce/core/order"
	"github.com/prakash4830/dry-fruits-ecommerce/core/upstream"
	"github.com/prakash4830/dry-fruits-ecommerce/database"
	"github.com/prakash4830/dry-fruits-ecommerce/rate"
	"github.com/sirupsen/logrus"
)

type Config struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Session    *scs.SessionManager
	Guest      *guest.Store
	Upstream   *upstream.Client
	Policy     cart.Policy
	LoginLimit *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func Mux(cfg Config) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	sel := &auth.Selector{Session: cfg.Session, Guest: cfg.Guest, Upstream: cfg.Upstream}
	authen := auth.Authenticate(cfg.Session)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.Upstream, cfg.Session, cfg.Guest, cfg.Log))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.Upstream, cfg.Session, cfg.Guest, cfg.LoginLimit, cfg.Log))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(sel))
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(sel))
	a.Handle(http.MethodPost, "/cart/items", cart.HandleAddItem(sel))
	a.Handle(http.MethodPut, "/cart/items/{id}", cart.HandleUpdateItem(sel))
	a.Handle(http.MethodDelete, "/cart/items/{id}", cart.HandleDeleteItem(sel))
	a.Handle(http.MethodPost, "/cart/merge", auth.HandleMerge(cfg.Upstream, cfg.Session, cfg.Guest), authen)

	a.Handle(http.MethodPost, "/checkout/quote", checkout.HandleQuote(sel, cfg.Upstream, cfg.Policy))

	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(sel), authen)
	a.Handle(http.MethodGet, "/orders", order.HandleList(sel), authen)

	a.Handle(http.MethodGet, "/products/featured", catalog.HandleFeatured(cfg.Upstream))
	a.Handle(http.MethodGet, "/products/{slug}", catalog.HandleShow(cfg.Upstream))
	a.Handle(http.MethodGet, "/products", catalog.HandleList(cfg.Upstream))

	a.Handle(http.MethodGet, "/health", health(cfg.DB))

	return cfg.Session.LoadAndSave(a.Router)
}

func health(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		status := "ok"
		statusCode := http.StatusOK
		if err := database.StatusCheck(ctx, db); err != nil {
			status = "db not ready"
			statusCode = http.StatusInternalServerError
		}

		h := struct {
			Status string `json:"status"`
		}{
			Status: status,
		}

		return web.Respond(ctx, w, h, statusCode)
	}
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
