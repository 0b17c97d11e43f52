package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/prakash4830/dry-fruits-ecommerce/api"
	"github.com/prakash4830/dry-fruits-ecommerce/config"
	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
	"github.com/prakash4830/dry-fruits-ecommerce/core/guest"
	"github.com/prakash4830/dry-fruits-ecommerce/core/upstream"
	"github.com/prakash4830/dry-fruits-ecommerce/database"
	"github.com/prakash4830/dry-fruits-ecommerce/rate"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting storefront server")
	defer logger.Info("shutdown complete")

	const prefix = "STOREFRONT"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(database.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	up, err := upstream.New(upstream.Config{
		URL:     cfg.Upstream.URL,
		Timeout: cfg.Upstream.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to build the upstream client: %w", err)
	}

	policy := cart.Policy{
		TaxRateBP:             cfg.Pricing.TaxRateBP,
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		FlatShippingFee:       cfg.Pricing.FlatShippingFee,
	}

	guestStore := guest.NewStore(guest.NewPostgresStorage(db), policy, logger)

	loginLimit := rate.NewLimiter(cfg.Login.Burst, cfg.Login.Expiry, cfg.Login.RPS)

	mux := api.Mux(api.Config{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		DB:         db,
		Session:    sessionManager,
		Guest:      guestStore,
		Upstream:   up,
		Policy:     policy,
		LoginLimit: loginLimit,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
