package config

import "time"

type Config struct {
	Web      Web
	Cors     Cors
	DB       DB
	Session  Session
	Upstream Upstream
	Pricing  Pricing
	Login    Login
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:3000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost"`
	Name         string `conf:"default:storefront"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:10"`
	DisableTLS   bool   `conf:"default:true"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}

type Upstream struct {
	URL     string        `conf:"default:http://localhost:8000/api"`
	Timeout time.Duration `conf:"default:10s"`
}

// Pricing mirrors the store's posted policy: 18% GST and free shipping from
// ₹499, flat ₹50 below it. Amounts are paise, the rate is basis points.
type Pricing struct {
	TaxRateBP             int64 `conf:"default:1800"`
	FreeShippingThreshold int64 `conf:"default:49900"`
	FlatShippingFee       int64 `conf:"default:5000"`
}

type Login struct {
	Burst  int           `conf:"default:5"`
	RPS    float64       `conf:"default:0.5"`
	Expiry time.Duration `conf:"default:15m"`
}
