package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prakash4830/dry-fruits-ecommerce/api/weberr"
	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
	"github.com/sirupsen/logrus"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	c, err := New(Config{URL: srv.URL}, log)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return c
}

func TestBackendGet(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/cart/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		json.NewEncoder(w).Encode(wireCart{
			Items: []wireItem{{
				ID:        "42",
				Product:   cart.ProductRef{ID: "p1", Name: "Pistachios", UnitPrice: 60000},
				Quantity:  2,
				UnitPrice: 60000,
				LineTotal: 120000,
			}},
			Subtotal: 120000,
			Tax:      21600,
			Shipping: 0,
			Total:    141600,
		})
	})

	b := NewCartBackend(c, Token{Access: "access-1", Refresh: "refresh-1"}, nil)

	got, err := b.Get(context.Background())
	if err != nil {
		t.Fatalf("fetching cart: %v", err)
	}

	want := cart.Snapshot{
		Items: []cart.LineItem{{
			ID:        "42",
			Product:   cart.ProductRef{ID: "p1", Name: "Pistachios", UnitPrice: 60000},
			Quantity:  2,
			UnitPrice: 60000,
			LineTotal: 120000,
		}},
		Subtotal: 120000,
		Tax:      21600,
		Shipping: 0,
		Total:    141600,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected snapshot (-want +got):\n%s", diff)
	}
}

func TestBackendAddItemSendsMergeKey(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cart/add/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "key-1" {
			t.Fatalf("unexpected idempotency key %q", got)
		}

		var in struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if in.ProductID != "p1" || in.Quantity != 3 {
			t.Fatalf("unexpected body %+v", in)
		}

		json.NewEncoder(w).Encode(cartEnvelope{
			Message: "Item added to cart",
			Cart:    wireCart{Subtotal: 100, Total: 100},
		})
	})

	b := NewCartBackend(c, Token{Access: "access-1"}, nil)

	got, err := b.AddItem(context.Background(), "p1", 3, "key-1")
	if err != nil {
		t.Fatalf("adding item: %v", err)
	}
	if got.Total != 100 {
		t.Fatalf("envelope cart was not unwrapped, got %+v", got)
	}
}

func TestClientSurfacesUpstreamMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "product out of stock"})
	})

	b := NewCartBackend(c, Token{Access: "access-1"}, nil)

	_, err := b.AddItem(context.Background(), "p1", 1, "")
	if err == nil {
		t.Fatal("expected an error")
	}

	body, status, ok := weberr.Response(err)
	if !ok {
		t.Fatalf("error %v carries no client response", err)
	}
	if status != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", status)
	}
	resp, ok := body.(*weberr.ErrorResponse)
	if !ok || resp.Error != "product out of stock" {
		t.Fatalf("expected the upstream message, got %+v", body)
	}
}

func TestClientRefreshesTokenOnce(t *testing.T) {
	var cartCalls, refreshCalls int

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cart/":
			cartCalls++
			if r.Header.Get("Authorization") != "Bearer access-2" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
				return
			}
			json.NewEncoder(w).Encode(wireCart{Total: 777})

		case "/auth/refresh/":
			refreshCalls++
			var in struct {
				Refresh string `json:"refresh"`
			}
			json.NewDecoder(r.Body).Decode(&in)
			if in.Refresh != "refresh-1" {
				t.Fatalf("unexpected refresh token %q", in.Refresh)
			}
			json.NewEncoder(w).Encode(map[string]string{"access": "access-2"})

		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	var persisted *Token
	persist := func(ctx context.Context, tok Token) { persisted = &tok }

	b := NewCartBackend(c, Token{Access: "stale", Refresh: "refresh-1"}, persist)

	got, err := b.Get(context.Background())
	if err != nil {
		t.Fatalf("fetching cart after refresh: %v", err)
	}

	if got.Total != 777 {
		t.Fatalf("expected the retried response, got %+v", got)
	}
	if cartCalls != 2 || refreshCalls != 1 {
		t.Fatalf("expected 2 cart calls and 1 refresh, got %d and %d", cartCalls, refreshCalls)
	}
	if persisted == nil || persisted.Access != "access-2" || persisted.Refresh != "refresh-1" {
		t.Fatalf("renewed token was not persisted, got %+v", persisted)
	}
}

func TestClientStopsAfterFailedRefresh(t *testing.T) {
	var cartCalls int

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cart/":
			cartCalls++
			w.WriteHeader(http.StatusUnauthorized)
		case "/auth/refresh/":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "refresh expired"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	b := NewCartBackend(c, Token{Access: "stale", Refresh: "dead"}, nil)

	_, err := b.Get(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if cartCalls != 1 {
		t.Fatalf("expected a single cart call, got %d", cartCalls)
	}
	if !isUnauthorized(err) {
		t.Fatalf("expected the original 401 to surface, got %v", err)
	}
}

func TestClientServerErrorStaysGeneric(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad gateway"})
	})

	_, _, err := c.Login(context.Background(), "a@b.com", "secret")
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, _, ok := weberr.Response(err); ok {
		t.Fatalf("5xx error must not carry the upstream message to clients: %v", err)
	}
}

func TestValidateCoupon(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders/validate-coupon/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var in struct {
			Code  string `json:"code"`
			Total int64  `json:"total"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if in.Code != "FESTIVE10" || in.Total != 100000 {
			t.Fatalf("unexpected body %+v", in)
		}

		json.NewEncoder(w).Encode(CouponResult{Code: "FESTIVE10", Discount: 10000})
	})

	got, err := c.ValidateCoupon(context.Background(), "FESTIVE10", 100000)
	if err != nil {
		t.Fatalf("validating coupon: %v", err)
	}
	if got.Discount != 10000 {
		t.Fatalf("expected discount 10000, got %d", got.Discount)
	}
}

func TestOrderHistoryPassthrough(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Fatalf("unexpected authorization header %q", got)
		}

		switch r.URL.Path {
		case "/orders/":
			w.Write([]byte(`[{"id":"o-1","status":"delivered"}]`))
		case "/orders/o-1/":
			w.Write([]byte(`{"id":"o-1","status":"delivered"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	h := NewOrderHistory(c, Token{Access: "access-1"}, nil)

	list, err := h.List(context.Background())
	if err != nil {
		t.Fatalf("listing orders: %v", err)
	}
	if string(list) != `[{"id":"o-1","status":"delivered"}]` {
		t.Fatalf("order list was not passed through verbatim: %s", list)
	}

	one, err := h.Get(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("fetching order: %v", err)
	}
	if string(one) != `{"id":"o-1","status":"delivered"}` {
		t.Fatalf("order was not passed through verbatim: %s", one)
	}
}

func TestProductEncodesSlugOnce(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// r.URL.Path is decoded: a double-encoded request would arrive as
		// /products/masala%20mix/ instead.
		if r.URL.Path != "/products/masala mix/" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"slug":"masala mix"}`))
	})

	if _, err := c.Product(context.Background(), "masala mix"); err != nil {
		t.Fatalf("fetching product: %v", err)
	}
}

func TestProductsForwardsQuery(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("category"); got != "nuts" {
			t.Fatalf("query was not forwarded, category=%q", got)
		}
		w.Write([]byte(`[{"slug":"almonds-500g"}]`))
	})

	raw, err := c.Products(context.Background(), url.Values{"category": {"nuts"}})
	if err != nil {
		t.Fatalf("listing products: %v", err)
	}
	if string(raw) != `[{"slug":"almonds-500g"}]` {
		t.Fatalf("payload was not passed through verbatim: %s", raw)
	}
}
