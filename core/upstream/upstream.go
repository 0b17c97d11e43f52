// Package upstream is the thin client for the external store API. It owns
// no cart logic: authenticated carts, catalog data and coupon validation all
// come back from the upstream fully computed.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prakash4830/dry-fruits-ecommerce/api/weberr"
	"github.com/sirupsen/logrus"
)

type Config struct {
	URL     string
	Timeout time.Duration
}

type Client struct {
	base *url.URL
	http *http.Client
	log  logrus.FieldLogger
}

func New(cfg Config, log logrus.FieldLogger) (*Client, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream url: %w", err)
	}

	return &Client{
		base: base,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}, nil
}

// Token carries the bearer credentials of an authenticated shopper.
type Token struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type errorPayload struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (p errorPayload) message() string {
	if p.Error != "" {
		return p.Error
	}
	return p.Detail
}

// do performs one upstream round-trip. Client errors (4xx) surface the
// upstream's own message with the upstream's status; server and transport
// errors stay unwrapped and reach the client as a generic failure. No call
// is retried here.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, tok *Token, header http.Header, in, out interface{}) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()

	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if tok != nil && tok.Access != "" {
		req.Header.Set("Authorization", "Bearer "+tok.Access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling upstream %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload errorPayload
		_ = json.NewDecoder(resp.Body).Decode(&payload)

		err := fmt.Errorf("upstream %s %s responded %d: %s", method, path, resp.StatusCode, payload.message())
		fields := weberr.WithFields(map[string]interface{}{
			"upstream_method": method,
			"upstream_path":   path,
			"upstream_status": resp.StatusCode,
		})
		if resp.StatusCode == http.StatusUnauthorized {
			return weberr.NotAuthorized(err, fields)
		}
		if resp.StatusCode < http.StatusInternalServerError && payload.message() != "" {
			return weberr.NewError(err, payload.message(), resp.StatusCode, fields)
		}
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding upstream response: %w", err)
	}
	return nil
}

// doAuth is do plus one transparent token refresh: a 401 triggers a single
// refresh-and-retry, and the renewed token is pushed through onRefresh so
// the session can persist it.
func (c *Client) doAuth(ctx context.Context, method, path string, tok *Token, onRefresh func(context.Context, Token), header http.Header, in, out interface{}) error {
	err := c.do(ctx, method, path, nil, tok, header, in, out)
	if !isUnauthorized(err) || tok == nil || tok.Refresh == "" {
		return err
	}

	access, rerr := c.RefreshToken(ctx, tok.Refresh)
	if rerr != nil {
		c.log.Infof("upstream token refresh failed: %v", rerr)
		return err
	}

	tok.Access = access
	if onRefresh != nil {
		onRefresh(ctx, *tok)
	}

	return c.do(ctx, method, path, nil, tok, header, in, out)
}

func isUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if _, status, ok := weberr.Response(err); ok {
		return status == http.StatusUnauthorized
	}
	return false
}

// get is the unauthenticated passthrough used by the catalog handlers.
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, query, nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("empty upstream response")
	}
	return raw, nil
}
