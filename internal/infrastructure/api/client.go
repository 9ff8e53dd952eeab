package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"

	"github.com/yuzvak/storefront-cart/internal/config"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// Client talks to the sweets API. It serves as the purchase service during
// checkout and as the catalog for the CLI.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *logger.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(cfg config.APIConfig, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		logger:  log,
		http: &http.Client{
			Timeout: cfg.Timeout.Std(),
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type tokenKey struct{}

// WithToken attaches a bearer token for calls made with ctx. It takes
// precedence over the configured token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token
	}
	return c.token
}

// Error is a non-2xx answer from the API. It unwraps to the domain error
// the status maps to.
type Error struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.kind, e.StatusCode, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.kind
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, out interface{}, onBadRequest error) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	end := monitoring.TimePurchaseCall(endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		end("error")
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	end(strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, onBadRequest)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w: %s: %v", domainErrors.ErrUpstream, errUndecodableBody, endpoint, err)
	}

	return nil
}

// errUndecodableBody marks a 2xx answer whose body could not be decoded.
var errUndecodableBody = errors.New("undecodable response body")

// classifyTransportError separates an unreachable service from a single
// call that went wrong after the connection was made, or timed out.
func classifyTransportError(err error) error {
	if isUnreachable(err) {
		return fmt.Errorf("%w: %w", domainErrors.ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: %w", domainErrors.ErrUnitPurchaseFailed, err)
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout() {
		return true
	}

	return false
}

func statusError(resp *http.Response, onBadRequest error) error {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	detail := ""
	if json.Unmarshal(raw, &payload) == nil && len(payload.Detail) > 0 {
		var text string
		if json.Unmarshal(payload.Detail, &text) == nil {
			detail = text
		} else {
			detail = string(payload.Detail)
		}
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		kind = onBadRequest
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		kind = domainErrors.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = domainErrors.ErrItemNotFound
	default:
		kind = domainErrors.ErrUpstream
	}

	return &Error{StatusCode: resp.StatusCode, Detail: detail, kind: kind}
}
