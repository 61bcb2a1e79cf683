// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package stripe is a minimal client for the Stripe Checkout Sessions REST
// API. It covers exactly the calls this site makes: creating a custom-mode
// session, retrieving it with the payment intent expanded, and attaching
// metadata. Requests are form-encoded per Stripe's API conventions.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://api.stripe.com"

	sessionsPath = "/v1/checkout/sessions"
)

// Client calls the Stripe API with a fixed secret key.
type Client struct {
	secretKey  string
	baseURL    string
	apiVersion string
	http       *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, used in tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithAPIVersion pins the Stripe-Version request header.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// NewClient creates a client for the given secret key.
func NewClient(secretKey string, opts ...Option) *Client {
	c := &Client{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LineItem is one purchasable line of a session. Either PriceID references
// a provider-managed price, or the inline price data fields describe an
// ad-hoc one.
type LineItem struct {
	PriceID     string
	Quantity    int
	Currency    string
	UnitAmount  int64
	ProductName string
}

// CreateSessionParams describe a custom-mode checkout session.
type CreateSessionParams struct {
	LineItems    []LineItem
	ReturnURL    string
	Metadata     map[string]string
	AutomaticTax bool
}

// Session is the subset of a checkout session this site reads.
type Session struct {
	ID            string         `json:"id"`
	ClientSecret  string         `json:"client_secret"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	PaymentIntent *PaymentIntent `json:"payment_intent"`
}

// PaymentIntent is the expanded payment intent on a retrieved session.
type PaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Error is a structured Stripe API failure.
type Error struct {
	StatusCode int
	Type       string `json:"type"`
	Code       string `json:"code"`
	Param      string `json:"param"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return "stripe: " + e.Message
	}
	return fmt.Sprintf("stripe: request failed with status %d", e.StatusCode)
}

// CreateCheckoutSession creates a payment session in custom UI mode, card
// only, with the given line items and return URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("ui_mode", "custom")
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("return_url", params.ReturnURL)

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		if item.PriceID != "" {
			form.Set(prefix+"[price]", item.PriceID)
			continue
		}
		form.Set(prefix+"[price_data][currency]", item.Currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.ProductName)
	}

	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	if params.AutomaticTax {
		form.Set("automatic_tax[enabled]", "true")
	}

	req, err := c.newRequest(ctx, http.MethodPost, sessionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Stripe deduplicates retried creates by idempotency key, so a network
	// retry never double-charges.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	var session Session
	if err := c.send(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession retrieves a session with its payment intent expanded.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	endpoint := sessionsPath + "/" + url.PathEscape(sessionID) + "?expand[]=payment_intent"
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := c.send(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSessionMetadata attaches metadata keys to an existing session.
func (c *Client) UpdateSessionMetadata(ctx context.Context, sessionID string, metadata map[string]string) error {
	form := url.Values{}
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}
	return c.post(ctx, sessionsPath+"/"+url.PathEscape(sessionID), form, nil)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if c.apiVersion != "" {
		req.Header.Set("Stripe-Version", c.apiVersion)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stripe: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("stripe: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var wrapper struct {
			Error Error `json:"error"`
		}
		if json.Unmarshal(body, &wrapper) == nil && (wrapper.Error.Message != "" || wrapper.Error.Type != "") {
			apiErr := wrapper.Error
			apiErr.StatusCode = resp.StatusCode
			return &apiErr
		}
		return &Error{StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("stripe: decoding response: %w", err)
	}
	return nil
}
