// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SessionResult is the response to a session-creation call.
type SessionResult struct {
	ClientSecret string `json:"clientSecret"`
	SessionID    string `json:"sessionId"`
}

// SessionState is the backend's view of a checkout session after the
// customer returns from the provider.
type SessionState struct {
	ID                  string `json:"id"`
	Status              string `json:"status"`
	PaymentStatus       string `json:"payment_status"`
	PaymentIntentID     string `json:"payment_intent_id"`
	PaymentIntentStatus string `json:"payment_intent_status"`
}

// Client calls the site backend's checkout endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. An empty base URL targets the
// current host; httpClient may be nil for a default with a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// CreateSession exchanges a session request for a client secret. A non-OK
// response surfaces the server's error message when it provides one.
func (c *Client) CreateSession(ctx context.Context, payload SessionRequest) (*SessionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result SessionResult
	if err := c.do(req, "Unable to prepare checkout.", &result); err != nil {
		return nil, err
	}
	if result.ClientSecret == "" {
		return nil, fmt.Errorf("checkout: provider did not return a client secret")
	}
	return &result, nil
}

// SessionStatus retrieves the current state of a session by id.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*SessionState, error) {
	endpoint := c.baseURL + "/session-status?session_id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var state SessionState
	if err := c.do(req, "Unable to retrieve checkout session.", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SavePhone persists the customer's phone number against a session,
// best-effort metadata used for fulfillment.
func (c *Client) SavePhone(ctx context.Context, sessionID, phone string) error {
	body, err := json.Marshal(map[string]string{"phoneNumber": phone})
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/checkout-session/" + url.PathEscape(sessionID) + "/phone"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "Unable to save phone number.", nil)
}

// do executes the request and decodes a JSON body into out. Non-2xx
// responses become errors carrying the server's "error" field when
// present, else the fallback message.
func (c *Client) do(req *http.Request, fallback string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("checkout: %s", payload.Error)
		}
		return fmt.Errorf("checkout: %s", fallback)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("checkout: decoding response: %w", err)
	}
	return nil
}
