// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package checkout

import (
	"context"
	"errors"
	"regexp"
	"sync"
)

// State is the position of a checkout flow.
type State int

const (
	StateSelecting State = iota
	StateRequestingSecret
	StateAwaitingDetails
	StateConfirming
	StateRedirecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateRequestingSecret:
		return "requesting-secret"
	case StateAwaitingDetails:
		return "awaiting-details"
	case StateConfirming:
		return "confirming"
	case StateRedirecting:
		return "redirecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend is the slice of the site API the flow needs.
type Backend interface {
	CreateSession(ctx context.Context, payload SessionRequest) (*SessionResult, error)
	SavePhone(ctx context.Context, sessionID, phone string) error
}

// Details are the customer inputs gathered before confirmation. Shipping
// completeness is delegated to the embedded address widget's own signal;
// payment-method validity is not tracked here at all and is left for the
// provider to reject at confirm time.
type Details struct {
	Email            string
	Phone            string
	ShippingComplete bool
}

// Snapshot is a point-in-time copy of the flow's observable state.
type Snapshot struct {
	State          State
	SelectedOption string
	ClientSecret   string
	SessionID      string
	Message        string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgEmailMissing  = "Enter your email address."
	msgEmailInvalid  = "Enter a valid email address."
	msgShipping      = "Enter your shipping address."
	msgPhoneSave     = "Unable to save phone number."
	msgPhoneSync     = "Unable to sync phone number."
	msgConfirmFailed = "Something went wrong. Please try again."
)

// Flow drives one customer's checkout through its states. Selection
// triggers a client-secret fetch that is single-flight per option with
// last-write-wins: selecting a new option aborts the previous fetch, and a
// stale response can never overwrite a newer selection.
type Flow struct {
	cfg      Config
	api      Backend
	provider Provider

	mu           sync.Mutex
	wg           sync.WaitGroup
	state        State
	selected     string
	clientSecret string
	sessionID    string
	message      string
	generation   int
	cancel       context.CancelFunc
}

// NewFlow creates a flow over the checkout configuration. The initially
// selected option follows DefaultOptionID with the given forced id; the
// secret fetch still waits for an explicit Select.
func NewFlow(cfg Config, api Backend, provider Provider, forced string) *Flow {
	return &Flow{
		cfg:      cfg,
		api:      api,
		provider: provider,
		state:    StateSelecting,
		selected: DefaultOptionID(cfg.Options, forced),
	}
}

// Snapshot returns a copy of the current observable state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:          f.state,
		SelectedOption: f.selected,
		ClientSecret:   f.clientSecret,
		SessionID:      f.sessionID,
		Message:        f.message,
	}
}

// Select switches to the option with the given id and starts fetching its
// client secret. Any in-flight fetch for a previous selection is aborted
// first. Re-selecting the option whose secret is already held is a no-op.
func (f *Flow) Select(ctx context.Context, optionID string) {
	opt := OptionByID(f.cfg.Options, optionID)
	if opt == nil {
		return
	}

	f.mu.Lock()
	if f.selected == optionID && f.clientSecret != "" {
		f.mu.Unlock()
		return
	}

	f.generation++
	gen := f.generation
	if f.cancel != nil {
		f.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.selected = optionID
	f.clientSecret = ""
	f.sessionID = ""
	f.state = StateRequestingSecret
	payload := BuildPayload(f.cfg, opt, "")
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		result, err := f.api.CreateSession(reqCtx, payload)

		f.mu.Lock()
		defer f.mu.Unlock()
		// Only the most recent request may commit its result.
		if gen != f.generation || reqCtx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.state = StateSelecting
			f.message = err.Error()
			return
		}
		f.clientSecret = result.ClientSecret
		f.sessionID = result.SessionID
		f.message = ""
		f.state = StateAwaitingDetails
	}()
}

// Wait blocks until any in-flight secret fetch settles.
func (f *Flow) Wait() {
	f.wg.Wait()
}

// Reset returns to option selection, discarding the held secret and
// aborting any in-flight fetch.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.clientSecret = ""
	f.sessionID = ""
	f.message = ""
	f.state = StateSelecting
}

// Submit validates the collected details and confirms the payment. On a
// validation failure the flow stays in AwaitingPaymentDetails with the
// message set and the provider is never called; a confirm-time provider
// error moves to Failed; success moves to Redirecting, where the provider
// drives navigation to the return URL.
func (f *Flow) Submit(ctx context.Context, details Details) error {
	f.mu.Lock()
	if f.state != StateAwaitingDetails {
		f.mu.Unlock()
		return errors.New("checkout: no session awaiting details")
	}
	f.state = StateConfirming
	f.message = ""
	sessionID := f.sessionID
	f.mu.Unlock()

	if msg := validateEmail(details.Email); msg != "" {
		return f.fail(StateAwaitingDetails, msg)
	}

	// Best-effort: email lives on the provider session for receipts, but
	// a sync failure alone never blocks the purchase.
	_ = f.provider.UpdateEmail(ctx, details.Email)

	if !details.ShippingComplete {
		return f.fail(StateAwaitingDetails, msgShipping)
	}

	if err := f.api.SavePhone(ctx, sessionID, details.Phone); err != nil && details.Phone != "" {
		return f.fail(StateAwaitingDetails, msgPhoneSave)
	}

	var metadata map[string]string
	if details.Phone != "" {
		if err := f.provider.UpdatePhoneNumber(ctx, details.Phone); err != nil && !phoneCollectionDisabled(err) {
			return f.fail(StateAwaitingDetails, msgPhoneSync)
		}
		metadata = map[string]string{
			"customer_phone": details.Phone,
			"phone_number":   details.Phone,
		}
	}

	if err := f.provider.Confirm(ctx, metadata); err != nil {
		msg := msgConfirmFailed
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Message != "" {
			msg = pe.Message
		}
		return f.fail(StateFailed, msg)
	}

	f.mu.Lock()
	f.state = StateRedirecting
	f.mu.Unlock()
	return nil
}

func (f *Flow) fail(state State, msg string) error {
	f.mu.Lock()
	f.state = state
	f.message = msg
	f.mu.Unlock()
	return errors.New(msg)
}

func validateEmail(email string) string {
	if email == "" {
		return msgEmailMissing
	}
	if !emailPattern.MatchString(email) {
		return msgEmailInvalid
	}
	return ""
}
