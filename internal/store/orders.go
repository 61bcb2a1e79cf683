// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrOrderNotFound is returned when no order matches the lookup.
var ErrOrderNotFound = errors.New("store: order not found")

// Order is one checkout session tracked locally: created when a session is
// opened, updated as the customer progresses, reconciled on return.
type Order struct {
	ID              string
	SessionID       string
	OptionID        string
	OptionName      string
	Amount          int64
	Currency        string
	Quantity        int
	Email           string
	Phone           string
	Status          string
	PaymentStatus   string
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderStore persists orders in SQLite.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore creates an order store over the database.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create inserts a new order. A missing ID is assigned a fresh ULID, which
// keeps ids lexically ordered by creation time.
func (s *OrderStore) Create(ctx context.Context, order *Order) error {
	if order.ID == "" {
		order.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = "open"
	}
	if order.Quantity <= 0 {
		order.Quantity = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, session_id, option_id, option_name, amount, currency, quantity,
			email, phone, status, payment_status, payment_intent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.SessionID, order.OptionID, order.OptionName, order.Amount, order.Currency,
		order.Quantity, order.Email, order.Phone, order.Status, order.PaymentStatus,
		order.PaymentIntentID, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

// BySession returns the order tracking a checkout session.
func (s *OrderStore) BySession(ctx context.Context, sessionID string) (*Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, option_id, option_name, amount, currency, quantity,
			email, phone, status, payment_status, payment_intent_id, created_at, updated_at
		FROM orders WHERE session_id = ?`, sessionID)

	var order Order
	err := row.Scan(&order.ID, &order.SessionID, &order.OptionID, &order.OptionName,
		&order.Amount, &order.Currency, &order.Quantity, &order.Email, &order.Phone,
		&order.Status, &order.PaymentStatus, &order.PaymentIntentID,
		&order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}
	return &order, nil
}

// SetStatus records the provider's view of the session on its order.
func (s *OrderStore) SetStatus(ctx context.Context, sessionID, status, paymentStatus, paymentIntentID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, payment_status = ?, payment_intent_id = ?, updated_at = ?
		WHERE session_id = ?`,
		status, paymentStatus, paymentIntentID, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	return s.requireRow(res)
}

// SetPhone records the customer's phone number on the session's order.
func (s *OrderStore) SetPhone(ctx context.Context, sessionID, phone string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET phone = ?, updated_at = ? WHERE session_id = ?`,
		phone, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("updating order phone: %w", err)
	}
	return s.requireRow(res)
}

// PruneStale deletes orders still open past the cutoff, sessions the
// customer abandoned without paying.
func (s *OrderStore) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM orders WHERE status = 'open' AND created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning stale orders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned orders: %w", err)
	}
	return n, nil
}

func (s *OrderStore) requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
