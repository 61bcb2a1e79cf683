// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: pruning abandoned
// checkout orders and trimming the event log.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/landingpress/internal/store"
)

// Config sets the retention windows for the maintenance jobs.
type Config struct {
	// StaleOrderMaxAge is how long an order may stay open before the
	// abandoned session is pruned.
	StaleOrderMaxAge time.Duration
	// EventLogRetention is how much event history to keep.
	EventLogRetention time.Duration
}

// DefaultConfig returns the default retention windows.
func DefaultConfig() Config {
	return Config{
		StaleOrderMaxAge:  24 * time.Hour,
		EventLogRetention: 30 * 24 * time.Hour,
	}
}

// Scheduler handles the periodic cleanup tasks.
type Scheduler struct {
	orders *store.OrderStore
	events *store.EventStore
	cron   *cron.Cron
	logger *slog.Logger
	cfg    Config
}

// New creates a new scheduler instance.
func New(orders *store.OrderStore, events *store.EventStore, logger *slog.Logger, cfg Config) *Scheduler {
	if cfg.StaleOrderMaxAge <= 0 {
		cfg.StaleOrderMaxAge = DefaultConfig().StaleOrderMaxAge
	}
	if cfg.EventLogRetention <= 0 {
		cfg.EventLogRetention = DefaultConfig().EventLogRetention
	}
	return &Scheduler{
		orders: orders,
		events: events,
		cron:   cron.New(),
		logger: logger,
		cfg:    cfg,
	}
}

// Start registers the cleanup jobs: stale orders hourly, event log daily.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.PruneStaleOrders(context.Background()); err != nil {
			s.logger.Error("failed to prune stale orders", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.PruneEventLog(context.Background()); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneStaleOrders deletes orders still open past the retention window.
func (s *Scheduler) PruneStaleOrders(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.StaleOrderMaxAge)
	n, err := s.orders.PruneStale(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned stale orders", "count", n, "cutoff", cutoff)
	}
	return nil
}

// PruneEventLog deletes event log entries past the retention window.
func (s *Scheduler) PruneEventLog(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.EventLogRetention)
	n, err := s.events.Prune(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned event log", "count", n, "cutoff", cutoff)
	}
	return nil
}
