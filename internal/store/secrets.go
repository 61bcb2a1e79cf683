// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// StripeSecrets holds the per-mode secret keys. Saved separately from the
// content document: the content file is world-readable and round-trips
// through the dashboard, secrets must do neither.
type StripeSecrets struct {
	TestSecretKey string `json:"testSecretKey"`
	LiveSecretKey string `json:"liveSecretKey"`
}

// KeyForMode returns the secret for "live" or "test" mode.
func (s StripeSecrets) KeyForMode(mode string) string {
	if mode == "live" {
		return s.LiveSecretKey
	}
	return s.TestSecretKey
}

// SecretsFile persists Stripe secret keys as a JSON file with restricted
// permissions.
type SecretsFile struct {
	path string
	mu   sync.Mutex
}

// NewSecretsFile creates a store backed by the file at path.
func NewSecretsFile(path string) *SecretsFile {
	return &SecretsFile{path: path}
}

// Load reads the stored keys. A missing file yields empty keys, not an
// error: the site runs without Stripe until keys are configured.
func (s *SecretsFile) Load(_ context.Context) (StripeSecrets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return StripeSecrets{}, nil
		}
		return StripeSecrets{}, fmt.Errorf("reading secrets file: %w", err)
	}

	var secrets StripeSecrets
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return StripeSecrets{}, fmt.Errorf("parsing secrets file: %w", err)
	}
	secrets.TestSecretKey = strings.TrimSpace(secrets.TestSecretKey)
	secrets.LiveSecretKey = strings.TrimSpace(secrets.LiveSecretKey)
	return secrets, nil
}

// Save writes the keys atomically, readable only by the server's user.
func (s *SecretsFile) Save(_ context.Context, secrets StripeSecrets) error {
	secrets.TestSecretKey = strings.TrimSpace(secrets.TestSecretKey)
	secrets.LiveSecretKey = strings.TrimSpace(secrets.LiveSecretKey)

	data, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding secrets: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path, data, 0o600)
}
