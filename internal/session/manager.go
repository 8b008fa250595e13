/**
 * Copyright 2025-present Pocket Wallet, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"
)

var ErrSessionExpired = errors.New("session expired")

// Manager issues and validates opaque session tokens. Sessions carry an
// absolute expiry and are never refreshed in place: re-verification deletes
// the user's existing sessions and issues a fresh one.
type Manager struct {
	store store.MirrorStore
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(mirror store.MirrorStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{store: mirror, ttl: ttl, now: time.Now}
}

// Issue replaces any existing sessions for the user with a new one.
func (m *Manager) Issue(ctx context.Context, userId, ipAddress, userAgent string) (*models.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	if err := m.store.DeleteUserSessions(ctx, userId); err != nil {
		return nil, fmt.Errorf("failed to replace sessions: %w", err)
	}

	session, err := m.store.CreateSession(ctx, store.CreateSessionParams{
		UserId:    userId,
		Token:     token,
		IpAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: m.now().Add(m.ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Validate resolves a token to its session, rejecting expired ones.
func (m *Manager) Validate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, store.ErrSessionNotFound
	}

	session, err := m.store.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(m.now()) {
		return nil, ErrSessionExpired
	}

	return session, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
