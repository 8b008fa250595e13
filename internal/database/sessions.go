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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) CreateSession(ctx context.Context, params store.CreateSessionParams) (*models.Session, error) {
	if params.UserId == "" || params.Token == "" {
		return nil, fmt.Errorf("%w: user id and token are required", store.ErrInvalidArgument)
	}

	var session models.Session
	err := s.db.QueryRowContext(ctx, queryInsertSession,
		uuid.New().String(), params.UserId, params.Token,
		params.IpAddress, params.UserAgent, params.ExpiresAt).Scan(
		&session.Id, &session.UserId, &session.Token,
		&session.IpAddress, &session.UserAgent, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		zap.L().Error("Failed to insert session", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to insert session: %w", err)
	}

	zap.L().Info("Session created",
		zap.String("session_id", session.Id),
		zap.String("user_id", session.UserId),
		zap.Time("expires_at", session.ExpiresAt))
	return &session, nil
}

func (s *Service) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := s.db.QueryRowContext(ctx, queryGetSessionByToken, token).Scan(
		&session.Id, &session.UserId, &session.Token,
		&session.IpAddress, &session.UserAgent, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		zap.L().Error("Failed to query session", zap.Error(err))
		return nil, fmt.Errorf("unable to query session: %w", err)
	}
	return &session, nil
}

func (s *Service) DeleteUserSessions(ctx context.Context, userId string) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteUserSessions, userId); err != nil {
		zap.L().Error("Failed to delete user sessions", zap.String("user_id", userId), zap.Error(err))
		return fmt.Errorf("unable to delete user sessions: %w", err)
	}
	return nil
}
