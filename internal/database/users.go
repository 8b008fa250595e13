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

	"go.uber.org/zap"
)

func (s *Service) UpsertUser(ctx context.Context, params store.UpsertUserParams) (*models.User, error) {
	if params.Id == "" {
		return nil, fmt.Errorf("%w: user id is required", store.ErrInvalidArgument)
	}

	zap.L().Debug("Upserting user", zap.String("user_id", params.Id))

	var user models.User
	err := s.db.QueryRowContext(ctx, queryUpsertUser,
		params.Id, params.Email, params.Name, params.Phone).Scan(
		&user.Id, &user.Email, &user.Name, &user.Phone, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		zap.L().Error("Failed to upsert user", zap.String("user_id", params.Id), zap.Error(err))
		return nil, fmt.Errorf("unable to upsert user: %w", err)
	}

	zap.L().Info("User upserted", zap.String("user_id", user.Id))
	return &user, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))

	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserById, userId).Scan(
		&user.Id, &user.Email, &user.Name, &user.Phone, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}

	return &user, nil
}
