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
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// rowScanner lets scanWallet work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (*models.Wallet, error) {
	var wallet models.Wallet
	var balance sql.NullString
	err := row.Scan(&wallet.Id, &wallet.UserId, &wallet.Address, &wallet.Type,
		&wallet.ChainId, &wallet.IsDefault, &wallet.Label, &balance,
		&wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if balance.Valid {
		value, err := decimal.NewFromString(balance.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored balance %q: %w", balance.String, err)
		}
		wallet.Balance = decimal.NullDecimal{Decimal: value, Valid: true}
	}

	return &wallet, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// SyncWallets mirrors the provider's account list into the local store.
// The whole pass runs in one transaction: the unique address index is the
// source of truth, so a concurrent sync for the same address surfaces as
// store.ErrAddressConflict instead of a silent double insert.
//
// Existing wallets only get their chain id and updated timestamp touched;
// type, default flag, and label are fixed at creation. Nothing is deleted:
// wallets unlinked on the provider side stay in the mirror.
func (s *Service) SyncWallets(ctx context.Context, userId string, accounts []store.SyncWalletParams) ([]models.Wallet, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user id is required", store.ErrInvalidArgument)
	}

	zap.L().Info("Reconciling wallets",
		zap.String("user_id", userId),
		zap.Int("provider_accounts", len(accounts)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, queryCountUserWallets, userId).Scan(&existing); err != nil {
		return nil, fmt.Errorf("failed to count wallets: %w", err)
	}

	created := 0
	for _, account := range accounts {
		if account.Address == "" {
			continue
		}

		wallet, err := scanWallet(tx.QueryRowContext(ctx, queryGetWalletByAddress, account.Address))
		if err == nil {
			// Known address: only the chain id and timestamp are mutable.
			if wallet.UserId != userId {
				return nil, fmt.Errorf("%w: %s", store.ErrAddressConflict, account.Address)
			}
			if _, err := tx.ExecContext(ctx, queryTouchWallet, account.ChainId, account.Address); err != nil {
				return nil, fmt.Errorf("failed to update wallet %s: %w", account.Address, err)
			}
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to look up wallet %s: %w", account.Address, err)
		}

		isDefault := existing == 0 && created == 0
		label := fmt.Sprintf("Wallet %d", existing+created+1)

		_, err = scanWallet(tx.QueryRowContext(ctx, queryInsertWallet,
			uuid.New().String(), userId, account.Address, account.Type,
			account.ChainId, isDefault, label))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s", store.ErrAddressConflict, account.Address)
			}
			return nil, fmt.Errorf("failed to insert wallet %s: %w", account.Address, err)
		}
		created++

		zap.L().Info("Wallet created during reconciliation",
			zap.String("user_id", userId),
			zap.String("address", account.Address),
			zap.String("type", string(account.Type)),
			zap.Bool("is_default", isDefault))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	zap.L().Info("Reconciliation complete",
		zap.String("user_id", userId),
		zap.Int("created", created),
		zap.Int("touched", len(accounts)-created))

	return s.GetUserWallets(ctx, userId)
}

// CreateWallet persists a wallet returned by a provider creation call.
// First-wallet default semantics match reconciliation.
func (s *Service) CreateWallet(ctx context.Context, params store.CreateWalletParams) (*models.Wallet, error) {
	if params.UserId == "" || params.Address == "" {
		return nil, fmt.Errorf("%w: user id and address are required", store.ErrInvalidArgument)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, queryCountUserWallets, params.UserId).Scan(&existing); err != nil {
		return nil, fmt.Errorf("failed to count wallets: %w", err)
	}

	label := params.Label
	if label == "" {
		label = fmt.Sprintf("Wallet %d", existing+1)
	}

	wallet, err := scanWallet(tx.QueryRowContext(ctx, queryInsertWallet,
		uuid.New().String(), params.UserId, params.Address, params.Type,
		params.ChainId, existing == 0, label))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrAddressConflict, params.Address)
		}
		zap.L().Error("Failed to insert wallet",
			zap.String("user_id", params.UserId),
			zap.String("address", params.Address),
			zap.Error(err))
		return nil, fmt.Errorf("unable to insert wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit wallet creation: %w", err)
	}

	zap.L().Info("Wallet stored",
		zap.String("id", wallet.Id),
		zap.String("user_id", wallet.UserId),
		zap.String("address", wallet.Address))
	return wallet, nil
}

func (s *Service) GetWalletByAddress(ctx context.Context, address string) (*models.Wallet, error) {
	wallet, err := scanWallet(s.db.QueryRowContext(ctx, queryGetWalletByAddress, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrWalletNotFound, address)
		}
		zap.L().Error("Failed to query wallet by address", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("unable to query wallet by address: %w", err)
	}
	return wallet, nil
}

func (s *Service) GetUserWallets(ctx context.Context, userId string) ([]models.Wallet, error) {
	zap.L().Debug("Querying wallets for user", zap.String("user_id", userId))

	rows, err := s.db.QueryContext(ctx, queryGetUserWallets, userId)
	if err != nil {
		zap.L().Error("Failed to query wallets", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query wallets: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var wallets []models.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			zap.L().Error("Failed to scan wallet row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan wallet row: %w", err)
		}
		wallets = append(wallets, *wallet)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during wallet row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}

	return wallets, nil
}

func (s *Service) UpdateWalletBalance(ctx context.Context, address string, balance decimal.Decimal) error {
	result, err := s.db.ExecContext(ctx, queryUpdateWalletBalance, balance.String(), address)
	if err != nil {
		zap.L().Error("Failed to update wallet balance", zap.String("address", address), zap.Error(err))
		return fmt.Errorf("unable to update wallet balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrWalletNotFound, address)
	}

	return nil
}
