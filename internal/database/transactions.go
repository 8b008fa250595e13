package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var txn models.Transaction
	var amount, metadata string
	err := row.Scan(&txn.Id, &txn.UserId, &txn.FromAddress, &txn.ToAddress,
		&amount, &txn.Currency, &txn.Type, &txn.Status,
		&txn.TxHash, &txn.GasUsed, &txn.GasPrice, &txn.BlockNumber,
		&metadata, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
	}

	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &txn.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse stored metadata: %w", err)
		}
	}

	return &txn, nil
}

// RecordTransfer inserts the transaction row and, when requested, applies the
// balance delta to the cached wallet balances in the same DB transaction:
// the sender is debited if the address is mirrored for any user, the receiver
// is credited only when it belongs to the recording user. Cross-user credits
// are intentionally skipped.
func (s *Service) RecordTransfer(ctx context.Context, params store.RecordTransferParams) (*models.Transaction, error) {
	zap.L().Info("Recording transfer",
		zap.String("user_id", params.UserId),
		zap.String("from", params.FromAddress),
		zap.String("to", params.ToAddress),
		zap.String("amount", params.Amount.String()),
		zap.String("type", string(params.Type)),
		zap.String("status", string(params.Status)))

	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txn, err := scanTransaction(tx.QueryRowContext(ctx, queryInsertTransaction,
		uuid.New().String(), params.UserId, params.FromAddress, params.ToAddress,
		params.Amount.String(), params.Currency, params.Type, params.Status,
		params.TxHash, params.GasUsed, params.GasPrice, params.BlockNumber,
		string(metadataJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	if params.ApplyBalanceDelta {
		if err := s.applyBalanceDelta(ctx, tx, params); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	zap.L().Info("Transfer recorded",
		zap.String("transaction_id", txn.Id),
		zap.String("user_id", params.UserId),
		zap.String("status", string(txn.Status)))
	return txn, nil
}

func (s *Service) applyBalanceDelta(ctx context.Context, tx *sql.Tx, params store.RecordTransferParams) error {
	// Debit the sender whenever the address is mirrored locally.
	sender, err := scanWallet(tx.QueryRowContext(ctx, queryGetWalletByAddress, params.FromAddress))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up sender wallet: %w", err)
	}
	if sender != nil {
		current := decimal.Zero
		if sender.Balance.Valid {
			current = sender.Balance.Decimal
		}
		newBalance := current.Sub(params.Amount)
		if _, err := tx.ExecContext(ctx, queryUpdateWalletBalance, newBalance.String(), sender.Address); err != nil {
			return fmt.Errorf("failed to debit sender: %w", err)
		}
		zap.L().Debug("Sender debited",
			zap.String("address", sender.Address),
			zap.String("old_balance", current.String()),
			zap.String("new_balance", newBalance.String()))
	}

	// Credit the receiver only when the caller owns it; crediting another
	// user's cached balance would change state the caller cannot observe.
	receiver, err := scanWallet(tx.QueryRowContext(ctx, queryGetWalletByAddress, params.ToAddress))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up receiver wallet: %w", err)
	}
	if receiver != nil && receiver.UserId == params.UserId {
		current := decimal.Zero
		if receiver.Balance.Valid {
			current = receiver.Balance.Decimal
		}
		newBalance := current.Add(params.Amount)
		if _, err := tx.ExecContext(ctx, queryUpdateWalletBalance, newBalance.String(), receiver.Address); err != nil {
			return fmt.Errorf("failed to credit receiver: %w", err)
		}
		zap.L().Debug("Receiver credited",
			zap.String("address", receiver.Address),
			zap.String("old_balance", current.String()),
			zap.String("new_balance", newBalance.String()))
	}

	return nil
}

func (s *Service) ListTransactions(ctx context.Context, params store.ListTransactionsParams) ([]models.Transaction, int, error) {
	if params.UserId == "" {
		return nil, 0, fmt.Errorf("%w: user id is required", store.ErrInvalidArgument)
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	address := params.WalletAddress
	status := string(params.Status)

	var total int
	err := s.db.QueryRowContext(ctx, queryCountTransactions,
		params.UserId, address, address, address, status, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryListTransactions,
		params.UserId, address, address, address, status, status,
		params.Limit, params.Offset)
	if err != nil {
		zap.L().Error("Failed to query transactions", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, 0, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("Failed to scan transaction row", zap.Error(err))
			return nil, 0, fmt.Errorf("unable to scan transaction row: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, total, nil
}
