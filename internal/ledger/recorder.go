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

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest = errors.New("invalid transaction request")
	ErrNotAuthorized  = errors.New("caller does not own the sender wallet")
)

var validTypes = map[models.TransactionType]bool{
	models.TransactionTypeSend:    true,
	models.TransactionTypeReceive: true,
	models.TransactionTypeSwap:    true,
	models.TransactionTypeCashIn:  true,
	models.TransactionTypeCashOut: true,
	models.TransactionTypeFee:     true,
	models.TransactionTypeReward:  true,
}

// Recorder persists locally observed transfer intents. Status is fixed at
// creation and never advanced by a background process.
type Recorder struct {
	store store.MirrorStore
}

func NewRecorder(mirror store.MirrorStore) *Recorder {
	return &Recorder{store: mirror}
}

// Record validates and persists one transfer on behalf of userId. SEND
// requires the caller to own the resolved sender wallet; the check happens
// before anything is written, so a rejected SEND leaves no record behind.
// Cached balances are only adjusted when a chain hash proves the transfer
// was actually submitted.
func (r *Recorder) Record(ctx context.Context, userId string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	if req.FromAddress == "" || req.ToAddress == "" {
		return nil, fmt.Errorf("%w: from and to addresses are required", ErrInvalidRequest)
	}
	if req.Currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidRequest)
	}

	txType := models.TransactionType(strings.ToUpper(req.Type))
	if !validTypes[txType] {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, req.Type)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed amount %q", ErrInvalidRequest, req.Amount)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	fromAddress := strings.ToLower(req.FromAddress)
	toAddress := strings.ToLower(req.ToAddress)

	if txType == models.TransactionTypeSend {
		sender, err := r.store.GetWalletByAddress(ctx, fromAddress)
		if err != nil {
			if errors.Is(err, store.ErrWalletNotFound) {
				return nil, ErrNotAuthorized
			}
			return nil, fmt.Errorf("sender lookup failed: %w", err)
		}
		if sender.UserId != userId {
			zap.L().Warn("SEND rejected: sender wallet owned by another user",
				zap.String("user_id", userId),
				zap.String("from", fromAddress))
			return nil, ErrNotAuthorized
		}
	}

	status := models.TransactionStatusPending
	if req.TxHash != "" {
		status = models.TransactionStatusConfirming
	}

	txn, err := r.store.RecordTransfer(ctx, store.RecordTransferParams{
		UserId:      userId,
		FromAddress: fromAddress,
		ToAddress:   toAddress,
		Amount:      amount,
		Currency:    strings.ToUpper(req.Currency),
		Type:        txType,
		Status:      status,
		TxHash:      req.TxHash,
		GasUsed:     req.GasUsed,
		GasPrice:    req.GasPrice,
		BlockNumber: req.BlockNumber,
		Metadata:    req.Metadata,

		ApplyBalanceDelta: req.TxHash != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	return txn, nil
}
