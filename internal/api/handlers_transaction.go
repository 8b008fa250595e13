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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pocket-wallet-go/internal/ledger"
	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"go.uber.org/zap"
)

func transactionView(t models.Transaction) models.TransactionView {
	return models.TransactionView{
		Id:          t.Id,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		Amount:      t.Amount.String(),
		Currency:    t.Currency,
		Type:        string(t.Type),
		Status:      string(t.Status),
		TxHash:      t.TxHash,
		GasUsed:     t.GasUsed,
		GasPrice:    t.GasPrice,
		BlockNumber: t.BlockNumber,
		Metadata:    t.Metadata,
		CreatedAt:   t.CreatedAt,
	}
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	subject := subjectFrom(r.Context())

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	txn, err := s.recorder.Record(r.Context(), subject, req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidRequest):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrNotAuthorized):
			respondError(w, http.StatusForbidden, "sender wallet not owned by caller")
		default:
			zap.L().Error("Transaction recording failed", zap.String("subject", subject), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to record transaction")
		}
		return
	}

	respondJSON(w, http.StatusCreated, transactionView(*txn))
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	subject := subjectFrom(r.Context())

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	transactions, total, err := s.store.ListTransactions(r.Context(), store.ListTransactionsParams{
		UserId:        subject,
		WalletAddress: strings.ToLower(query.Get("wallet")),
		Status:        models.TransactionStatus(strings.ToUpper(query.Get("status"))),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		zap.L().Error("Transaction list failed", zap.String("subject", subject), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	views := make([]models.TransactionView, len(transactions))
	for i, txn := range transactions {
		views[i] = transactionView(txn)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	respondJSON(w, http.StatusOK, models.TransactionPage{
		Transactions: views,
		Limit:        limit,
		Offset:       offset,
		Total:        total,
	})
}
