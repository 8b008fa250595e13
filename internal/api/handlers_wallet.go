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
	"io"
	"net/http"
	"strings"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"go.uber.org/zap"
)

func walletView(w models.Wallet) models.WalletView {
	view := models.WalletView{
		Id:        w.Id,
		Address:   w.Address,
		Type:      string(w.Type),
		ChainId:   w.ChainId,
		IsDefault: w.IsDefault,
		Label:     w.Label,
	}
	if w.Balance.Valid {
		view.Balance = w.Balance.Decimal.String()
	}
	return view
}

// handleWalletSync runs the reconciler against the provider's current
// linked-account list and returns the resulting mirror.
func (s *Server) handleWalletSync(w http.ResponseWriter, r *http.Request) {
	subject := subjectFrom(r.Context())

	providerUser, err := s.identity.GetUser(r.Context(), subject)
	if err != nil {
		zap.L().Error("Provider user lookup failed", zap.String("subject", subject), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "identity provider unavailable")
		return
	}

	// Profile fields may have changed on the provider side; mirror them too.
	if _, err := s.store.UpsertUser(r.Context(), store.UpsertUserParams{
		Id:    subject,
		Email: providerUser.Email,
		Name:  providerUser.Name,
		Phone: providerUser.Phone,
	}); err != nil {
		zap.L().Error("User upsert failed during sync", zap.String("subject", subject), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to persist user")
		return
	}

	wallets, err := s.reconciler.Reconcile(r.Context(), subject, providerUser.LinkedAccounts)
	if err != nil {
		zap.L().Error("Reconciliation failed", zap.String("subject", subject), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "wallet sync failed")
		return
	}

	views := make([]models.WalletView, len(wallets))
	for i, wallet := range wallets {
		views[i] = walletView(wallet)
	}
	respondJSON(w, http.StatusOK, views)
}

// handleWalletCreate requests a new custodied wallet from the provider and
// persists it. Provider failure has no safe local default.
func (s *Server) handleWalletCreate(w http.ResponseWriter, r *http.Request) {
	subject := subjectFrom(r.Context())

	var req models.CreateWalletRequest
	if r.Body != nil {
		// An empty body is fine; malformed JSON is not.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}
	if req.ChainId == 0 {
		req.ChainId = 1
	}

	created, err := s.identity.CreateWallet(r.Context(), subject, req.ChainId)
	if err != nil {
		zap.L().Error("Provider wallet creation failed", zap.String("subject", subject), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "wallet creation failed")
		return
	}

	wallet, err := s.store.CreateWallet(r.Context(), store.CreateWalletParams{
		UserId:  subject,
		Address: strings.ToLower(created.Address),
		Type:    models.WalletTypeEmbedded,
		ChainId: created.ChainId,
	})
	if err != nil {
		if errors.Is(err, store.ErrAddressConflict) {
			respondError(w, http.StatusConflict, "wallet address already registered")
			return
		}
		zap.L().Error("Failed to persist created wallet",
			zap.String("subject", subject),
			zap.String("address", created.Address),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to persist wallet")
		return
	}

	respondJSON(w, http.StatusCreated, walletView(*wallet))
}

// handleWalletBalance returns live chain balances for one owned address.
// Addresses the caller does not own are indistinguishable from unknown
// ones: both are a 404.
func (s *Server) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	userId := userIdFrom(r.Context())

	address := strings.ToLower(r.URL.Query().Get("address"))
	if address == "" {
		respondError(w, http.StatusBadRequest, "address is required")
		return
	}

	wallet, err := s.store.GetWalletByAddress(r.Context(), address)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			respondError(w, http.StatusNotFound, "wallet not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "wallet lookup failed")
		return
	}
	if wallet.UserId != userId {
		respondError(w, http.StatusNotFound, "wallet not found")
		return
	}

	snapshot := s.aggregator.Aggregate(r.Context(), []models.Wallet{*wallet})
	respondJSON(w, http.StatusOK, models.WalletBalanceView{
		Address:  wallet.Address,
		ChainId:  wallet.ChainId,
		Balances: snapshot.Format(wallet.Address),
	})
}
