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

package wallet

import (
	"context"
	"fmt"
	"strings"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"go.uber.org/zap"
)

// Reconciler mirrors the identity provider's linked-wallet list into the
// local store. The mirror only grows: provider-unlinked wallets are kept.
type Reconciler struct {
	store store.MirrorStore
}

func NewReconciler(mirror store.MirrorStore) *Reconciler {
	return &Reconciler{store: mirror}
}

// Reconcile produces a local wallet set that is a superset-or-equal mirror
// of the provider's account list. Embedded (provider-custodied) accounts are
// processed before external ones so a fresh user's first wallet, which
// becomes the default, is the custodied one.
func (r *Reconciler) Reconcile(ctx context.Context, userId string, accounts []models.LinkedAccount) ([]models.Wallet, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user id is required", store.ErrInvalidArgument)
	}

	var embedded, external []store.SyncWalletParams
	for _, account := range accounts {
		if account.Type != "wallet" || account.Address == "" {
			continue
		}

		params := store.SyncWalletParams{
			Address: strings.ToLower(account.Address),
			ChainId: account.ChainId,
		}
		if params.ChainId == 0 {
			params.ChainId = 1
		}

		if account.Custodied() {
			params.Type = models.WalletTypeEmbedded
			embedded = append(embedded, params)
		} else {
			params.Type = models.WalletTypeExternal
			external = append(external, params)
		}
	}

	zap.L().Debug("Partitioned provider accounts",
		zap.String("user_id", userId),
		zap.Int("embedded", len(embedded)),
		zap.Int("external", len(external)))

	wallets, err := r.store.SyncWallets(ctx, userId, append(embedded, external...))
	if err != nil {
		return nil, fmt.Errorf("wallet reconciliation failed: %w", err)
	}

	return wallets, nil
}
