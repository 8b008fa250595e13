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

package models

import "time"

// VerifyRequest carries the identity token for session establishment
type VerifyRequest struct {
	Token string `json:"token"`
}

// VerifyResult is returned after a successful identity verification
type VerifyResult struct {
	User      UserView  `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserView is the API projection of a user row
type UserView struct {
	Id    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// WalletView is the API projection of a wallet row
type WalletView struct {
	Id        string `json:"id"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	ChainId   int64  `json:"chain_id"`
	IsDefault bool   `json:"is_default"`
	Label     string `json:"label,omitempty"`
	Balance   string `json:"balance,omitempty"`
}

// CreateWalletRequest asks the provider for a new custodied wallet
type CreateWalletRequest struct {
	ChainId int64 `json:"chain_id"`
}

// CreateTransactionRequest is the recorder's input. Amount is a decimal
// string; TxHash is optional and controls the initial status.
type CreateTransactionRequest struct {
	FromAddress string            `json:"from_address"`
	ToAddress   string            `json:"to_address"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Type        string            `json:"type"`
	TxHash      string            `json:"tx_hash,omitempty"`
	GasUsed     string            `json:"gas_used,omitempty"`
	GasPrice    string            `json:"gas_price,omitempty"`
	BlockNumber int64             `json:"block_number,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// TransactionView is the API projection of a transaction row
type TransactionView struct {
	Id          string            `json:"id"`
	FromAddress string            `json:"from_address"`
	ToAddress   string            `json:"to_address"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Type        string            `json:"type"`
	Status      string            `json:"status"`
	TxHash      string            `json:"tx_hash,omitempty"`
	GasUsed     string            `json:"gas_used,omitempty"`
	GasPrice    string            `json:"gas_price,omitempty"`
	BlockNumber int64             `json:"block_number,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TransactionPage is one page of a user's transaction history
type TransactionPage struct {
	Transactions []TransactionView `json:"transactions"`
	Limit        int               `json:"limit"`
	Offset       int               `json:"offset"`
	Total        int               `json:"total"`
}

// WalletBalanceView reports per-symbol balances for one wallet address
type WalletBalanceView struct {
	Address  string            `json:"address"`
	ChainId  int64             `json:"chain_id"`
	Balances map[string]string `json:"balances"`
}

// HealthView reports configuration validity for the health endpoint
type HealthView struct {
	Status          string `json:"status"`
	Database        bool   `json:"database"`
	PrivyConfigured bool   `json:"privy_configured"`
}
