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

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletType distinguishes how a wallet came to be linked to a user.
type WalletType string

const (
	WalletTypeEmbedded WalletType = "EMBEDDED"
	WalletTypeExternal WalletType = "EXTERNAL"
	WalletTypeImported WalletType = "IMPORTED"
)

// TransactionType classifies a recorded transfer.
type TransactionType string

const (
	TransactionTypeSend    TransactionType = "SEND"
	TransactionTypeReceive TransactionType = "RECEIVE"
	TransactionTypeSwap    TransactionType = "SWAP"
	TransactionTypeCashIn  TransactionType = "CASH_IN"
	TransactionTypeCashOut TransactionType = "CASH_OUT"
	TransactionTypeFee     TransactionType = "FEE"
	TransactionTypeReward  TransactionType = "REWARD"
)

// TransactionStatus is set once at creation and never advanced by a
// background process.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusConfirming TransactionStatus = "CONFIRMING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
)

// User mirrors an identity-provider subject. The id is the provider's
// subject id, not a locally generated one.
type User struct {
	Id        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Wallet is the local mirror of a linked wallet account. Addresses are
// stored lowercase and are globally unique across users.
type Wallet struct {
	Id        string              `db:"id"`
	UserId    string              `db:"user_id"`
	Address   string              `db:"address"`
	Type      WalletType          `db:"type"`
	ChainId   int64               `db:"chain_id"`
	IsDefault bool                `db:"is_default"`
	Label     string              `db:"label"`
	Balance   decimal.NullDecimal `db:"balance"`
	CreatedAt time.Time           `db:"created_at"`
	UpdatedAt time.Time           `db:"updated_at"`
}

// Transaction is an immutable record of a locally observed transfer.
// From/to are plain address strings, not foreign keys; wallet references
// are resolved by address lookup at record time.
type Transaction struct {
	Id          string            `db:"id"`
	UserId      string            `db:"user_id"`
	FromAddress string            `db:"from_address"`
	ToAddress   string            `db:"to_address"`
	Amount      decimal.Decimal   `db:"amount"`
	Currency    string            `db:"currency"`
	Type        TransactionType   `db:"type"`
	Status      TransactionStatus `db:"status"`
	TxHash      string            `db:"tx_hash"`
	GasUsed     string            `db:"gas_used"`
	GasPrice    string            `db:"gas_price"`
	BlockNumber int64             `db:"block_number"`
	Metadata    map[string]string `db:"metadata"`
	CreatedAt   time.Time         `db:"created_at"`
}

// Session is an opaque bearer credential with an absolute expiry.
// A session is never refreshed in place; re-verification replaces it.
type Session struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	Token     string    `db:"token"`
	IpAddress string    `db:"ip_address"`
	UserAgent string    `db:"user_agent"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired reports whether the session is past its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
