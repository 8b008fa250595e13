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

package store

import (
	"context"
	"errors"
	"time"

	"pocket-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAddressConflict = errors.New("wallet address already registered")
	ErrInvalidArgument = errors.New("invalid argument")
)

// UpsertUserParams carries the provider-supplied profile fields. The id is
// the identity provider's subject id.
type UpsertUserParams struct {
	Id    string
	Email string
	Name  string
	Phone string
}

// SyncWalletParams is one provider account normalized for reconciliation:
// the address must already be lowercased by the caller.
type SyncWalletParams struct {
	Address string
	Type    models.WalletType
	ChainId int64
}

// CreateWalletParams persists a wallet returned by a provider creation call.
type CreateWalletParams struct {
	UserId  string
	Address string
	Type    models.WalletType
	ChainId int64
	Label   string
}

// RecordTransferParams is the recorder's atomic unit: the transaction row
// plus the optional balance side-effect, applied in one DB transaction.
type RecordTransferParams struct {
	UserId      string
	FromAddress string
	ToAddress   string
	Amount      decimal.Decimal
	Currency    string
	Type        models.TransactionType
	Status      models.TransactionStatus
	TxHash      string
	GasUsed     string
	GasPrice    string
	BlockNumber int64
	Metadata    map[string]string

	// ApplyBalanceDelta debits the sender wallet (any owner) and credits the
	// receiver wallet only when the receiver belongs to UserId.
	ApplyBalanceDelta bool
}

// ListTransactionsParams filters and paginates a user's history.
type ListTransactionsParams struct {
	UserId        string
	WalletAddress string
	Status        models.TransactionStatus
	Limit         int
	Offset        int
}

// CreateSessionParams captures the request context for a new session.
type CreateSessionParams struct {
	UserId    string
	Token     string
	IpAddress string
	UserAgent string
	ExpiresAt time.Time
}

// MirrorStore defines the contract the relational mirror backend must satisfy.
type MirrorStore interface {
	// --- Users ---
	UpsertUser(ctx context.Context, params UpsertUserParams) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)

	// --- Wallets ---
	SyncWallets(ctx context.Context, userId string, accounts []SyncWalletParams) ([]models.Wallet, error)
	CreateWallet(ctx context.Context, params CreateWalletParams) (*models.Wallet, error)
	GetWalletByAddress(ctx context.Context, address string) (*models.Wallet, error)
	GetUserWallets(ctx context.Context, userId string) ([]models.Wallet, error)
	UpdateWalletBalance(ctx context.Context, address string, balance decimal.Decimal) error

	// --- Transactions ---
	RecordTransfer(ctx context.Context, params RecordTransferParams) (*models.Transaction, error)
	ListTransactions(ctx context.Context, params ListTransactionsParams) ([]models.Transaction, int, error)

	// --- Sessions ---
	CreateSession(ctx context.Context, params CreateSessionParams) (*models.Session, error)
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteUserSessions(ctx context.Context, userId string) error

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
