package ledger

import (
	"context"
	"testing"
	"time"

	"pocket-wallet-go/internal/database"
	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecorder(t *testing.T) (*Recorder, *database.Service) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewService(ctx, models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, id := range []string{"user1", "user2"} {
		_, err := db.UpsertUser(ctx, store.UpsertUserParams{Id: id})
		require.NoError(t, err)
	}

	return NewRecorder(db), db
}

func ownWallet(t *testing.T, db *database.Service, userId, address string) {
	t.Helper()
	_, err := db.CreateWallet(context.Background(), store.CreateWalletParams{
		UserId:  userId,
		Address: address,
		Type:    models.WalletTypeEmbedded,
		ChainId: 1,
	})
	require.NoError(t, err)
}

func TestRecord_SendWithHash(t *testing.T) {
	recorder, db := setupRecorder(t)
	ctx := context.Background()

	ownWallet(t, db, "user1", "0xsender")
	require.NoError(t, db.UpdateWalletBalance(ctx, "0xsender", decimal.RequireFromString("100.00")))

	txn, err := recorder.Record(ctx, "user1", models.CreateTransactionRequest{
		FromAddress: "0xSENDER",
		ToAddress:   "0xElsewhere",
		Amount:      "10.00",
		Currency:    "usdc",
		Type:        "send",
		TxHash:      "0xhash1",
	})
	require.NoError(t, err)

	// A chain hash means the transfer was submitted: status reflects that
	// and the cached sender balance is debited.
	assert.Equal(t, models.TransactionStatusConfirming, txn.Status)
	assert.Equal(t, "0xsender", txn.FromAddress)
	assert.Equal(t, "0xelsewhere", txn.ToAddress)
	assert.Equal(t, "USDC", txn.Currency)
	assert.Equal(t, models.TransactionTypeSend, txn.Type)

	sender, err := db.GetWalletByAddress(ctx, "0xsender")
	require.NoError(t, err)
	assert.True(t, sender.Balance.Decimal.Equal(decimal.RequireFromString("90.00")),
		"expected 90.00, got %s", sender.Balance.Decimal.String())
}

func TestRecord_SendWithoutHashStaysPending(t *testing.T) {
	recorder, db := setupRecorder(t)
	ctx := context.Background()

	ownWallet(t, db, "user1", "0xsender")
	require.NoError(t, db.UpdateWalletBalance(ctx, "0xsender", decimal.RequireFromString("100")))

	txn, err := recorder.Record(ctx, "user1", models.CreateTransactionRequest{
		FromAddress: "0xsender",
		ToAddress:   "0xelsewhere",
		Amount:      "10",
		Currency:    "USDC",
		Type:        "SEND",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, txn.Status)

	// No hash, no balance movement.
	sender, err := db.GetWalletByAddress(ctx, "0xsender")
	require.NoError(t, err)
	assert.True(t, sender.Balance.Decimal.Equal(decimal.RequireFromString("100")))
}

func TestRecord_SendFromUnownedWallet(t *testing.T) {
	recorder, db := setupRecorder(t)
	ctx := context.Background()

	ownWallet(t, db, "user2", "0xtheirs")

	_, err := recorder.Record(ctx, "user1", models.CreateTransactionRequest{
		FromAddress: "0xtheirs",
		ToAddress:   "0xelsewhere",
		Amount:      "10",
		Currency:    "USDC",
		Type:        "SEND",
		TxHash:      "0xhash1",
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// The rejection happens before any write.
	_, total, err := db.ListTransactions(ctx, store.ListTransactionsParams{UserId: "user1"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecord_SendFromUnknownWallet(t *testing.T) {
	recorder, _ := setupRecorder(t)

	_, err := recorder.Record(context.Background(), "user1", models.CreateTransactionRequest{
		FromAddress: "0xnowhere",
		ToAddress:   "0xelsewhere",
		Amount:      "10",
		Currency:    "USDC",
		Type:        "SEND",
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRecord_ReceiveSkipsOwnershipCheck(t *testing.T) {
	recorder, db := setupRecorder(t)
	ctx := context.Background()

	ownWallet(t, db, "user1", "0xmine")

	// RECEIVE from an address this user does not own is fine; the sender is
	// some counterparty out on the chain.
	txn, err := recorder.Record(ctx, "user1", models.CreateTransactionRequest{
		FromAddress: "0xcounterparty",
		ToAddress:   "0xmine",
		Amount:      "25",
		Currency:    "USDC",
		Type:        "RECEIVE",
		TxHash:      "0xhash1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeReceive, txn.Type)

	mine, err := db.GetWalletByAddress(ctx, "0xmine")
	require.NoError(t, err)
	assert.True(t, mine.Balance.Decimal.Equal(decimal.RequireFromString("25")))
}

func TestRecord_Validation(t *testing.T) {
	recorder, _ := setupRecorder(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.CreateTransactionRequest
	}{
		{"missing addresses", models.CreateTransactionRequest{Amount: "1", Currency: "ETH", Type: "SEND"}},
		{"missing currency", models.CreateTransactionRequest{FromAddress: "0xa", ToAddress: "0xb", Amount: "1", Type: "SEND"}},
		{"unknown type", models.CreateTransactionRequest{FromAddress: "0xa", ToAddress: "0xb", Amount: "1", Currency: "ETH", Type: "TELEPORT"}},
		{"malformed amount", models.CreateTransactionRequest{FromAddress: "0xa", ToAddress: "0xb", Amount: "ten", Currency: "ETH", Type: "RECEIVE"}},
		{"zero amount", models.CreateTransactionRequest{FromAddress: "0xa", ToAddress: "0xb", Amount: "0", Currency: "ETH", Type: "RECEIVE"}},
		{"negative amount", models.CreateTransactionRequest{FromAddress: "0xa", ToAddress: "0xb", Amount: "-5", Currency: "ETH", Type: "RECEIVE"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := recorder.Record(ctx, "user1", tc.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
