package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := &Service{db: db}

	// Use the actual schema initialization
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	ctx := context.Background()
	for _, id := range []string{"user1", "user2"} {
		if _, err := service.UpsertUser(ctx, store.UpsertUserParams{Id: id, Email: id + "@example.com"}); err != nil {
			t.Fatalf("Failed to insert test user %s: %v", id, err)
		}
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func TestSyncWallets_FirstWalletIsDefault(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	accounts := []store.SyncWalletParams{
		{Address: "0xaaa1", Type: models.WalletTypeEmbedded, ChainId: 1},
		{Address: "0xbbb2", Type: models.WalletTypeExternal, ChainId: 1},
	}

	wallets, err := service.SyncWallets(ctx, "user1", accounts)
	if err != nil {
		t.Fatalf("SyncWallets failed: %v", err)
	}
	if len(wallets) != 2 {
		t.Fatalf("Expected 2 wallets, got %d", len(wallets))
	}

	defaults := 0
	byAddress := make(map[string]models.Wallet)
	for _, wallet := range wallets {
		byAddress[wallet.Address] = wallet
		if wallet.IsDefault {
			defaults++
		}
	}

	if defaults != 1 {
		t.Errorf("Expected exactly 1 default wallet, got %d", defaults)
	}
	if !byAddress["0xaaa1"].IsDefault {
		t.Errorf("Expected first synced account to be the default wallet")
	}
	if byAddress["0xaaa1"].Label != "Wallet 1" {
		t.Errorf("Expected label 'Wallet 1', got %q", byAddress["0xaaa1"].Label)
	}
	if byAddress["0xbbb2"].Label != "Wallet 2" {
		t.Errorf("Expected label 'Wallet 2', got %q", byAddress["0xbbb2"].Label)
	}
}

func TestSyncWallets_Idempotent(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	accounts := []store.SyncWalletParams{
		{Address: "0xaaa1", Type: models.WalletTypeEmbedded, ChainId: 1},
		{Address: "0xbbb2", Type: models.WalletTypeExternal, ChainId: 1},
	}

	first, err := service.SyncWallets(ctx, "user1", accounts)
	if err != nil {
		t.Fatalf("First SyncWallets failed: %v", err)
	}

	second, err := service.SyncWallets(ctx, "user1", accounts)
	if err != nil {
		t.Fatalf("Second SyncWallets failed: %v", err)
	}

	if len(second) != len(first) {
		t.Fatalf("Expected %d wallets after re-sync, got %d", len(first), len(second))
	}
	for i := range first {
		if second[i].Id != first[i].Id {
			t.Errorf("Wallet %d changed identity across syncs: %s vs %s", i, first[i].Id, second[i].Id)
		}
		if second[i].IsDefault != first[i].IsDefault {
			t.Errorf("Wallet %s default flag changed across syncs", second[i].Address)
		}
	}
}

func TestSyncWallets_TouchUpdatesChainId(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	_, err := service.SyncWallets(ctx, "user1", []store.SyncWalletParams{
		{Address: "0xaaa1", Type: models.WalletTypeEmbedded, ChainId: 1},
	})
	if err != nil {
		t.Fatalf("SyncWallets failed: %v", err)
	}

	wallets, err := service.SyncWallets(ctx, "user1", []store.SyncWalletParams{
		{Address: "0xaaa1", Type: models.WalletTypeEmbedded, ChainId: 8453},
	})
	if err != nil {
		t.Fatalf("Re-sync failed: %v", err)
	}

	if len(wallets) != 1 {
		t.Fatalf("Expected 1 wallet, got %d", len(wallets))
	}
	if wallets[0].ChainId != 8453 {
		t.Errorf("Expected chain id 8453 after re-sync, got %d", wallets[0].ChainId)
	}
}

func TestSyncWallets_CrossUserAddressConflict(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	accounts := []store.SyncWalletParams{
		{Address: "0xshared", Type: models.WalletTypeEmbedded, ChainId: 1},
	}

	if _, err := service.SyncWallets(ctx, "user1", accounts); err != nil {
		t.Fatalf("SyncWallets for user1 failed: %v", err)
	}

	_, err := service.SyncWallets(ctx, "user2", accounts)
	if err == nil {
		t.Fatalf("Expected address conflict error, got nil")
	}
	if !errors.Is(err, store.ErrAddressConflict) {
		t.Errorf("Expected ErrAddressConflict, got: %v", err)
	}

	// Conflicting sync must not leave partial state behind.
	wallets, err := service.GetUserWallets(ctx, "user2")
	if err != nil {
		t.Fatalf("GetUserWallets failed: %v", err)
	}
	if len(wallets) != 0 {
		t.Errorf("Expected no wallets for user2 after conflict, got %d", len(wallets))
	}
}

func TestSyncWallets_SkipsEmptyAddresses(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallets, err := service.SyncWallets(ctx, "user1", []store.SyncWalletParams{
		{Address: "", Type: models.WalletTypeEmbedded, ChainId: 1},
		{Address: "0xaaa1", Type: models.WalletTypeEmbedded, ChainId: 1},
	})
	if err != nil {
		t.Fatalf("SyncWallets failed: %v", err)
	}
	if len(wallets) != 1 {
		t.Fatalf("Expected 1 wallet, got %d", len(wallets))
	}
	if !wallets[0].IsDefault {
		t.Errorf("Expected the only wallet to be default")
	}
}

func TestCreateWallet_FirstIsDefault(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	first, err := service.CreateWallet(ctx, store.CreateWalletParams{
		UserId:  "user1",
		Address: "0xaaa1",
		Type:    models.WalletTypeEmbedded,
		ChainId: 1,
	})
	if err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}
	if !first.IsDefault {
		t.Errorf("Expected first wallet to be default")
	}
	if first.Label != "Wallet 1" {
		t.Errorf("Expected label 'Wallet 1', got %q", first.Label)
	}

	second, err := service.CreateWallet(ctx, store.CreateWalletParams{
		UserId:  "user1",
		Address: "0xbbb2",
		Type:    models.WalletTypeEmbedded,
		ChainId: 1,
	})
	if err != nil {
		t.Fatalf("Second CreateWallet failed: %v", err)
	}
	if second.IsDefault {
		t.Errorf("Expected second wallet to not be default")
	}
}

func TestCreateWallet_DuplicateAddress(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	params := store.CreateWalletParams{
		UserId:  "user1",
		Address: "0xaaa1",
		Type:    models.WalletTypeEmbedded,
		ChainId: 1,
	}

	if _, err := service.CreateWallet(ctx, params); err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}

	_, err := service.CreateWallet(ctx, params)
	if !errors.Is(err, store.ErrAddressConflict) {
		t.Errorf("Expected ErrAddressConflict for duplicate address, got: %v", err)
	}
}

func TestGetWalletByAddress_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.GetWalletByAddress(context.Background(), "0xmissing")
	if !errors.Is(err, store.ErrWalletNotFound) {
		t.Errorf("Expected ErrWalletNotFound, got: %v", err)
	}
}

func TestUpdateWalletBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet, err := service.CreateWallet(ctx, store.CreateWalletParams{
		UserId:  "user1",
		Address: "0xaaa1",
		Type:    models.WalletTypeEmbedded,
		ChainId: 1,
	})
	if err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}
	if wallet.Balance.Valid {
		t.Errorf("Expected new wallet to have no cached balance")
	}

	balance := decimal.RequireFromString("1.23456789")
	if err := service.UpdateWalletBalance(ctx, "0xaaa1", balance); err != nil {
		t.Fatalf("UpdateWalletBalance failed: %v", err)
	}

	updated, err := service.GetWalletByAddress(ctx, "0xaaa1")
	if err != nil {
		t.Fatalf("GetWalletByAddress failed: %v", err)
	}
	if !updated.Balance.Valid || !updated.Balance.Decimal.Equal(balance) {
		t.Errorf("Expected cached balance %s, got %v", balance.String(), updated.Balance)
	}

	err = service.UpdateWalletBalance(ctx, "0xmissing", balance)
	if !errors.Is(err, store.ErrWalletNotFound) {
		t.Errorf("Expected ErrWalletNotFound for unknown address, got: %v", err)
	}
}
