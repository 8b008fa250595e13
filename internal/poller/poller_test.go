package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocket-wallet-go/internal/balance"
	"pocket-wallet-go/internal/database"
	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"
	"pocket-wallet-go/internal/wallet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	user *models.PrivyUser
	err  error
}

func (f *fakeIdentity) GetUser(_ context.Context, _ string) (*models.PrivyUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeChainReader struct {
	balances map[string]map[string]decimal.Decimal
}

func (f *fakeChainReader) WalletBalances(_ context.Context, _ int64, address string) (map[string]decimal.Decimal, error) {
	return f.balances[address], nil
}

func setupPoller(t *testing.T, identity IdentitySource, reader balance.ChainReader) *Poller {
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

	_, err = db.UpsertUser(ctx, store.UpsertUserParams{Id: "did:privy:abc"})
	require.NoError(t, err)

	return New(Config{
		Subject:         "did:privy:abc",
		Identity:        identity,
		Reconciler:      wallet.NewReconciler(db),
		Aggregator:      balance.NewAggregator(reader),
		RefreshInterval: 50 * time.Millisecond,
	})
}

func linkedAccounts() []models.LinkedAccount {
	return []models.LinkedAccount{
		{Type: "wallet", Address: "0xemb", WalletClientType: "privy", ChainId: 1},
		{Type: "wallet", Address: "0xext", WalletClientType: "metamask", ChainId: 1},
	}
}

func TestSync_ReachesReady(t *testing.T) {
	identity := &fakeIdentity{user: &models.PrivyUser{Subject: "did:privy:abc", LinkedAccounts: linkedAccounts()}}
	reader := &fakeChainReader{balances: map[string]map[string]decimal.Decimal{
		"0xemb": {"USDC": decimal.RequireFromString("10.005")},
		"0xext": {"USDC": decimal.RequireFromString("5.00")},
	}}
	p := setupPoller(t, identity, reader)

	assert.Equal(t, StateIdle, p.State())

	require.NoError(t, p.Sync(context.Background()))

	assert.Equal(t, StateReady, p.State())
	assert.Empty(t, p.LastError())
	assert.Len(t, p.Wallets(), 2)
	assert.Equal(t, "15.01", p.TotalBalance("USDC"))
}

func TestSync_IdentityFailureRecorded(t *testing.T) {
	identity := &fakeIdentity{err: errors.New("provider down")}
	p := setupPoller(t, identity, &fakeChainReader{})

	err := p.Sync(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateReady, p.State())
	assert.Contains(t, p.LastError(), "identity provider unavailable")
	assert.Empty(t, p.Wallets())
}

func TestSync_RecoversAfterFailure(t *testing.T) {
	identity := &fakeIdentity{err: errors.New("provider down")}
	p := setupPoller(t, identity, &fakeChainReader{})

	require.Error(t, p.Sync(context.Background()))
	assert.NotEmpty(t, p.LastError())

	identity.err = nil
	identity.user = &models.PrivyUser{Subject: "did:privy:abc", LinkedAccounts: linkedAccounts()}

	require.NoError(t, p.Sync(context.Background()))
	assert.Empty(t, p.LastError())
	assert.Len(t, p.Wallets(), 2)
}

func TestPrimaryWallet(t *testing.T) {
	identity := &fakeIdentity{user: &models.PrivyUser{Subject: "did:privy:abc", LinkedAccounts: linkedAccounts()}}
	p := setupPoller(t, identity, &fakeChainReader{})

	assert.Nil(t, p.PrimaryWallet())

	require.NoError(t, p.Sync(context.Background()))

	primary := p.PrimaryWallet()
	require.NotNil(t, primary)
	assert.Equal(t, "0xemb", primary.Address)
	assert.True(t, primary.IsDefault)
	assert.Equal(t, models.WalletTypeEmbedded, primary.Type)
}

func TestRefresh_UpdatesSnapshot(t *testing.T) {
	identity := &fakeIdentity{user: &models.PrivyUser{Subject: "did:privy:abc", LinkedAccounts: linkedAccounts()}}
	reader := &fakeChainReader{balances: map[string]map[string]decimal.Decimal{
		"0xemb": {"ETH": decimal.RequireFromString("1")},
	}}
	p := setupPoller(t, identity, reader)

	require.NoError(t, p.Sync(context.Background()))
	assert.Equal(t, "1.00", p.TotalBalance("ETH"))

	reader.balances["0xemb"] = map[string]decimal.Decimal{"ETH": decimal.RequireFromString("2.5")}

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, "2.50", p.TotalBalance("ETH"))
	assert.Equal(t, StateReady, p.State())
}

func TestStartAndStop(t *testing.T) {
	identity := &fakeIdentity{user: &models.PrivyUser{Subject: "did:privy:abc", LinkedAccounts: linkedAccounts()}}
	p := setupPoller(t, identity, &fakeChainReader{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, p.Start(ctx))
	assert.Equal(t, StateReady, p.State())

	// Let at least one tick fire before stopping.
	time.Sleep(120 * time.Millisecond)
	p.Stop()

	assert.Equal(t, StateReady, p.State())
}

func TestStop_WithoutStartAndRepeated(t *testing.T) {
	identity := &fakeIdentity{err: errors.New("provider down")}
	p := setupPoller(t, identity, &fakeChainReader{})

	// Start failed, so the refresh loop never launched; Stop must return
	// instead of waiting on it.
	require.Error(t, p.Start(context.Background()))
	p.Stop()

	identity.err = nil
	identity.user = &models.PrivyUser{Subject: "did:privy:abc", LinkedAccounts: linkedAccounts()}
	require.NoError(t, p.Start(context.Background()))

	p.Stop()
	p.Stop()
}
