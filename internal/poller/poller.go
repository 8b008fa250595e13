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

package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pocket-wallet-go/internal/balance"
	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State is the poller's lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateSyncing    State = "syncing"
	StateRefreshing State = "refreshing"
	StateReady      State = "ready"
)

// IdentitySource supplies the provider's linked-account list.
type IdentitySource interface {
	GetUser(ctx context.Context, subject string) (*models.PrivyUser, error)
}

// Poller drives the wallet data lifecycle for one authenticated subject:
// reconcile once on start, aggregate, then refresh balances on a fixed
// interval. A step's failure records a human-readable error and leaves the
// previous snapshot in place; the next tick simply tries again.
type Poller struct {
	subject    string
	identity   IdentitySource
	reconciler *wallet.Reconciler
	aggregator *balance.Aggregator
	interval   time.Duration

	group    singleflight.Group
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	started  bool
	state    State
	wallets  []models.Wallet
	snapshot balance.Snapshot
	lastErr  string
}

type Config struct {
	Subject         string
	Identity        IdentitySource
	Reconciler      *wallet.Reconciler
	Aggregator      *balance.Aggregator
	RefreshInterval time.Duration
}

func New(cfg Config) *Poller {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		subject:    cfg.Subject,
		identity:   cfg.Identity,
		reconciler: cfg.Reconciler,
		aggregator: cfg.Aggregator,
		interval:   interval,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		state:      StateIdle,
		snapshot:   balance.Snapshot{},
	}
}

// Start runs the initial sync, then launches the refresh loop. Sync is
// sequenced strictly before the first aggregation so balances are fetched
// for the reconciled wallet list.
func (p *Poller) Start(ctx context.Context) error {
	if err := p.Sync(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	go p.refreshLoop(ctx)

	zap.L().Info("Poller started",
		zap.String("subject", p.subject),
		zap.Duration("refresh_interval", p.interval))
	return nil
}

// Stop halts the refresh loop. Calling it again, or after a failed Start
// that never launched the loop, is a no-op.
func (p *Poller) Stop() {
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		return
	}

	p.stopOnce.Do(func() { close(p.stopChan) })
	<-p.doneChan
	zap.L().Info("Poller stopped", zap.String("subject", p.subject))
}

func (p *Poller) refreshLoop(ctx context.Context) {
	defer close(p.doneChan)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				zap.L().Warn("Scheduled refresh failed",
					zap.String("subject", p.subject),
					zap.Error(err))
			}
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sync reconciles against the provider, then aggregates balances for the
// resulting wallet list.
func (p *Poller) Sync(ctx context.Context) error {
	p.setState(StateSyncing)

	providerUser, err := p.identity.GetUser(ctx, p.subject)
	if err != nil {
		p.fail(fmt.Sprintf("identity provider unavailable: %v", err))
		return err
	}

	wallets, err := p.reconciler.Reconcile(ctx, p.subject, providerUser.LinkedAccounts)
	if err != nil {
		p.fail(fmt.Sprintf("wallet sync failed: %v", err))
		return err
	}

	snapshot := p.aggregator.Aggregate(ctx, wallets)

	p.mu.Lock()
	p.wallets = wallets
	p.snapshot = snapshot
	p.lastErr = ""
	p.state = StateReady
	p.mu.Unlock()

	return nil
}

// Refresh re-aggregates balances for the known wallet list without touching
// the provider. Concurrent callers are deduplicated: a refresh requested
// while one is in flight joins the in-flight result.
func (p *Poller) Refresh(ctx context.Context) error {
	_, err, _ := p.group.Do("refresh", func() (any, error) {
		p.setState(StateRefreshing)

		p.mu.RLock()
		wallets := p.wallets
		p.mu.RUnlock()

		snapshot := p.aggregator.Aggregate(ctx, wallets)

		p.mu.Lock()
		p.snapshot = snapshot
		p.lastErr = ""
		p.state = StateReady
		p.mu.Unlock()
		return nil, nil
	})
	return err
}

func (p *Poller) setState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *Poller) fail(msg string) {
	p.mu.Lock()
	p.lastErr = msg
	p.state = StateReady
	p.mu.Unlock()
}

// State returns the current lifecycle phase.
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// LastError returns the most recent failure message, empty after a
// successful pass.
func (p *Poller) LastError() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Wallets returns the reconciled wallet list.
func (p *Poller) Wallets() []models.Wallet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	wallets := make([]models.Wallet, len(p.wallets))
	copy(wallets, p.wallets)
	return wallets
}

// PrimaryWallet returns the first default-flagged wallet, else the first
// wallet, else nil.
func (p *Poller) PrimaryWallet() *models.Wallet {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i := range p.wallets {
		if p.wallets[i].IsDefault {
			wallet := p.wallets[i]
			return &wallet
		}
	}
	if len(p.wallets) > 0 {
		wallet := p.wallets[0]
		return &wallet
	}
	return nil
}

// TotalBalance returns the decimal sum of one symbol across all wallets,
// formatted to two fraction digits after summation.
func (p *Poller) TotalBalance(symbol string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot.FormattedTotal(symbol)
}

// Balance returns the raw decimal total for a symbol.
func (p *Poller) Balance(symbol string) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot.Total(symbol)
}
