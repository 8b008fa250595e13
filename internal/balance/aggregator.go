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

package balance

import (
	"context"
	"sync"

	"pocket-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChainReader is the slice of the chain reader the aggregator needs.
type ChainReader interface {
	WalletBalances(ctx context.Context, chainId int64, address string) (map[string]decimal.Decimal, error)
}

// Snapshot maps wallet address -> token symbol -> balance in whole units.
type Snapshot map[string]map[string]decimal.Decimal

// Aggregator combines per-wallet, per-token chain balances into wallet-level
// and account-level totals.
type Aggregator struct {
	reader ChainReader
}

func NewAggregator(reader ChainReader) *Aggregator {
	return &Aggregator{reader: reader}
}

// Aggregate fetches balances for every wallet concurrently. A wallet whose
// chain is unknown or whose lookups fail contributes an empty balance map;
// it never fails the other wallets.
func (a *Aggregator) Aggregate(ctx context.Context, wallets []models.Wallet) Snapshot {
	snapshot := make(Snapshot, len(wallets))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, w := range wallets {
		wg.Add(1)
		go func(w models.Wallet) {
			defer wg.Done()
			balances, err := a.reader.WalletBalances(ctx, w.ChainId, w.Address)
			if err != nil {
				zap.L().Warn("Wallet balance fetch failed, substituting empty",
					zap.String("address", w.Address),
					zap.Int64("chain_id", w.ChainId),
					zap.Error(err))
				balances = map[string]decimal.Decimal{}
			}
			mu.Lock()
			snapshot[w.Address] = balances
			mu.Unlock()
		}(w)
	}

	wg.Wait()
	return snapshot
}

// Total sums one symbol across every wallet in the snapshot. The sum is
// computed first and rounded once; rounding per wallet would drift.
func (s Snapshot) Total(symbol string) decimal.Decimal {
	total := decimal.Zero
	for _, balances := range s {
		if value, ok := balances[symbol]; ok {
			total = total.Add(value)
		}
	}
	return total
}

// FormattedTotal renders the symbol total with two fraction digits.
func (s Snapshot) FormattedTotal(symbol string) string {
	return s.Total(symbol).StringFixed(2)
}

// Format renders one snapshot entry as decimal strings for API responses.
func (s Snapshot) Format(address string) map[string]string {
	balances, ok := s[address]
	if !ok {
		return map[string]string{}
	}
	formatted := make(map[string]string, len(balances))
	for symbol, value := range balances {
		formatted[symbol] = value.String()
	}
	return formatted
}
