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

package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded ABI: %v", err))
	}
	return parsed
}

// Reader performs read-only balance, gas, and receipt queries against the
// configured EVM networks. Clients are dialed lazily per chain and reused.
type Reader struct {
	registry    map[int64]ChainConfig
	callTimeout time.Duration

	mu      sync.Mutex
	clients map[int64]*ethclient.Client
}

func NewReader(registry map[int64]ChainConfig, callTimeout time.Duration) *Reader {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Reader{
		registry:    registry,
		callTimeout: callTimeout,
		clients:     make(map[int64]*ethclient.Client),
	}
}

// Chain returns the registry entry for a chain id.
func (r *Reader) Chain(chainId int64) (ChainConfig, bool) {
	cfg, ok := r.registry[chainId]
	return cfg, ok
}

func (r *Reader) client(chainId int64) (*ethclient.Client, error) {
	cfg, ok := r.registry[chainId]
	if !ok {
		return nil, fmt.Errorf("chain %d not in registry", chainId)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[chainId]; ok {
		return client, nil
	}

	client, err := ethclient.Dial(cfg.RpcURL)
	if err != nil {
		return nil, fmt.Errorf("eth dial %s: %w", cfg.Name, err)
	}
	r.clients[chainId] = client
	return client, nil
}

// NativeBalance returns the native coin balance in whole units.
func (r *Reader) NativeBalance(ctx context.Context, chainId int64, address string) (decimal.Decimal, error) {
	client, err := r.client(chainId)
	if err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	wei, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance lookup for %s on chain %d: %w", address, chainId, err)
	}

	return decimal.NewFromBigInt(wei, -r.registry[chainId].NativeDecimals), nil
}

// TokenBalance returns an ERC-20 balance in whole units. A placeholder
// contract address yields zero without touching the network, and any call
// failure degrades to zero as well: one bad token must not sink the rest
// of a wallet's lookups.
func (r *Reader) TokenBalance(ctx context.Context, chainId int64, token TokenConfig, address string) decimal.Decimal {
	if token.Address == "" || strings.EqualFold(token.Address, ZeroAddress) {
		return decimal.Zero
	}

	raw, err := r.tokenBalanceRaw(ctx, chainId, token, address)
	if err != nil {
		zap.L().Warn("Token balance lookup failed, substituting zero",
			zap.String("symbol", token.Symbol),
			zap.Int64("chain_id", chainId),
			zap.String("address", address),
			zap.Error(err))
		return decimal.Zero
	}
	return raw
}

func (r *Reader) tokenBalanceRaw(ctx context.Context, chainId int64, token TokenConfig, address string) (decimal.Decimal, error) {
	client, err := r.client(chainId)
	if err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	data, err := erc20ABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, fmt.Errorf("pack balanceOf: %w", err)
	}

	contract := common.HexToAddress(token.Address)
	result, err := client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("call balanceOf: %w", err)
	}

	values, err := erc20ABI.Unpack("balanceOf", result)
	if err != nil || len(values) != 1 {
		return decimal.Zero, fmt.Errorf("unpack balanceOf: %w", err)
	}
	raw, ok := values[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected balanceOf result type %T", values[0])
	}

	decimals := token.Decimals
	if decimals == 0 {
		decimals, err = r.tokenDecimals(ctx, client, contract)
		if err != nil {
			return decimal.Zero, err
		}
	}

	return decimal.NewFromBigInt(raw, -decimals), nil
}

func (r *Reader) tokenDecimals(ctx context.Context, client *ethclient.Client, contract common.Address) (int32, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}

	result, err := client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("call decimals: %w", err)
	}

	values, err := erc20ABI.Unpack("decimals", result)
	if err != nil || len(values) != 1 {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals result type %T", values[0])
	}

	return int32(decimals), nil
}

// WalletBalances fetches the native balance plus every configured token
// balance for one address. Token lookups run concurrently and are
// independent: each failure is logged and substituted with zero.
func (r *Reader) WalletBalances(ctx context.Context, chainId int64, address string) (map[string]decimal.Decimal, error) {
	cfg, ok := r.registry[chainId]
	if !ok {
		return nil, fmt.Errorf("chain %d not in registry", chainId)
	}

	balances := make(map[string]decimal.Decimal, len(cfg.Tokens)+1)
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		native, err := r.NativeBalance(ctx, chainId, address)
		if err != nil {
			zap.L().Warn("Native balance lookup failed, substituting zero",
				zap.Int64("chain_id", chainId),
				zap.String("address", address),
				zap.Error(err))
			native = decimal.Zero
		}
		mu.Lock()
		balances[cfg.NativeSymbol] = native
		mu.Unlock()
	}()

	for _, token := range cfg.Tokens {
		wg.Add(1)
		go func(token TokenConfig) {
			defer wg.Done()
			value := r.TokenBalance(ctx, chainId, token, address)
			mu.Lock()
			balances[token.Symbol] = value
			mu.Unlock()
		}(token)
	}

	wg.Wait()
	return balances, nil
}

// GasPrice returns the suggested gas price in wei.
func (r *Reader) GasPrice(ctx context.Context, chainId int64) (decimal.Decimal, error) {
	client, err := r.client(chainId)
	if err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	price, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("gas price lookup on chain %d: %w", chainId, err)
	}

	return decimal.NewFromBigInt(price, 0), nil
}

// TransactionReceipt returns the receipt for a mined transaction hash.
func (r *Reader) TransactionReceipt(ctx context.Context, chainId int64, txHash string) (*types.Receipt, error) {
	client, err := r.client(chainId)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("receipt lookup for %s on chain %d: %w", txHash, chainId, err)
	}

	return receipt, nil
}

// Close releases all dialed RPC clients.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for chainId, client := range r.clients {
		client.Close()
		delete(r.clients, chainId)
	}
}
