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

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pocket-wallet-go/internal/balance"
	"pocket-wallet-go/internal/common"
	"pocket-wallet-go/internal/config"
	"pocket-wallet-go/internal/poller"
	"pocket-wallet-go/internal/wallet"

	"go.uber.org/zap"
)

func main() {
	userId := flag.String("user", "", "Identity provider subject id to watch (required)")
	symbol := flag.String("symbol", "ETH", "Token symbol for the logged running total")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger, _ := zap.NewProduction()
		zap.ReplaceGlobals(logger)
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if *userId == "" {
		zap.L().Fatal("Missing required flag: -user")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting balance watcher", zap.String("user_id", *userId))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	p := poller.New(poller.Config{
		Subject:         *userId,
		Identity:        services.PrivyService,
		Reconciler:      wallet.NewReconciler(services.DbService),
		Aggregator:      balance.NewAggregator(services.ChainReader),
		RefreshInterval: cfg.Poller.RefreshInterval,
	})

	if err := p.Start(ctx); err != nil {
		zap.L().Fatal("Initial sync failed",
			zap.String("user_id", *userId),
			zap.Error(err))
	}

	zap.L().Info("Wallets synced",
		zap.Int("wallets", len(p.Wallets())),
		zap.String("total", p.TotalBalance(*symbol)),
		zap.String("symbol", *symbol))
	if primary := p.PrimaryWallet(); primary != nil {
		zap.L().Info("Primary wallet",
			zap.String("address", primary.Address),
			zap.String("type", string(primary.Type)))
	}
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	statusTicker := time.NewTicker(cfg.Poller.RefreshInterval)
	defer statusTicker.Stop()

	for {
		select {
		case <-statusTicker.C:
			if lastErr := p.LastError(); lastErr != "" {
				zap.L().Warn("Last refresh failed", zap.String("error", lastErr))
				continue
			}
			zap.L().Info("Balance total",
				zap.String("total", p.TotalBalance(*symbol)),
				zap.String("symbol", *symbol),
				zap.String("state", string(p.State())))
		case sig := <-sigChan:
			zap.L().Info("Received shutdown signal", zap.String("signal", sig.String()))
			p.Stop()
			return
		}
	}
}
