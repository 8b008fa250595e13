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
	"fmt"

	"pocket-wallet-go/internal/common"
	"pocket-wallet-go/internal/config"
	"pocket-wallet-go/internal/models"

	"go.uber.org/zap"
)

func formatBalance(wallet models.Wallet) string {
	if !wallet.Balance.Valid {
		return "unset"
	}
	return wallet.Balance.Decimal.String()
}

func printWallet(wallet models.Wallet, isLast bool) {
	prefix := "├─"
	if isLast {
		prefix = "└─"
	}
	defaultMark := ""
	if wallet.IsDefault {
		defaultMark = " (default)"
	}
	fmt.Printf("%s %s%s\n", prefix, wallet.Address, defaultMark)
	fmt.Printf("   type: %-9s chain: %-6d cached balance: %s\n",
		wallet.Type, wallet.ChainId, formatBalance(wallet))
}

func main() {
	userId := flag.String("user", "", "Identity provider subject id to inspect (required)")
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

	ctx := context.Background()

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	user, err := dbService.GetUserById(ctx, *userId)
	if err != nil {
		zap.L().Fatal("User lookup failed", zap.String("user_id", *userId), zap.Error(err))
	}

	wallets, err := dbService.GetUserWallets(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Wallet lookup failed", zap.String("user_id", user.Id), zap.Error(err))
	}

	fmt.Printf("\n┌─ User: %s", user.Id)
	if user.Email != "" {
		fmt.Printf(" (%s)", user.Email)
	}
	fmt.Printf("\n│  Wallets: %d\n", len(wallets))

	if len(wallets) == 0 {
		fmt.Println("└─ no wallets mirrored")
		return
	}

	for i, wallet := range wallets {
		printWallet(wallet, i == len(wallets)-1)
	}
}
