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

package common

import (
	"context"
	"errors"
	"log"
	"syscall"

	"pocket-wallet-go/internal/chain"
	"pocket-wallet-go/internal/database"
	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/privy"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export or the
	// container runtime; a missing .env is not an error.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	DbService    *database.Service
	PrivyService *privy.Service
	ChainReader  *chain.Reader
}

func (s *Services) Close() {
	if s.ChainReader != nil {
		s.ChainReader.Close()
	}
	if s.DbService != nil {
		s.DbService.Close()
	}
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// isIgnorableSyncError filters the EINVAL/ENOTTY zap emits when stderr is a
// terminal.
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTTY) ||
		errors.Is(err, syscall.EBADF)
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Loading identity provider credentials")
	privyService, err := privy.NewService(cfg.Privy)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	if !privyService.Configured() {
		zap.L().Warn("Identity provider credentials incomplete; verification will fail until configured")
	}

	zap.L().Info("Loading chain registry", zap.String("file", cfg.Chains.RegistryFile))
	registry, err := chain.LoadRegistry(cfg.Chains.RegistryFile)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	chainReader := chain.NewReader(registry, cfg.Chains.CallTimeout)

	return &Services{
		DbService:    dbService,
		PrivyService: privyService,
		ChainReader:  chainReader,
	}, nil
}

// InitializeDatabaseOnly initializes just the database service.
// Useful for read-only tools like the balances CLI.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	return database.NewService(ctx, cfg.Database)
}
