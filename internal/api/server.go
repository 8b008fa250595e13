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

package api

import (
	"context"
	"net/http"
	"time"

	"pocket-wallet-go/internal/balance"
	"pocket-wallet-go/internal/ledger"
	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/session"
	"pocket-wallet-go/internal/store"
	"pocket-wallet-go/internal/wallet"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// IdentityProvider is the slice of the provider client the HTTP layer needs.
type IdentityProvider interface {
	VerifyToken(ctx context.Context, token string) (string, error)
	GetUser(ctx context.Context, subject string) (*models.PrivyUser, error)
	CreateWallet(ctx context.Context, subject string, chainId int64) (*models.CreatedWallet, error)
	Configured() bool
}

// Server wires the route handlers. All dependencies are injected; there is
// no package-level state.
type Server struct {
	store      store.MirrorStore
	identity   IdentityProvider
	reconciler *wallet.Reconciler
	recorder   *ledger.Recorder
	aggregator *balance.Aggregator
	sessions   *session.Manager
}

func NewServer(
	mirror store.MirrorStore,
	identity IdentityProvider,
	reconciler *wallet.Reconciler,
	recorder *ledger.Recorder,
	aggregator *balance.Aggregator,
	sessions *session.Manager,
) *Server {
	return &Server{
		store:      mirror,
		identity:   identity,
		reconciler: reconciler,
		recorder:   recorder,
		aggregator: aggregator,
		sessions:   sessions,
	}
}

// Router builds the chi route tree.
func (s *Server) Router(cfg models.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/auth/verify", s.handleVerify)

	r.Group(func(r chi.Router) {
		r.Use(s.requireIdentity)
		r.Post("/api/wallet/sync", s.handleWalletSync)
		r.Post("/api/wallet/create", s.handleWalletCreate)
		r.Post("/api/transaction/create", s.handleTransactionCreate)
		r.Get("/api/transaction/list", s.handleTransactionList)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/api/wallet/balance", s.handleWalletBalance)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := s.store.Ping(r.Context()) == nil
	providerOK := s.identity.Configured()

	status := "ok"
	code := http.StatusOK
	if !dbOK || !providerOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, models.HealthView{
		Status:          status,
		Database:        dbOK,
		PrivyConfigured: providerOK,
	})
}
