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

package privy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pocket-wallet-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Service talks to the identity provider's REST API. Token verification is
// local (ES256 JWT against the app's verification key); user and wallet
// operations go over the wire.
type Service struct {
	cfg        models.PrivyConfig
	httpClient http.Client
	verifier   *Verifier
}

func NewService(cfg models.PrivyConfig) (*Service, error) {
	httpClient, err := createCustomHttpClient(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	var verifier *Verifier
	if cfg.VerificationKey != "" {
		verifier, err = NewVerifier(cfg.AppId, cfg.VerificationKey)
		if err != nil {
			return nil, fmt.Errorf("unable to load verification key: %w", err)
		}
	}

	return &Service{
		cfg:        cfg,
		httpClient: httpClient,
		verifier:   verifier,
	}, nil
}

func createCustomHttpClient(timeout time.Duration) (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// Configured reports whether the provider credentials are present and the
// verification key parses. Consumed by the health endpoint.
func (s *Service) Configured() bool {
	return s.cfg.AppId != "" && s.cfg.AppSecret != "" && s.verifier != nil
}

// VerifyToken validates a provider access token and returns the subject id.
func (s *Service) VerifyToken(ctx context.Context, token string) (string, error) {
	if s.verifier == nil {
		return "", fmt.Errorf("identity provider verification key not configured")
	}
	return s.verifier.Verify(token)
}

type linkedAccountPayload struct {
	Type             string `json:"type"`
	Address          string `json:"address,omitempty"`
	ChainId          string `json:"chain_id,omitempty"`
	WalletClientType string `json:"wallet_client_type,omitempty"`
	ConnectorType    string `json:"connector_type,omitempty"`
	Number           string `json:"number,omitempty"`
	Name             string `json:"name,omitempty"`
}

type userPayload struct {
	Id             string                 `json:"id"`
	LinkedAccounts []linkedAccountPayload `json:"linked_accounts"`
}

// GetUser fetches the provider's current view of a subject, including the
// authoritative linked-account list the reconciler mirrors.
func (s *Service) GetUser(ctx context.Context, subject string) (*models.PrivyUser, error) {
	var payload userPayload
	path := fmt.Sprintf("/api/v1/users/%s", subject)
	if err := s.doRequest(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("unable to fetch provider user: %w", err)
	}

	user := &models.PrivyUser{Subject: payload.Id}
	for _, account := range payload.LinkedAccounts {
		switch account.Type {
		case "wallet":
			user.LinkedAccounts = append(user.LinkedAccounts, models.LinkedAccount{
				Type:             account.Type,
				Address:          account.Address,
				ChainId:          parseChainId(account.ChainId),
				WalletClientType: account.WalletClientType,
				ConnectorType:    account.ConnectorType,
			})
		case "email":
			user.Email = account.Address
		case "phone":
			user.Phone = account.Number
		case "google_oauth", "apple_oauth":
			if user.Name == "" {
				user.Name = account.Name
			}
		}
	}

	return user, nil
}

type createWalletPayload struct {
	Id      string `json:"id"`
	Address string `json:"address"`
	ChainId string `json:"chain_id"`
}

// CreateWallet requests a new custodied wallet for the subject. There is no
// safe local default when this fails; errors propagate to the caller.
func (s *Service) CreateWallet(ctx context.Context, subject string, chainId int64) (*models.CreatedWallet, error) {
	body := map[string]any{
		"owner":      map[string]string{"user_id": subject},
		"chain_type": "ethereum",
	}

	var payload createWalletPayload
	if err := s.doRequest(ctx, http.MethodPost, "/api/v1/wallets", body, &payload); err != nil {
		return nil, fmt.Errorf("unable to create provider wallet: %w", err)
	}

	created := &models.CreatedWallet{
		Id:      payload.Id,
		Address: payload.Address,
		ChainId: chainId,
	}
	if parsed := parseChainId(payload.ChainId); parsed != 0 {
		created.ChainId = parsed
	}

	zap.L().Info("Provider wallet created",
		zap.String("subject", subject),
		zap.String("address", created.Address),
		zap.Int64("chain_id", created.ChainId))
	return created, nil
}

func (s *Service) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(s.cfg.AppId, s.cfg.AppSecret)
	req.Header.Set("privy-app-id", s.cfg.AppId)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(snippet))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}

	return nil
}

// parseChainId extracts the numeric id from CAIP-2 identifiers such as
// "eip155:1". Bare numbers are accepted as-is; anything else maps to 0.
func parseChainId(raw string) int64 {
	if raw == "" {
		return 0
	}
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		raw = raw[idx+1:]
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
