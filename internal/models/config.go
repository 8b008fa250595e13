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

package models

import "time"

// Config is the top-level application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Privy    PrivyConfig
	Chains   ChainsConfig
	Poller   PollerConfig
	Session  SessionConfig
}

// DatabaseConfig holds SQLite connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// PrivyConfig holds identity-provider credentials. VerificationKey is the
// PEM-encoded ES256 public key the provider publishes per app.
type PrivyConfig struct {
	AppId           string
	AppSecret       string
	VerificationKey string
	BaseURL         string
	RequestTimeout  time.Duration
}

// ChainsConfig holds chain RPC settings
type ChainsConfig struct {
	RegistryFile string
	CallTimeout  time.Duration
}

// PollerConfig holds client-side refresh loop settings
type PollerConfig struct {
	RefreshInterval time.Duration
}

// SessionConfig holds local session settings
type SessionConfig struct {
	TTL time.Duration
}
