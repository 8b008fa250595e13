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
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// ZeroAddress is the placeholder used for tokens with no deployed contract
// on a chain; lookups against it short-circuit to a zero balance.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// TokenConfig describes one ERC-20 contract on a chain.
type TokenConfig struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals int32  `yaml:"decimals"`
}

// ChainConfig describes one EVM network and its known token contracts.
type ChainConfig struct {
	ChainId        int64         `yaml:"chain_id"`
	Name           string        `yaml:"name"`
	RpcURL         string        `yaml:"rpc_url"`
	NativeSymbol   string        `yaml:"native_symbol"`
	NativeDecimals int32         `yaml:"native_decimals"`
	Tokens         []TokenConfig `yaml:"tokens"`
}

type registryFile struct {
	Chains []ChainConfig `yaml:"chains"`
}

// LoadRegistry reads the chain/token registry from a YAML file.
func LoadRegistry(registryPath string) (map[int64]ChainConfig, error) {
	if !filepath.IsAbs(registryPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		registryPath = filepath.Join(wd, registryPath)
	}

	data, err := os.ReadFile(registryPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", registryPath, err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", registryPath, err)
	}

	registry := make(map[int64]ChainConfig, len(file.Chains))
	for i, chain := range file.Chains {
		if chain.ChainId == 0 {
			return nil, fmt.Errorf("chain at index %d missing chain_id", i)
		}
		if chain.RpcURL == "" {
			return nil, fmt.Errorf("chain %d missing rpc_url", chain.ChainId)
		}
		if chain.NativeSymbol == "" {
			return nil, fmt.Errorf("chain %d missing native_symbol", chain.ChainId)
		}
		if chain.NativeDecimals == 0 {
			chain.NativeDecimals = 18
		}
		for j, token := range chain.Tokens {
			if token.Symbol == "" {
				return nil, fmt.Errorf("chain %d token at index %d missing symbol", chain.ChainId, j)
			}
		}
		registry[chain.ChainId] = chain
	}

	return registry, nil
}
