package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `
chains:
  - chain_id: 1
    name: ethereum
    rpc_url: https://rpc.example
    native_symbol: ETH
    tokens:
      - symbol: USDC
        address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
        decimals: 6
  - chain_id: 8453
    name: base
    rpc_url: https://base.example
    native_symbol: ETH
    native_decimals: 18
`)

	registry, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, registry, 2)

	eth := registry[1]
	assert.Equal(t, "ethereum", eth.Name)
	// Omitted native_decimals defaults to 18.
	assert.Equal(t, int32(18), eth.NativeDecimals)
	require.Len(t, eth.Tokens, 1)
	assert.Equal(t, "USDC", eth.Tokens[0].Symbol)
	assert.Equal(t, int32(6), eth.Tokens[0].Decimals)
}

func TestLoadRegistry_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing chain_id", "chains:\n  - name: x\n    rpc_url: https://rpc.example\n    native_symbol: ETH\n"},
		{"missing rpc_url", "chains:\n  - chain_id: 1\n    native_symbol: ETH\n"},
		{"missing native_symbol", "chains:\n  - chain_id: 1\n    rpc_url: https://rpc.example\n"},
		{"token missing symbol", "chains:\n  - chain_id: 1\n    rpc_url: https://rpc.example\n    native_symbol: ETH\n    tokens:\n      - address: \"0xabc\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRegistry(writeRegistry(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
