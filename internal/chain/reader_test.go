package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRegistry() map[int64]ChainConfig {
	return map[int64]ChainConfig{
		1: {
			ChainId:        1,
			Name:           "ethereum",
			RpcURL:         "https://rpc.example",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
		},
	}
}

func TestTokenBalance_PlaceholderAddress(t *testing.T) {
	reader := NewReader(testRegistry(), time.Second)
	defer reader.Close()

	// The placeholder contract address short-circuits without any network
	// traffic; the test registry's RPC URL is never dialed.
	zero := reader.TokenBalance(context.Background(), 1,
		TokenConfig{Symbol: "USDT", Address: ZeroAddress, Decimals: 6}, "0xabc")
	assert.True(t, zero.IsZero())

	empty := reader.TokenBalance(context.Background(), 1,
		TokenConfig{Symbol: "USDT", Address: "", Decimals: 6}, "0xabc")
	assert.True(t, empty.IsZero())
}

func TestTokenBalance_PlaceholderCaseInsensitive(t *testing.T) {
	reader := NewReader(testRegistry(), time.Second)
	defer reader.Close()

	mixedCase := "0x0000000000000000000000000000000000000000"
	value := reader.TokenBalance(context.Background(), 1,
		TokenConfig{Symbol: "USDT", Address: mixedCase, Decimals: 6}, "0xABC")
	assert.True(t, value.IsZero())
}

func TestChain_UnknownChainId(t *testing.T) {
	reader := NewReader(testRegistry(), time.Second)
	defer reader.Close()

	_, ok := reader.Chain(999)
	assert.False(t, ok)

	_, err := reader.WalletBalances(context.Background(), 999, "0xabc")
	assert.Error(t, err)
}

func TestNewReader_DefaultTimeout(t *testing.T) {
	reader := NewReader(testRegistry(), 0)
	defer reader.Close()

	assert.Equal(t, 10*time.Second, reader.callTimeout)
}
