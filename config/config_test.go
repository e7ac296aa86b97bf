package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/auctiondapp/internal/contract"
)

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func writeYaml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, env(nil))
	require.NoError(t, err)

	assert.Equal(t, defaultRPCURL, cfg.RPCURL)
	assert.Equal(t, common.HexToAddress(contract.DefaultAddress), cfg.Contract)
	assert.Nil(t, cfg.ChainID)
	assert.Equal(t, WalletNode, cfg.Wallet)
	assert.Equal(t, ApproveAuto, cfg.Approve)
	assert.Equal(t, "ETH", cfg.UnitSymbol)
	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.Empty(t, cfg.Command)
}

func TestParse_KeyWalletFromEnv(t *testing.T) {
	cfg, err := Parse([]string{"bid", "0.5"}, env(map[string]string{PrivateKeyEnv: " 0xabc "}))
	require.NoError(t, err)

	assert.Equal(t, WalletKey, cfg.Wallet)
	assert.Equal(t, "0xabc", cfg.PrivateKey)
	assert.Equal(t, "bid", cfg.Command)
	assert.Equal(t, []string{"0.5"}, cfg.Args)
}

func TestParse_KeyWalletWithoutKey(t *testing.T) {
	_, err := Parse([]string{"-wallet", "key"}, env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), PrivateKeyEnv)
}

func TestParse_Yaml(t *testing.T) {
	path := writeYaml(t, `
rpc_url: https://public-node.testnet.rsk.co
contract: "0x000000000000000000000000000000000000dEaD"
chain_id: "31"
unit_symbol: tRBTC
listen_addr: ":9000"
tls_domains: [auction.example.com]
cert_cache_dir: /var/cache/auction
`)

	cfg, err := Parse([]string{"-config", path, "-listen", ":7000", "status"}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "https://public-node.testnet.rsk.co", cfg.RPCURL)
	assert.Equal(t, common.HexToAddress("0xdEaD"), cfg.Contract)
	assert.Equal(t, 0, cfg.ChainID.Cmp(big.NewInt(31)))
	assert.Equal(t, "tRBTC", cfg.UnitSymbol)
	// explicit flag wins over the file
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, []string{"auction.example.com"}, cfg.TLSDomains)
	assert.Equal(t, "/var/cache/auction", cfg.CertCacheDir)
	// unset in the file, falls back to flag default
	assert.Equal(t, ApproveAuto, cfg.Approve)
	assert.Equal(t, "status", cfg.Command)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad contract", args: []string{"-contract", "0x123"}},
		{name: "bad chain id", args: []string{"-chain-id", "abc"}},
		{name: "negative chain id", args: []string{"-chain-id", "-1"}},
		{name: "bad wallet", args: []string{"-wallet", "metamask"}},
		{name: "bad approve", args: []string{"-approve", "sometimes"}},
		{name: "empty rpc", args: []string{"-rpc", ""}},
		{name: "missing file", args: []string{"-config", "/nonexistent/auction.yaml"}},
		{name: "unknown flag", args: []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, env(nil))
			assert.Error(t, err)
		})
	}
}

func TestParse_MalformedYaml(t *testing.T) {
	path := writeYaml(t, "rpc_url: [unterminated")
	_, err := Parse([]string{"-config", path}, env(nil))
	assert.Error(t, err)
}
