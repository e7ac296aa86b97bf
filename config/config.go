package config

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/auctiondapp/internal/contract"
	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// PrivateKeyEnv holds the signing key for the local wallet. Keys are never read from files or flags.
const PrivateKeyEnv = "AUCTION_PRIVATE_KEY"

// Wallet kinds.
const (
	WalletKey  = "key"
	WalletNode = "node"
)

// Approval modes.
const (
	ApproveAuto   = "auto"
	ApprovePrompt = "prompt"
)

const (
	defaultRPCURL     = "http://127.0.0.1:8545"
	defaultListenAddr = ":8000"
)

type Config struct {
	RPCURL       string
	Contract     common.Address
	ChainID      *big.Int // nil means ask the node
	Wallet       string
	Approve      string
	UnitSymbol   string
	ListenAddr   string
	TLSDomains   []string
	CertCacheDir string
	PrivateKey   string

	// Command and Args are the positional arguments, e.g. "bid 0.5".
	Command string
	Args    []string
}

// ConfigTmp is the yaml representation of Config.
type ConfigTmp struct {
	RPCURL       string   `yaml:"rpc_url"`
	Contract     string   `yaml:"contract"`
	ChainID      string   `yaml:"chain_id,omitempty"`
	Wallet       string   `yaml:"wallet,omitempty"`
	Approve      string   `yaml:"approve,omitempty"`
	UnitSymbol   string   `yaml:"unit_symbol,omitempty"`
	ListenAddr   string   `yaml:"listen_addr,omitempty"`
	TLSDomains   []string `yaml:"tls_domains,omitempty"`
	CertCacheDir string   `yaml:"cert_cache_dir,omitempty"`
}

// Get reads configuration from the process arguments and environment.
func Get() (Config, error) {
	return Parse(os.Args[1:], os.Getenv)
}

// Parse builds a Config from defaults, an optional yaml file given by -config,
// and flags, in increasing priority.
func Parse(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("auction", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	rpcURL := fs.String("rpc", defaultRPCURL, "JSON-RPC endpoint of the node")
	contractAddr := fs.String("contract", contract.DefaultAddress, "auction contract address")
	chainID := fs.String("chain-id", "", "chain id, asked from the node when empty")
	wallet := fs.String("wallet", "", "wallet kind: key (AUCTION_PRIVATE_KEY) or node (node-managed accounts)")
	approve := fs.String("approve", ApproveAuto, "confirmation mode for the key wallet: auto or prompt")
	unit := fs.String("unit", domain.DefaultUnitSymbol, "currency symbol shown next to amounts")
	listen := fs.String("listen", defaultListenAddr, "web server listen address")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	tmp := ConfigTmp{
		RPCURL:     *rpcURL,
		Contract:   *contractAddr,
		ChainID:    *chainID,
		Wallet:     *wallet,
		Approve:    *approve,
		UnitSymbol: *unit,
		ListenAddr: *listen,
	}

	if *configPath != "" {
		fromFile, err := readYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		explicit := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		tmp = merge(fromFile, tmp, explicit)
	}

	cfg, err := tmp.toConfig()
	if err != nil {
		return Config{}, err
	}

	cfg.PrivateKey = strings.TrimSpace(getenv(PrivateKeyEnv))
	if cfg.Wallet == "" {
		cfg.Wallet = WalletNode
		if cfg.PrivateKey != "" {
			cfg.Wallet = WalletKey
		}
	}
	if cfg.Wallet == WalletKey && cfg.PrivateKey == "" {
		return Config{}, fmt.Errorf("wallet %q requires %s to be set", WalletKey, PrivateKeyEnv)
	}

	if positional := fs.Args(); len(positional) > 0 {
		cfg.Command = positional[0]
		cfg.Args = positional[1:]
	}
	return cfg, nil
}

func readYaml(path string) (ConfigTmp, error) {
	var tmp ConfigTmp
	f, err := os.ReadFile(path)
	if err != nil {
		return tmp, err
	}
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return tmp, fmt.Errorf("incorrect yaml config %s: %w", path, err)
	}
	return tmp, nil
}

// merge fills empty file values from flag defaults; explicitly set flags always win.
func merge(file, flags ConfigTmp, explicit map[string]bool) ConfigTmp {
	pick := func(name, fromFile, fromFlag string) string {
		if explicit[name] || fromFile == "" {
			return fromFlag
		}
		return fromFile
	}
	return ConfigTmp{
		RPCURL:       pick("rpc", file.RPCURL, flags.RPCURL),
		Contract:     pick("contract", file.Contract, flags.Contract),
		ChainID:      pick("chain-id", file.ChainID, flags.ChainID),
		Wallet:       pick("wallet", file.Wallet, flags.Wallet),
		Approve:      pick("approve", file.Approve, flags.Approve),
		UnitSymbol:   pick("unit", file.UnitSymbol, flags.UnitSymbol),
		ListenAddr:   pick("listen", file.ListenAddr, flags.ListenAddr),
		TLSDomains:   file.TLSDomains,
		CertCacheDir: file.CertCacheDir,
	}
}

func (c ConfigTmp) toConfig() (Config, error) {
	if !common.IsHexAddress(c.Contract) {
		return Config{}, fmt.Errorf("incorrect 'contract' param: %q is not an address", c.Contract)
	}
	if strings.TrimSpace(c.RPCURL) == "" {
		return Config{}, fmt.Errorf("'rpc_url' param is required")
	}

	cfg := Config{
		RPCURL:       c.RPCURL,
		Contract:     common.HexToAddress(c.Contract),
		Wallet:       c.Wallet,
		Approve:      c.Approve,
		UnitSymbol:   c.UnitSymbol,
		ListenAddr:   c.ListenAddr,
		TLSDomains:   c.TLSDomains,
		CertCacheDir: c.CertCacheDir,
	}

	if c.ChainID != "" {
		id, ok := new(big.Int).SetString(c.ChainID, 10)
		if !ok || id.Sign() <= 0 {
			return Config{}, fmt.Errorf("incorrect 'chain_id' param: %q", c.ChainID)
		}
		cfg.ChainID = id
	}

	switch cfg.Wallet {
	case "", WalletKey, WalletNode:
	default:
		return Config{}, fmt.Errorf("incorrect 'wallet' param: %q (want %s or %s)", cfg.Wallet, WalletKey, WalletNode)
	}
	switch cfg.Approve {
	case ApproveAuto, ApprovePrompt:
	default:
		return Config{}, fmt.Errorf("incorrect 'approve' param: %q (want %s or %s)", cfg.Approve, ApproveAuto, ApprovePrompt)
	}
	if cfg.UnitSymbol == "" {
		cfg.UnitSymbol = domain.DefaultUnitSymbol
	}
	return cfg, nil
}
