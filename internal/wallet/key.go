package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// Backend is the subset of ethclient.Client used for signing locally.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyProvider is a wallet holding one private key. It signs EIP-1559
// transactions locally and submits them through a node.
type KeyProvider struct {
	backend  Backend
	key      *ecdsa.PrivateKey
	account  common.Address
	approver Approver
	logger   *zap.Logger

	chainMu sync.Mutex
	chainID *big.Int
}

// KeyOption configures a KeyProvider.
type KeyOption func(*KeyProvider)

// WithChainID pins the chain id instead of asking the node.
func WithChainID(id *big.Int) KeyOption {
	return func(p *KeyProvider) {
		if id != nil && id.Sign() > 0 {
			p.chainID = new(big.Int).Set(id)
		}
	}
}

// WithApprover sets the confirmation policy. The default approves everything.
func WithApprover(a Approver) KeyOption {
	return func(p *KeyProvider) {
		if a != nil {
			p.approver = a
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) KeyOption {
	return func(p *KeyProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewKeyProvider creates a wallet for the hex private key, with or without 0x prefix.
func NewKeyProvider(backend Backend, privateKeyHex string, opts ...KeyOption) (*KeyProvider, error) {
	if backend == nil {
		return nil, errors.New("key provider backend is nil")
	}

	key := strings.TrimSpace(privateKeyHex)
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		key = key[2:]
	}
	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	p := &KeyProvider{
		backend:  backend,
		key:      privateKey,
		account:  crypto.PubkeyToAddress(privateKey.PublicKey),
		approver: AutoApprover{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// DialKeyProvider connects to rpcURL and creates a KeyProvider on top of it.
func DialKeyProvider(ctx context.Context, rpcURL, privateKeyHex string, opts ...KeyOption) (*KeyProvider, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", rpcURL)
	}
	p, err := NewKeyProvider(client, privateKeyHex, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

// Account returns the address derived from the key.
func (p *KeyProvider) Account() common.Address { return p.account }

func (p *KeyProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	accounts := []common.Address{p.account}
	ok, err := p.approver.ApproveAccounts(ctx, accounts)
	if err != nil {
		return nil, errors.Wrap(err, "account approval")
	}
	if !ok {
		return nil, errors.Wrap(domain.ErrUserRejected, "account access declined")
	}
	return accounts, nil
}

func (p *KeyProvider) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := p.backend.CallContract(ctx, ethereum.CallMsg{From: p.account, To: &to, Data: data}, nil)
	if err != nil {
		return nil, classifyError(err)
	}
	return out, nil
}

func (p *KeyProvider) SendTransaction(ctx context.Context, req domain.TxRequest) (common.Hash, error) {
	if req.From != p.account {
		return common.Hash{}, errors.Errorf("account %s is not managed by this wallet", req.From.Hex())
	}

	ok, err := p.approver.ApproveTransaction(ctx, req)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "transaction approval")
	}
	if !ok {
		return common.Hash{}, errors.Wrapf(domain.ErrUserRejected, "%s declined", req.Method)
	}

	to := req.To
	value := req.ValueOrZero()

	// estimation executes the call, so a revert surfaces here before signing
	gas, err := p.backend.EstimateGas(ctx, ethereum.CallMsg{From: p.account, To: &to, Value: value, Data: req.Data})
	if err != nil {
		return common.Hash{}, classifyError(err)
	}
	nonce, err := p.backend.PendingNonceAt(ctx, p.account)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "pending nonce")
	}
	tip, err := p.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "suggest gas tip")
	}
	head, err := p.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "latest header")
	}
	chainID, err := p.chain(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	signed, err := types.SignNewTx(p.key, types.LatestSignerForChainID(chainID), &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap(tip, head.BaseFee),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "sign transaction")
	}

	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, classifyError(err)
	}

	p.logger.Debug("signed transaction sent",
		zap.String("method", req.Method),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas),
		zap.Stringer("tx", signed.Hash()))
	return signed.Hash(), nil
}

func (p *KeyProvider) chain(ctx context.Context) (*big.Int, error) {
	p.chainMu.Lock()
	defer p.chainMu.Unlock()
	if p.chainID != nil {
		return p.chainID, nil
	}
	id, err := p.backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "chain id")
	}
	p.chainID = id
	return id, nil
}

// feeCap allows the base fee to double before the transaction stops being includable.
func feeCap(tip, baseFee *big.Int) *big.Int {
	if baseFee == nil {
		return new(big.Int).Set(tip)
	}
	return new(big.Int).Add(tip, new(big.Int).Mul(baseFee, big.NewInt(2)))
}
