package wallet

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// RPCCaller is the subset of rpc.Client used by NodeProvider.
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// NodeProvider delegates account management and signing to the node or wallet
// at the other end of a JSON-RPC connection, the way an injected browser
// provider does.
type NodeProvider struct {
	rpc    RPCCaller
	logger *zap.Logger

	mu   sync.RWMutex
	from common.Address
}

// NewNodeProvider wraps an RPC connection.
func NewNodeProvider(caller RPCCaller, logger *zap.Logger) *NodeProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NodeProvider{rpc: caller, logger: logger}
}

// DialNodeProvider connects to rpcURL.
func DialNodeProvider(ctx context.Context, rpcURL string, logger *zap.Logger) (*NodeProvider, error) {
	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", rpcURL)
	}
	return NewNodeProvider(client, logger), nil
}

type callArgs struct {
	From  *common.Address `json:"from,omitempty"`
	To    common.Address  `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data"`
}

// RequestAccounts asks for eth_requestAccounts and falls back to eth_accounts
// on nodes that do not implement it.
func (p *NodeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	err := p.rpc.CallContext(ctx, &accounts, "eth_requestAccounts")
	if isMethodNotFound(err) {
		p.logger.Debug("eth_requestAccounts not supported, using eth_accounts")
		err = p.rpc.CallContext(ctx, &accounts, "eth_accounts")
	}
	if err != nil {
		return nil, classifyError(err)
	}
	if len(accounts) > 0 {
		p.mu.Lock()
		p.from = accounts[0]
		p.mu.Unlock()
	}
	return accounts, nil
}

func (p *NodeProvider) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	args := callArgs{To: to, Data: data}
	p.mu.RLock()
	if p.from != (common.Address{}) {
		from := p.from
		args.From = &from
	}
	p.mu.RUnlock()

	var out hexutil.Bytes
	if err := p.rpc.CallContext(ctx, &out, "eth_call", args, "latest"); err != nil {
		return nil, classifyError(err)
	}
	return out, nil
}

func (p *NodeProvider) SendTransaction(ctx context.Context, req domain.TxRequest) (common.Hash, error) {
	from := req.From
	args := callArgs{
		From:  &from,
		To:    req.To,
		Value: (*hexutil.Big)(req.ValueOrZero()),
		Data:  req.Data,
	}

	var hash common.Hash
	if err := p.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, classifyError(err)
	}

	p.logger.Debug("transaction handed to node",
		zap.String("method", req.Method),
		zap.Stringer("tx", hash))
	return hash, nil
}
