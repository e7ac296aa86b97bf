package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

type rpcCall struct {
	method string
	args   []interface{}
}

// fakeRPC answers JSON-RPC methods from a table.
type fakeRPC struct {
	accounts []common.Address
	callOut  []byte
	txHash   common.Hash
	errs     map[string]error
	calls    []rpcCall
}

func (f *fakeRPC) CallContext(_ context.Context, result interface{}, method string, args ...interface{}) error {
	f.calls = append(f.calls, rpcCall{method: method, args: args})
	if err, ok := f.errs[method]; ok {
		return err
	}
	switch method {
	case "eth_requestAccounts", "eth_accounts":
		*result.(*[]common.Address) = f.accounts
	case "eth_call":
		*result.(*hexutil.Bytes) = f.callOut
	case "eth_sendTransaction":
		*result.(*common.Hash) = f.txHash
	}
	return nil
}

func TestNodeProvider_RequestAccounts(t *testing.T) {
	account := common.HexToAddress("0xB")
	caller := &fakeRPC{accounts: []common.Address{account}}
	p := NewNodeProvider(caller, zap.NewNop())

	accounts, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{account}, accounts)
	require.Len(t, caller.calls, 1)
	assert.Equal(t, "eth_requestAccounts", caller.calls[0].method)
}

func TestNodeProvider_RequestAccounts_FallsBackToEthAccounts(t *testing.T) {
	account := common.HexToAddress("0xB")
	caller := &fakeRPC{
		accounts: []common.Address{account},
		errs: map[string]error{
			"eth_requestAccounts": &jsonError{code: -32601, message: "the method eth_requestAccounts does not exist/is not available"},
		},
	}
	p := NewNodeProvider(caller, nil)

	accounts, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{account}, accounts)
	require.Len(t, caller.calls, 2)
	assert.Equal(t, "eth_accounts", caller.calls[1].method)
}

func TestNodeProvider_RequestAccounts_Rejected(t *testing.T) {
	caller := &fakeRPC{errs: map[string]error{
		"eth_requestAccounts": &jsonError{code: 4001, message: "User rejected the request."},
	}}
	p := NewNodeProvider(caller, nil)

	_, err := p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, domain.ErrUserRejected)
}

func TestNodeProvider_Call(t *testing.T) {
	account := common.HexToAddress("0xB")
	to := common.HexToAddress("0x8FE72375a95BeF1b2c506Bb7df70c0d7BBb58408")
	caller := &fakeRPC{accounts: []common.Address{account}, callOut: []byte{0x01}}
	p := NewNodeProvider(caller, nil)

	// before connecting the call carries no sender
	out, err := p.Call(context.Background(), to, []byte{0xaa})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, out)
	first := caller.calls[0].args[0].(callArgs)
	assert.Nil(t, first.From)
	assert.Equal(t, "latest", caller.calls[0].args[1])

	_, err = p.RequestAccounts(context.Background())
	require.NoError(t, err)
	_, err = p.Call(context.Background(), to, []byte{0xaa})
	require.NoError(t, err)
	last := caller.calls[len(caller.calls)-1].args[0].(callArgs)
	require.NotNil(t, last.From)
	assert.Equal(t, account, *last.From)
	assert.Equal(t, to, last.To)
}

func TestNodeProvider_Call_ReadError(t *testing.T) {
	caller := &fakeRPC{errs: map[string]error{
		"eth_call": &jsonError{code: 3, message: "execution reverted"},
	}}
	p := NewNodeProvider(caller, nil)

	_, err := p.Call(context.Background(), common.Address{}, nil)
	assert.ErrorIs(t, err, domain.ErrTransactionReverted)
}

func TestNodeProvider_SendTransaction(t *testing.T) {
	hash := common.HexToHash("0x1234")
	caller := &fakeRPC{txHash: hash}
	p := NewNodeProvider(caller, nil)

	from := common.HexToAddress("0xB")
	got, err := p.SendTransaction(context.Background(), domain.TxRequest{
		Method: "placeBid",
		From:   from,
		To:     common.HexToAddress("0xC"),
		Value:  big.NewInt(5e17),
		Data:   []byte{0x01},
	})
	require.NoError(t, err)
	assert.Equal(t, hash, got)

	args := caller.calls[0].args[0].(callArgs)
	assert.Equal(t, "eth_sendTransaction", caller.calls[0].method)
	assert.Equal(t, from, *args.From)
	assert.Equal(t, 0, args.Value.ToInt().Cmp(big.NewInt(5e17)))
	assert.Equal(t, hexutil.Bytes{0x01}, args.Data)
}

func TestNodeProvider_SendTransaction_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{name: "rejected", err: &jsonError{code: 4001, message: "User denied transaction signature."}, kind: domain.ErrUserRejected},
		{name: "reverted", err: &jsonError{code: -32000, message: "execution reverted: Auction is paused"}, kind: domain.ErrTransactionReverted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewNodeProvider(&fakeRPC{errs: map[string]error{"eth_sendTransaction": tt.err}}, nil)
			_, err := p.SendTransaction(context.Background(), domain.TxRequest{Method: "placeBid"})
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
