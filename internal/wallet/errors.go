package wallet

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// JSON-RPC error codes with a wallet meaning.
const (
	codeUserRejected    = 4001  // EIP-1193
	codeExecutionRevert = 3     // geth eth_call / eth_estimateGas revert
	codeMethodNotFound  = -32601
)

// classifyError maps node and wallet errors onto the domain error kinds.
// Unknown errors pass through untouched.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return domain.WithKind(domain.ErrUserRejected, err)
		case codeExecutionRevert:
			return domain.WithKind(domain.ErrTransactionReverted, withRevertReason(err))
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "execution reverted") {
		return domain.WithKind(domain.ErrTransactionReverted, withRevertReason(err))
	}
	return err
}

// withRevertReason decodes an Error(string) payload attached to err, if any.
func withRevertReason(err error) error {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return err
	}
	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return err
	}
	raw, decodeErr := hexutil.Decode(hexData)
	if decodeErr != nil {
		return err
	}
	reason, unpackErr := abi.UnpackRevert(raw)
	if unpackErr != nil || strings.Contains(err.Error(), reason) {
		return err
	}
	return errors.Wrap(err, reason)
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeMethodNotFound
}
