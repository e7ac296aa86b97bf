// Package ledgertest provides an in-memory auction ledger that stands in for a
// wallet provider in tests. It decodes calldata with the real auction ABI and
// applies simplified auction rules.
package ledgertest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/auctiondapp/internal/contract"
	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// Ledger is a fake wallet provider backed by a single auction.
type Ledger struct {
	mu sync.Mutex

	Accounts []common.Address
	// RejectAccounts makes RequestAccounts fail as if the user declined.
	RejectAccounts bool
	// CallErr is returned by Call when set.
	CallErr error

	state   domain.AuctionSnapshot
	pending map[common.Address]*big.Int
	sent    []domain.TxRequest
	calls   int
	nonce   uint64
}

// New creates a ledger whose auction is owned by owner with the given minimum bid.
func New(owner common.Address, minimumBid *big.Int, accounts ...common.Address) *Ledger {
	if len(accounts) == 0 {
		accounts = []common.Address{owner}
	}
	return &Ledger{
		Accounts: accounts,
		state: domain.AuctionSnapshot{
			Owner:      owner,
			HighestBid: new(big.Int),
			MinimumBid: new(big.Int).Set(minimumBid),
		},
		pending: make(map[common.Address]*big.Int),
	}
}

// SetState replaces the auction state.
func (l *Ledger) SetState(s domain.AuctionSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s.HighestBid == nil {
		s.HighestBid = new(big.Int)
	}
	if s.MinimumBid == nil {
		s.MinimumBid = new(big.Int)
	}
	l.state = s
}

// State returns the current auction state.
func (l *Ledger) State() domain.AuctionSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Sent returns every transaction accepted for submission, reverted ones included.
func (l *Ledger) Sent() []domain.TxRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.TxRequest(nil), l.sent...)
}

// Calls returns the number of read calls served.
func (l *Ledger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// Pending returns the withdrawable balance of account.
func (l *Ledger) Pending(account common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.pending[account]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (l *Ledger) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if l.RejectAccounts {
		return nil, domain.WithKind(domain.ErrUserRejected, errors.New("user rejected the request"))
	}
	return append([]common.Address(nil), l.Accounts...), nil
}

func (l *Ledger) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.CallErr != nil {
		return nil, l.CallErr
	}
	method, _, err := contract.DecodeCall(data)
	if err != nil {
		return nil, err
	}
	if method.Name != contract.MethodGetAuctionDetails {
		return nil, errors.Errorf("%s is not a view function", method.Name)
	}
	l.calls++
	return contract.EncodeAuctionDetails(l.state)
}

func (l *Ledger) SendTransaction(ctx context.Context, tx domain.TxRequest) (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sent = append(l.sent, tx)
	l.nonce++
	hash := crypto.Keccak256Hash(tx.From.Bytes(), new(big.Int).SetUint64(l.nonce).Bytes(), tx.Data)

	method, args, err := contract.DecodeCall(tx.Data)
	if err != nil {
		return common.Hash{}, err
	}
	if err := l.apply(tx, method.Name, args); err != nil {
		return common.Hash{}, domain.WithKind(domain.ErrTransactionReverted, err)
	}
	return hash, nil
}

func (l *Ledger) apply(tx domain.TxRequest, method string, args []interface{}) error {
	value := tx.ValueOrZero()
	if method != contract.MethodPlaceBid && value.Sign() != 0 {
		return errors.Errorf("execution reverted: %s is not payable", method)
	}

	switch method {
	case contract.MethodPlaceBid:
		switch {
		case l.state.Ended:
			return errors.New("execution reverted: auction has ended")
		case l.state.Paused:
			return errors.New("execution reverted: auction is paused")
		case value.Cmp(l.state.MinimumBid) < 0:
			return errors.New("execution reverted: bid below minimum")
		case value.Cmp(l.state.HighestBid) <= 0:
			return errors.New("execution reverted: bid not high enough")
		}
		if l.state.HighestBid.Sign() > 0 {
			l.credit(l.state.HighestBidder, l.state.HighestBid)
		}
		l.state.HighestBidder = tx.From
		l.state.HighestBid = new(big.Int).Set(value)
	case contract.MethodWithdraw:
		amount, ok := l.pending[tx.From]
		if !ok || amount.Sign() == 0 {
			return errors.New("execution reverted: nothing to withdraw")
		}
		delete(l.pending, tx.From)
	case contract.MethodEndAuction, contract.MethodPauseAuction, contract.MethodResumeAuction, contract.MethodResetAuction:
		if tx.From != l.state.Owner {
			return errors.New("execution reverted: only owner")
		}
		return l.applyOwner(method, args)
	default:
		return errors.Errorf("execution reverted: %s is not a transaction", method)
	}
	return nil
}

func (l *Ledger) applyOwner(method string, args []interface{}) error {
	switch method {
	case contract.MethodEndAuction:
		if l.state.Ended {
			return errors.New("execution reverted: auction already ended")
		}
		l.state.Ended = true
	case contract.MethodPauseAuction:
		l.state.Paused = true
	case contract.MethodResumeAuction:
		l.state.Paused = false
	case contract.MethodResetAuction:
		minimum, ok := args[0].(*big.Int)
		if !ok {
			return errors.New("execution reverted: bad minimum bid")
		}
		if l.state.HighestBid.Sign() > 0 {
			l.credit(l.state.HighestBidder, l.state.HighestBid)
		}
		l.state = domain.AuctionSnapshot{
			Owner:      l.state.Owner,
			HighestBid: new(big.Int),
			MinimumBid: new(big.Int).Set(minimum),
		}
	}
	return nil
}

func (l *Ledger) credit(account common.Address, amount *big.Int) {
	current, ok := l.pending[account]
	if !ok {
		current = new(big.Int)
	}
	l.pending[account] = new(big.Int).Add(current, amount)
}
