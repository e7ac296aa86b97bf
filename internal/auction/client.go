// Package auction connects a wallet provider to the auction contract and
// renders the contract state on a display surface.
package auction

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/auctiondapp/internal/contract"
	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// Provider is the wallet: it grants account access, serves read calls and
// signs and submits transactions.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	SendTransaction(ctx context.Context, tx domain.TxRequest) (common.Hash, error)
}

// Display receives the full set of auction fields on every refresh.
type Display interface {
	Render(view domain.AuctionView)
}

// Session is the state established by Connect.
type Session struct {
	Provider Provider
	Account  common.Address
	Contract *contract.Auction
}

// Client drives one auction contract on behalf of one connected account.
// Operations are not serialized against each other; concurrent bids are
// submitted independently and ordered by the ledger.
type Client struct {
	provider Provider
	address  common.Address
	display  Display
	unit     string
	logger   *zap.Logger

	mu      sync.RWMutex
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithUnitSymbol sets the currency symbol appended to displayed amounts.
func WithUnitSymbol(symbol string) Option {
	return func(c *Client) {
		c.unit = symbol
	}
}

// NewClient creates a disconnected client. A nil provider means no wallet is
// available; Connect will report ErrProviderUnavailable.
func NewClient(provider Provider, address common.Address, display Display, logger *zap.Logger, opts ...Option) *Client {
	if display == nil {
		display = nopDisplay{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		provider: provider,
		address:  address,
		display:  display,
		unit:     domain.DefaultUnitSymbol,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect requests account access, binds the contract and loads its state.
// The session stays established even if the initial refresh fails.
func (c *Client) Connect(ctx context.Context) error {
	if c.provider == nil {
		return domain.ErrProviderUnavailable
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		return errors.Wrap(err, "request accounts")
	}
	if len(accounts) == 0 {
		return errors.Wrap(domain.ErrUserRejected, "no accounts granted")
	}

	session := &Session{
		Provider: c.provider,
		Account:  accounts[0],
		Contract: contract.NewAuction(c.address),
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.logger.Info("connected account",
		zap.String("account", session.Account.Hex()),
		zap.String("contract", c.address.Hex()))

	_, err = c.RefreshSnapshot(ctx)
	return err
}

// Session returns a copy of the current session.
func (c *Client) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Connected reports whether Connect has succeeded.
func (c *Client) Connected() bool {
	_, ok := c.Session()
	return ok
}

// RefreshSnapshot reads getAuctionDetails and renders all six fields.
func (c *Client) RefreshSnapshot(ctx context.Context) (domain.AuctionSnapshot, error) {
	session, err := c.currentSession()
	if err != nil {
		return domain.AuctionSnapshot{}, err
	}

	data, err := session.Contract.PackGetAuctionDetails()
	if err != nil {
		return domain.AuctionSnapshot{}, err
	}
	out, err := session.Provider.Call(ctx, session.Contract.Address(), data)
	if err != nil {
		return domain.AuctionSnapshot{}, domain.WithKind(domain.ErrReadFailure, err)
	}
	snapshot, err := session.Contract.UnpackAuctionDetails(out)
	if err != nil {
		return domain.AuctionSnapshot{}, domain.WithKind(domain.ErrReadFailure, err)
	}

	c.display.Render(domain.NewAuctionView(snapshot, c.unit))
	return snapshot, nil
}

// PlaceBid bids amount (in ether) from the connected account.
// Whether the bid is acceptable is decided by the contract alone.
func (c *Client) PlaceBid(ctx context.Context, amount string) (common.Hash, error) {
	value, err := domain.ToBaseUnits(amount)
	if err != nil {
		return common.Hash{}, err
	}
	return c.transact(ctx, contract.MethodPlaceBid, value, (*contract.Auction).PackPlaceBid, true)
}

// Withdraw reclaims outbid funds. Unlike the other transactions it does not
// refresh the displayed state.
func (c *Client) Withdraw(ctx context.Context) (common.Hash, error) {
	return c.transact(ctx, contract.MethodWithdraw, nil, (*contract.Auction).PackWithdraw, false)
}

func (c *Client) EndAuction(ctx context.Context) (common.Hash, error) {
	return c.transact(ctx, contract.MethodEndAuction, nil, (*contract.Auction).PackEndAuction, true)
}

func (c *Client) PauseAuction(ctx context.Context) (common.Hash, error) {
	return c.transact(ctx, contract.MethodPauseAuction, nil, (*contract.Auction).PackPauseAuction, true)
}

func (c *Client) ResumeAuction(ctx context.Context) (common.Hash, error) {
	return c.transact(ctx, contract.MethodResumeAuction, nil, (*contract.Auction).PackResumeAuction, true)
}

// ResetAuction restarts the auction with a new minimum bid given in ether.
func (c *Client) ResetAuction(ctx context.Context, newMinimum string) (common.Hash, error) {
	minimum, err := domain.ToBaseUnits(newMinimum)
	if err != nil {
		return common.Hash{}, err
	}
	pack := func(a *contract.Auction) ([]byte, error) {
		return a.PackResetAuction(minimum)
	}
	return c.transact(ctx, contract.MethodResetAuction, nil, pack, true)
}

// transact submits one contract call and returns once the provider has
// acknowledged it. It does not wait for the transaction to be mined.
func (c *Client) transact(
	ctx context.Context,
	method string,
	value *big.Int,
	pack func(*contract.Auction) ([]byte, error),
	refresh bool,
) (common.Hash, error) {
	session, err := c.currentSession()
	if err != nil {
		return common.Hash{}, err
	}

	data, err := pack(session.Contract)
	if err != nil {
		return common.Hash{}, err
	}

	tx := domain.TxRequest{
		Method: method,
		From:   session.Account,
		To:     session.Contract.Address(),
		Value:  value,
		Data:   data,
	}
	hash, err := session.Provider.SendTransaction(ctx, tx)
	if err != nil {
		c.logger.Warn("transaction failed",
			zap.String("method", method),
			zap.String("from", tx.From.Hex()),
			zap.Error(err))
		return common.Hash{}, errors.Wrapf(err, "%s", method)
	}

	c.logger.Info("transaction submitted",
		zap.String("method", method),
		zap.String("from", tx.From.Hex()),
		zap.String("value", tx.ValueOrZero().String()),
		zap.Stringer("tx", hash))

	if !refresh {
		return hash, nil
	}
	if _, err := c.RefreshSnapshot(ctx); err != nil {
		return hash, err
	}
	return hash, nil
}

func (c *Client) currentSession() (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil, domain.ErrNotConnected
	}
	return c.session, nil
}

type nopDisplay struct{}

func (nopDisplay) Render(domain.AuctionView) {}
