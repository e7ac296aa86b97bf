// Package contract binds the auction smart contract ABI.
package contract

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// DefaultAddress is the deployed auction the page was built against.
const DefaultAddress = "0x8FE72375a95BeF1b2c506Bb7df70c0d7BBb58408"

// Contract function names.
const (
	MethodGetAuctionDetails = "getAuctionDetails"
	MethodPlaceBid          = "placeBid"
	MethodWithdraw          = "withdraw"
	MethodEndAuction        = "endAuction"
	MethodPauseAuction      = "pauseAuction"
	MethodResumeAuction     = "resumeAuction"
	MethodResetAuction      = "resetAuction"
)

// AuctionABI is the subset of the auction contract interface used by the client.
const AuctionABI = `[
  {"inputs":[],"name":"getAuctionDetails","outputs":[
    {"internalType":"address","name":"_owner","type":"address"},
    {"internalType":"address","name":"_highestBidder","type":"address"},
    {"internalType":"uint256","name":"_highestBid","type":"uint256"},
    {"internalType":"uint256","name":"_minimumBid","type":"uint256"},
    {"internalType":"bool","name":"_auctionEnded","type":"bool"},
    {"internalType":"bool","name":"_auctionPaused","type":"bool"}
  ],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"placeBid","outputs":[],"stateMutability":"payable","type":"function"},
  {"inputs":[],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"endAuction","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"pauseAuction","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"resumeAuction","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"uint256","name":"_newMinimumBid","type":"uint256"}],"name":"resetAuction","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

var parsedABI = mustParseABI(AuctionABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Auction is a handle on one deployed auction contract.
// It only encodes calldata and decodes results; submission is the wallet's job.
type Auction struct {
	address common.Address
}

// NewAuction binds the auction ABI to address.
func NewAuction(address common.Address) *Auction {
	return &Auction{address: address}
}

// Address returns the contract address.
func (a *Auction) Address() common.Address { return a.address }

// ABI returns the parsed auction ABI.
func (a *Auction) ABI() abi.ABI { return parsedABI }

func (a *Auction) PackGetAuctionDetails() ([]byte, error) {
	return pack(MethodGetAuctionDetails)
}

func (a *Auction) PackPlaceBid() ([]byte, error) { return pack(MethodPlaceBid) }

func (a *Auction) PackWithdraw() ([]byte, error) { return pack(MethodWithdraw) }

func (a *Auction) PackEndAuction() ([]byte, error) { return pack(MethodEndAuction) }

func (a *Auction) PackPauseAuction() ([]byte, error) { return pack(MethodPauseAuction) }

func (a *Auction) PackResumeAuction() ([]byte, error) { return pack(MethodResumeAuction) }

// PackResetAuction encodes resetAuction with the new minimum bid in wei.
func (a *Auction) PackResetAuction(newMinimumBid *big.Int) ([]byte, error) {
	if newMinimumBid == nil {
		return nil, errors.New("new minimum bid is nil")
	}
	return pack(MethodResetAuction, newMinimumBid)
}

// UnpackAuctionDetails decodes the return data of getAuctionDetails.
func (a *Auction) UnpackAuctionDetails(data []byte) (domain.AuctionSnapshot, error) {
	values, err := parsedABI.Unpack(MethodGetAuctionDetails, data)
	if err != nil {
		return domain.AuctionSnapshot{}, errors.Wrap(err, "unpack getAuctionDetails")
	}
	if len(values) != 6 {
		return domain.AuctionSnapshot{}, errors.Errorf("getAuctionDetails returned %d values, want 6", len(values))
	}

	var (
		s  domain.AuctionSnapshot
		ok [6]bool
	)
	s.Owner, ok[0] = values[0].(common.Address)
	s.HighestBidder, ok[1] = values[1].(common.Address)
	s.HighestBid, ok[2] = values[2].(*big.Int)
	s.MinimumBid, ok[3] = values[3].(*big.Int)
	s.Ended, ok[4] = values[4].(bool)
	s.Paused, ok[5] = values[5].(bool)
	for i, good := range ok {
		if !good {
			return domain.AuctionSnapshot{}, errors.Errorf("getAuctionDetails value %d has unexpected type %T", i, values[i])
		}
	}

	return s, nil
}

// EncodeAuctionDetails produces getAuctionDetails return data for a snapshot.
// Stub ledgers use it to answer calls.
func EncodeAuctionDetails(s domain.AuctionSnapshot) ([]byte, error) {
	method := parsedABI.Methods[MethodGetAuctionDetails]
	return method.Outputs.Pack(
		s.Owner,
		s.HighestBidder,
		orZero(s.HighestBid),
		orZero(s.MinimumBid),
		s.Ended,
		s.Paused,
	)
}

// DecodeCall resolves calldata to the contract method and its arguments.
func DecodeCall(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, errors.Errorf("calldata too short: %d bytes", len(data))
	}
	method, err := parsedABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, errors.Wrap(err, "unknown method selector")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unpack %s arguments", method.Name)
	}
	return method, args, nil
}

func pack(method string, args ...interface{}) ([]byte, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	return data, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
