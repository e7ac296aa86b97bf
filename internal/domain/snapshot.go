package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultUnitSymbol is appended to monetary values on display.
const DefaultUnitSymbol = "ETH"

// AuctionSnapshot is the auction state returned by getAuctionDetails.
// Amounts are in wei.
type AuctionSnapshot struct {
	Owner         common.Address
	HighestBidder common.Address
	HighestBid    *big.Int
	MinimumBid    *big.Int
	Ended         bool
	Paused        bool
}

// AuctionView holds the six display fields of a snapshot.
// JSON names match the element ids of the auction page.
type AuctionView struct {
	Owner         string `json:"owner"`
	HighestBidder string `json:"highestBidder"`
	HighestBid    string `json:"highestBid"`
	MinimumBid    string `json:"minimumBid"`
	AuctionEnded  string `json:"auctionEnded"`
	AuctionPaused string `json:"auctionPaused"`
}

// NewAuctionView formats a snapshot for display. An empty unit falls back to DefaultUnitSymbol.
func NewAuctionView(s AuctionSnapshot, unit string) AuctionView {
	if unit == "" {
		unit = DefaultUnitSymbol
	}
	return AuctionView{
		Owner:         s.Owner.Hex(),
		HighestBidder: s.HighestBidder.Hex(),
		HighestBid:    FromBaseUnits(s.HighestBid) + " " + unit,
		MinimumBid:    FromBaseUnits(s.MinimumBid) + " " + unit,
		AuctionEnded:  yesNo(s.Ended),
		AuctionPaused: yesNo(s.Paused),
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
