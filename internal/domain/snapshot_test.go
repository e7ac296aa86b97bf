package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestNewAuctionView(t *testing.T) {
	owner := common.HexToAddress("0xA")
	bidder := common.HexToAddress("0xB")

	tests := []struct {
		name     string
		snapshot AuctionSnapshot
		unit     string
		expected AuctionView
	}{
		{
			name: "open auction",
			snapshot: AuctionSnapshot{
				Owner:         owner,
				HighestBidder: bidder,
				HighestBid:    new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
				MinimumBid:    big.NewInt(1e18),
			},
			expected: AuctionView{
				Owner:         owner.Hex(),
				HighestBidder: bidder.Hex(),
				HighestBid:    "2 ETH",
				MinimumBid:    "1 ETH",
				AuctionEnded:  "No",
				AuctionPaused: "No",
			},
		},
		{
			name: "ended and paused with custom unit",
			snapshot: AuctionSnapshot{
				Owner:      owner,
				HighestBid: big.NewInt(5e17),
				MinimumBid: nil,
				Ended:      true,
				Paused:     true,
			},
			unit: "tRBTC",
			expected: AuctionView{
				Owner:         owner.Hex(),
				HighestBidder: common.Address{}.Hex(),
				HighestBid:    "0.5 tRBTC",
				MinimumBid:    "0 tRBTC",
				AuctionEnded:  "Yes",
				AuctionPaused: "Yes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewAuctionView(tt.snapshot, tt.unit))
		})
	}
}
