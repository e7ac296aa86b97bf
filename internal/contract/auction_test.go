package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

func TestAuction_PackSelectors(t *testing.T) {
	a := NewAuction(common.HexToAddress(DefaultAddress))

	tests := []struct {
		name      string
		pack      func() ([]byte, error)
		signature string
	}{
		{name: "getAuctionDetails", pack: a.PackGetAuctionDetails, signature: "getAuctionDetails()"},
		{name: "placeBid", pack: a.PackPlaceBid, signature: "placeBid()"},
		{name: "withdraw", pack: a.PackWithdraw, signature: "withdraw()"},
		{name: "endAuction", pack: a.PackEndAuction, signature: "endAuction()"},
		{name: "pauseAuction", pack: a.PackPauseAuction, signature: "pauseAuction()"},
		{name: "resumeAuction", pack: a.PackResumeAuction, signature: "resumeAuction()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.pack()
			require.NoError(t, err)
			assert.Equal(t, selector(tt.signature), data)
		})
	}
}

func TestAuction_PackResetAuction(t *testing.T) {
	a := NewAuction(common.HexToAddress(DefaultAddress))
	minimum := big.NewInt(1e18)

	data, err := a.PackResetAuction(minimum)
	require.NoError(t, err)
	require.Len(t, data, 4+32)
	assert.Equal(t, selector("resetAuction(uint256)"), data[:4])
	assert.Equal(t, 0, new(big.Int).SetBytes(data[4:]).Cmp(minimum))

	method, args, err := DecodeCall(data)
	require.NoError(t, err)
	assert.Equal(t, MethodResetAuction, method.Name)
	require.Len(t, args, 1)
	assert.Equal(t, 0, args[0].(*big.Int).Cmp(minimum))

	_, err = a.PackResetAuction(nil)
	assert.Error(t, err)
}

func TestAuction_AuctionDetailsRoundTrip(t *testing.T) {
	a := NewAuction(common.HexToAddress(DefaultAddress))
	in := domain.AuctionSnapshot{
		Owner:         common.HexToAddress("0xA"),
		HighestBidder: common.HexToAddress("0xB"),
		HighestBid:    new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
		MinimumBid:    big.NewInt(1e18),
		Ended:         true,
		Paused:        false,
	}

	data, err := EncodeAuctionDetails(in)
	require.NoError(t, err)
	assert.Len(t, data, 6*32)

	out, err := a.UnpackAuctionDetails(data)
	require.NoError(t, err)
	assert.Equal(t, in.Owner, out.Owner)
	assert.Equal(t, in.HighestBidder, out.HighestBidder)
	assert.Equal(t, 0, in.HighestBid.Cmp(out.HighestBid))
	assert.Equal(t, 0, in.MinimumBid.Cmp(out.MinimumBid))
	assert.True(t, out.Ended)
	assert.False(t, out.Paused)
}

func TestAuction_UnpackAuctionDetails_Truncated(t *testing.T) {
	a := NewAuction(common.HexToAddress(DefaultAddress))

	_, err := a.UnpackAuctionDetails(make([]byte, 32))
	assert.Error(t, err)
}

func TestDecodeCall_Errors(t *testing.T) {
	_, _, err := DecodeCall([]byte{0x01})
	assert.Error(t, err)

	_, _, err = DecodeCall([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err)
}
