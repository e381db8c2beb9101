package entities

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func TestGetSpotPrice(t *testing.T) {
	tests := []struct {
		name     string
		reserve0 *uint256.Int
		reserve1 *uint256.Int
		want     string
	}{
		{
			name:     "equal reserves",
			reserve0: uint256.NewInt(1000000),
			reserve1: uint256.NewInt(1000000),
			want:     "1000000000000000000", // 1e18
		},
		{
			name:     "2x price ratio",
			reserve0: uint256.NewInt(1000000),
			reserve1: uint256.NewInt(2000000),
			want:     "2000000000000000000", // 2e18
		},
		{
			name:     "0.5x price ratio",
			reserve0: uint256.NewInt(2000000),
			reserve1: uint256.NewInt(1000000),
			want:     "500000000000000000", // 0.5e18
		},
		{
			name:     "zero reserve0",
			reserve0: uint256.NewInt(0),
			reserve1: uint256.NewInt(1000000),
			want:     "0",
		},
		{
			name:     "nil reserves",
			reserve0: nil,
			reserve1: nil,
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pool{
				Reserve0: tt.reserve0,
				Reserve1: tt.reserve1,
			}
			assert.Equal(t, tt.want, p.GetSpotPrice().Dec())
		})
	}
}

func TestGetAmountOut(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   *uint256.Int
		reserveIn  *uint256.Int
		reserveOut *uint256.Int
		feeBps     uint64
		want       string
	}{
		{
			name:       "small pool",
			amountIn:   uint256.NewInt(100),
			reserveIn:  uint256.NewInt(1000),
			reserveOut: uint256.NewInt(2000),
			feeBps:     30,
			want:       "181",
		},
		{
			name:       "reference swap",
			amountIn:   u("50000000000000000000000"),
			reserveIn:  u("989640640000000000000397"),
			reserveOut: u("816624896791292046417276"),
			feeBps:     30,
			want:       "39162210354338456105661",
		},
		{
			name:       "no fee",
			amountIn:   uint256.NewInt(1000),
			reserveIn:  uint256.NewInt(1000000),
			reserveOut: uint256.NewInt(1000000),
			feeBps:     0,
			want:       "999", // 1e9 / 1001000
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetAmountOut(tt.amountIn, tt.reserveIn, tt.reserveOut, tt.feeBps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestGetAmountOutErrors(t *testing.T) {
	_, err := GetAmountOut(uint256.NewInt(0), uint256.NewInt(1), uint256.NewInt(1), 30)
	assert.ErrorIs(t, err, ErrInsufficientInputAmount)

	_, err = GetAmountOut(uint256.NewInt(1), uint256.NewInt(0), uint256.NewInt(1), 30)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	_, err = GetAmountOut(uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(1), 10000)
	assert.ErrorIs(t, err, ErrInvalidFee)

	maxU := new(uint256.Int).SetAllOne()
	_, err = GetAmountOut(maxU, uint256.NewInt(1), uint256.NewInt(1), 30)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestGetAmountIn(t *testing.T) {
	got, err := GetAmountIn(uint256.NewInt(1000), uint256.NewInt(1000000), uint256.NewInt(1000000), 30)
	require.NoError(t, err)
	assert.Equal(t, "1005", got.Dec())

	_, err = GetAmountIn(uint256.NewInt(1000000), uint256.NewInt(1000000), uint256.NewInt(1000000), 30)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	_, err = GetAmountIn(uint256.NewInt(0), uint256.NewInt(1), uint256.NewInt(1), 30)
	assert.ErrorIs(t, err, ErrInsufficientOutputAmount)
}

func TestGetAmountInCoversAmountOut(t *testing.T) {
	p := NewPool(uint256.NewInt(5_000_000), uint256.NewInt(7_000_000), uint256.NewInt(1))

	amountIn, err := p.GetAmountIn(uint256.NewInt(12_345), true)
	require.NoError(t, err)

	out, err := p.GetAmountOut(amountIn, true)
	require.NoError(t, err)
	assert.False(t, out.Lt(uint256.NewInt(12_345)), "amountIn %s yields %s", amountIn.Dec(), out.Dec())
}

func TestQuote(t *testing.T) {
	got, err := Quote(uint256.NewInt(10), uint256.NewInt(100), uint256.NewInt(250))
	require.NoError(t, err)
	assert.Equal(t, "25", got.Dec())

	_, err = Quote(uint256.NewInt(0), uint256.NewInt(100), uint256.NewInt(250))
	assert.ErrorIs(t, err, ErrInsufficientAmount)
}

func TestPoolMint(t *testing.T) {
	t.Run("first deposit", func(t *testing.T) {
		p := NewPool(uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(0))
		got, err := p.Mint(u("1000000000000000000"), u("4000000000000000000"))
		require.NoError(t, err)
		assert.Equal(t, "1999999999999999000", got.Dec())
	})

	t.Run("first deposit below minimum", func(t *testing.T) {
		p := NewPool(uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(0))
		_, err := p.Mint(uint256.NewInt(1000), uint256.NewInt(1000))
		assert.ErrorIs(t, err, ErrInsufficientLiquidityMinted)
	})

	t.Run("reference deposit", func(t *testing.T) {
		p := NewPool(
			u("1376001000000000000000001"),
			u("1135439096973336348800074"),
			u("1249773955360961185660707"),
		)
		got, err := p.Mint(u("10000000000000000000000"), u("8251730000000000000000"))
		require.NoError(t, err)
		assert.Equal(t, "9082651168310862636496", got.Dec())
	})

	t.Run("empty reserves with supply", func(t *testing.T) {
		p := NewPool(uint256.NewInt(0), uint256.NewInt(10), uint256.NewInt(10))
		_, err := p.Mint(uint256.NewInt(1), uint256.NewInt(1))
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})
}

func TestPoolBurn(t *testing.T) {
	p := NewPool(
		u("1386001000000000000000001"),
		u("1143690828599791099550982"),
		u("1258856608319505265102950"),
	)
	amount0, amount1, err := p.Burn(u("360000000000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, "396359964035999964036001", amount0.Dec())
	assert.Equal(t, "327065605069632849704613", amount1.Dec())

	_, _, err = p.Burn(uint256.NewInt(0))
	assert.ErrorIs(t, err, ErrInsufficientLiquidityBurned)

	empty := NewPool(uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(0))
	_, _, err = empty.Burn(uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestWarningSeverity(t *testing.T) {
	tests := []struct {
		impact string
		want   Severity
	}{
		{"-0.000000000000000000000000000000000004", SeverityNone},
		{"0", SeverityNone},
		{"0.0099", SeverityNone},
		{"0.01", SeverityLow},
		{"0.0299", SeverityLow},
		{"0.03", SeverityMedium},
		{"0.0478", SeverityMedium},
		{"0.05", SeverityHigh},
		{"0.1499", SeverityHigh},
		{"0.15", SeverityBlocked},
		{"1", SeverityBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.impact, func(t *testing.T) {
			got := WarningSeverity(decimal.RequireFromString(tt.impact))
			assert.Equal(t, tt.want, got, "severity %s", got)
		})
	}
}
