package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bimakw/amm-calculator/internal/domain/entities"
	"github.com/bimakw/amm-calculator/internal/infrastructure/cache"
)

// countingCache records hits and misses on top of an in-memory cache
type countingCache struct {
	*cache.InMemoryCache
	hits, misses, sets int
}

func (c *countingCache) GetQuote(ctx context.Context, key string, dest any) (bool, error) {
	found, err := c.InMemoryCache.GetQuote(ctx, key, dest)
	if found {
		c.hits++
	} else {
		c.misses++
	}
	return found, err
}

func (c *countingCache) SetQuote(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.sets++
	return c.InMemoryCache.SetQuote(ctx, key, value, ttl)
}

type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) GetQuote(context.Context, string, any) (bool, error) { return false, errCacheDown }
func (failingCache) SetQuote(context.Context, string, any, time.Duration) error {
	return errCacheDown
}
func (failingCache) Delete(context.Context, string) error { return errCacheDown }

func referenceSwap() SwapRequest {
	return SwapRequest{
		SwapToken:  d("50000000000000000000000"),
		ReserveIn:  d("989640640000000000000397"),
		ReserveOut: d("816624896791292046417276"),
	}
}

func newTestQuoteService(t *testing.T, c cache.Cache) *QuoteService {
	t.Helper()
	return NewQuoteService(newTestCalculator(t), c, time.Minute, nil)
}

func TestQuoteServiceSwap(t *testing.T) {
	svc := newTestQuoteService(t, nil)

	res, err := svc.Swap(context.Background(), referenceSwap())
	require.NoError(t, err)

	assertDecimal(t, "39162.2103543384561056611930651817390", res.Quote.AmountOut, "amountOut")
	assertDecimal(t, "38967.373486903936423543", res.MinimumAmountOut, "minimumAmountOut")
	assert.Equal(t, uint64(DefaultSlippageBps), res.SlippageBps)
	assert.Equal(t, entities.SeverityMedium, res.Severity)
	require.NotNil(t, res.OnChainAmountOut)
	assert.Equal(t, "39162210354338456105661", res.OnChainAmountOut.Dec())
	require.NotNil(t, res.OnChainSpotPrice)
	assert.Equal(t, "825173162645475075", res.OnChainSpotPrice.Dec())
}

func TestQuoteServiceSwapOverrides(t *testing.T) {
	svc := newTestQuoteService(t, nil)

	fee := decimal.Zero
	slippage := uint64(0)
	req := SwapRequest{
		SwapToken:   d("1000"),
		ReserveIn:   d("1000000"),
		ReserveOut:  d("1000000"),
		Fee:         &fee,
		SlippageBps: &slippage,
	}

	res, err := svc.Swap(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Quote.Fee.IsZero())
	assert.Equal(t, uint64(0), res.SlippageBps)
	require.NotNil(t, res.OnChainAmountOut)
	assert.Equal(t, "999", res.OnChainAmountOut.Dec())
}

func TestQuoteServiceOnChainSkipped(t *testing.T) {
	svc := newTestQuoteService(t, nil)

	tests := []struct {
		name string
		req  SwapRequest
	}{
		{"fractional swap", SwapRequest{SwapToken: d("1.5"), ReserveIn: d("1e6"), ReserveOut: d("1e6")}},
		{"fractional reserve", SwapRequest{SwapToken: d("1000"), ReserveIn: d("1000000.25"), ReserveOut: d("1e6")}},
		{"reserve beyond uint256", SwapRequest{SwapToken: d("1000"), ReserveIn: d("1e80"), ReserveOut: d("1e6")}},
		{"fractional fee bps", SwapRequest{SwapToken: d("1000"), ReserveIn: d("1e6"), ReserveOut: d("1e6"), Fee: ptr(d("0.00025"))}},
		{"zero swap", SwapRequest{SwapToken: decimal.Zero, ReserveIn: d("1e6"), ReserveOut: d("1e6")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Swap(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Nil(t, res.OnChainAmountOut)
		})
	}
}

func TestQuoteServiceLiquidityOnChainSkipped(t *testing.T) {
	svc := newTestQuoteService(t, nil)
	ctx := context.Background()

	mints := []struct {
		name string
		req  MintRequest
	}{
		{"fractional deposit", MintRequest{AddToken1: d("1.5"), AddToken2: d("2"), Reserve1: d("1e6"), Reserve2: d("1e6"), TotalSupply: d("1e6")}},
		{"supply beyond uint256", MintRequest{AddToken1: d("1"), AddToken2: d("1"), Reserve1: d("1e6"), Reserve2: d("1e6"), TotalSupply: d("1e78")}},
		{"nothing minted", MintRequest{AddToken1: d("1"), AddToken2: d("1"), Reserve1: d("1e6"), Reserve2: d("1e6"), TotalSupply: d("10")}},
	}
	for _, tt := range mints {
		t.Run(tt.name, func(t *testing.T) {
			q, err := svc.Mint(ctx, tt.req)
			require.NoError(t, err)
			assert.Nil(t, q.OnChainLiquidity)
		})
	}

	redeems := []struct {
		name string
		req  RedeemRequest
	}{
		{"fractional liquidity", RedeemRequest{Liquidity: d("0.5"), Reserve1: d("1e6"), Reserve2: d("1e6"), TotalSupply: d("1e6")}},
		{"nothing burned", RedeemRequest{Liquidity: d("1"), Reserve1: d("10"), Reserve2: d("1e6"), TotalSupply: d("1e6")}},
	}
	for _, tt := range redeems {
		t.Run(tt.name, func(t *testing.T) {
			q, err := svc.Redeem(ctx, tt.req)
			require.NoError(t, err)
			assert.Nil(t, q.OnChainToken1)
			assert.Nil(t, q.OnChainToken2)
		})
	}
}

func TestQuoteServiceSwapInvalidSlippage(t *testing.T) {
	svc := newTestQuoteService(t, nil)

	req := referenceSwap()
	req.SlippageBps = ptr(uint64(20000))
	_, err := svc.Swap(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidSlippage)
}

func TestQuoteServiceCachesResults(t *testing.T) {
	c := &countingCache{InMemoryCache: cache.NewInMemoryCache()}
	svc := newTestQuoteService(t, c)
	ctx := context.Background()

	first, err := svc.Swap(ctx, referenceSwap())
	require.NoError(t, err)
	second, err := svc.Swap(ctx, referenceSwap())
	require.NoError(t, err)

	assert.Equal(t, 1, c.hits)
	assert.Equal(t, 1, c.misses)
	assert.Equal(t, 1, c.sets)
	assert.True(t, first.Quote.AmountOut.Equal(second.Quote.AmountOut))
	assert.True(t, first.MinimumAmountOut.Equal(second.MinimumAmountOut))
	assert.Equal(t, first.Severity, second.Severity)
	require.NotNil(t, second.OnChainAmountOut)
	assert.Equal(t, first.OnChainAmountOut.Dec(), second.OnChainAmountOut.Dec())

	// a different fee is a different quote
	req := referenceSwap()
	req.Fee = ptr(d("0.01"))
	_, err = svc.Swap(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, c.misses)
}

func TestQuoteServiceMintAndRedeem(t *testing.T) {
	c := &countingCache{InMemoryCache: cache.NewInMemoryCache()}
	svc := newTestQuoteService(t, c)
	ctx := context.Background()

	mintReq := MintRequest{
		AddToken1:   d("10000000000000000000000"),
		AddToken2:   d("8251730000000000000000"),
		Reserve1:    d("1376001000000000000000001"),
		Reserve2:    d("1135439096973336348800074"),
		TotalSupply: d("1249773955360961185660707"),
	}
	for i := 0; i < 2; i++ {
		q, err := svc.Mint(ctx, mintReq)
		require.NoError(t, err)
		assertDecimal(t, "9082.65116831086263649636065987447352", q.Liquidity, "liquidity")
		require.NotNil(t, q.OnChainLiquidity)
		assert.Equal(t, "9082651168310862636496", q.OnChainLiquidity.Dec())
	}

	redeemReq := RedeemRequest{
		Liquidity:   d("360000000000000000000000"),
		Reserve1:    d("1386001000000000000000001"),
		Reserve2:    d("1143690828599791099550982"),
		TotalSupply: d("1258856608319505265102950"),
	}
	for i := 0; i < 2; i++ {
		q, err := svc.Redeem(ctx, redeemReq)
		require.NoError(t, err)
		assertDecimal(t, "396359.964035999964036001202492143386", q.Token1, "token1")
		assertDecimal(t, "327065.605069632849704613640047321057", q.Token2, "token2")
		require.NotNil(t, q.OnChainToken1)
		require.NotNil(t, q.OnChainToken2)
		assert.Equal(t, "396359964035999964036001", q.OnChainToken1.Dec())
		assert.Equal(t, "327065605069632849704613", q.OnChainToken2.Dec())
	}

	assert.Equal(t, 2, c.hits)
	assert.Equal(t, 2, c.sets)
}

func TestQuoteServiceErrorsAreNotCached(t *testing.T) {
	c := &countingCache{InMemoryCache: cache.NewInMemoryCache()}
	svc := newTestQuoteService(t, c)

	_, err := svc.Redeem(context.Background(), RedeemRequest{
		Liquidity:   d("1"),
		Reserve1:    d("1"),
		Reserve2:    d("1"),
		TotalSupply: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, 0, c.sets)
}

func TestQuoteServiceCacheFailureFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewQuoteService(newTestCalculator(t), failingCache{}, time.Minute, zap.New(core))

	res, err := svc.Swap(context.Background(), referenceSwap())
	require.NoError(t, err)
	assertDecimal(t, "39162.2103543384561056611930651817390", res.Quote.AmountOut, "amountOut")

	assert.Equal(t, 1, logs.FilterMessage("quote cache read failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("quote cache write failed").Len())
}

func ptr[T any](v T) *T {
	return &v
}
