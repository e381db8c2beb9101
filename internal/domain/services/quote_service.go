package services

import (
	"context"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/amm-calculator/internal/domain/entities"
	"github.com/bimakw/amm-calculator/internal/infrastructure/cache"
)

// DefaultSlippageBps is the tolerance applied when a swap request names none (0.5%)
const DefaultSlippageBps = 50

// MintRequest holds the inputs of a liquidity deposit quote
type MintRequest struct {
	AddToken1   decimal.Decimal
	AddToken2   decimal.Decimal
	Reserve1    decimal.Decimal
	Reserve2    decimal.Decimal
	TotalSupply decimal.Decimal
}

// RedeemRequest holds the inputs of a liquidity withdrawal quote
type RedeemRequest struct {
	Liquidity   decimal.Decimal
	Reserve1    decimal.Decimal
	Reserve2    decimal.Decimal
	TotalSupply decimal.Decimal
}

// SwapRequest holds the inputs of a swap quote. A nil Fee uses the
// calculator's default, a nil SlippageBps uses DefaultSlippageBps.
type SwapRequest struct {
	SwapToken   decimal.Decimal
	ReserveIn   decimal.Decimal
	ReserveOut  decimal.Decimal
	Fee         *decimal.Decimal
	SlippageBps *uint64
}

// SwapResult is a swap quote together with its derived trade limits
type SwapResult struct {
	Quote            *entities.SwapQuote `json:"quote"`
	MinimumAmountOut decimal.Decimal     `json:"minimumAmountOut"`
	SlippageBps      uint64              `json:"slippageBps"`
	Severity         entities.Severity   `json:"severity"`
	// OnChainAmountOut is the router's integer output, nil when the inputs
	// cannot be expressed on chain.
	OnChainAmountOut *uint256.Int `json:"onChainAmountOut,omitempty"`
	// OnChainSpotPrice is reserveOut/reserveIn scaled by 1e18, as the pair
	// reports it.
	OnChainSpotPrice *uint256.Int `json:"onChainSpotPrice,omitempty"`
}

// QuoteService fronts the Calculator with a result cache
type QuoteService struct {
	calculator *Calculator
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewQuoteService creates a quote service. c may be nil to disable caching.
func NewQuoteService(calculator *Calculator, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		calculator: calculator,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Mint quotes the liquidity minted for a deposit
func (s *QuoteService) Mint(ctx context.Context, req MintRequest) (*entities.LiquidityQuote, error) {
	key := cache.QuoteCacheKey(cache.KindMint, req.AddToken1, req.AddToken2, req.Reserve1, req.Reserve2, req.TotalSupply)

	var cached entities.LiquidityQuote
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	quote, err := s.calculator.Liquidity(req.AddToken1, req.AddToken2, req.Reserve1, req.Reserve2, req.TotalSupply)
	if err != nil {
		return nil, err
	}
	quote.OnChainLiquidity = s.onChainLiquidity(req)

	s.store(ctx, key, quote)
	return quote, nil
}

// Redeem quotes the tokens paid out for burning liquidity
func (s *QuoteService) Redeem(ctx context.Context, req RedeemRequest) (*entities.RedemptionQuote, error) {
	key := cache.QuoteCacheKey(cache.KindRedeem, req.Liquidity, req.Reserve1, req.Reserve2, req.TotalSupply)

	var cached entities.RedemptionQuote
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	quote, err := s.calculator.Redemption(req.Liquidity, req.Reserve1, req.Reserve2, req.TotalSupply)
	if err != nil {
		return nil, err
	}
	quote.OnChainToken1, quote.OnChainToken2 = s.onChainRedemption(req)

	s.store(ctx, key, quote)
	return quote, nil
}

// Swap quotes an exact-input swap, its minimum output under the slippage
// tolerance and, when possible, the on-chain router output.
func (s *QuoteService) Swap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	fee := s.calculator.Fee()
	if req.Fee != nil {
		fee = *req.Fee
	}
	slippageBps := uint64(DefaultSlippageBps)
	if req.SlippageBps != nil {
		slippageBps = *req.SlippageBps
	}

	key := cache.QuoteCacheKey(cache.KindSwap, req.SwapToken, req.ReserveIn, req.ReserveOut, fee,
		decimal.NewFromInt(int64(slippageBps)))

	var cached SwapResult
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	quote, err := s.calculator.SwapWithFee(req.SwapToken, req.ReserveIn, req.ReserveOut, fee)
	if err != nil {
		return nil, err
	}

	minimum, err := s.calculator.MinimumAmountOut(quote, slippageBps)
	if err != nil {
		return nil, err
	}

	result := &SwapResult{
		Quote:            quote,
		MinimumAmountOut: minimum,
		SlippageBps:      slippageBps,
		Severity:         entities.WarningSeverity(quote.PriceImpact),
		OnChainAmountOut: s.onChainAmountOut(req.SwapToken, req.ReserveIn, req.ReserveOut, fee),
		OnChainSpotPrice: onChainSpotPrice(req.ReserveIn, req.ReserveOut),
	}

	s.store(ctx, key, result)
	return result, nil
}

// onChainAmountOut runs the integer router math when every input is a whole
// number of smallest units and the fee is a whole number of basis points.
func (s *QuoteService) onChainAmountOut(swapToken, reserveIn, reserveOut, fee decimal.Decimal) *uint256.Int {
	feeBps := fee.Mul(bpsDivision)
	if !feeBps.IsInteger() {
		return nil
	}

	ints, ok := toUint256s(swapToken, reserveIn, reserveOut)
	if !ok {
		return nil
	}

	pool := entities.NewPool(ints[1], ints[2], new(uint256.Int))
	pool.FeeBps = feeBps.BigInt().Uint64()

	out, err := pool.GetAmountOut(ints[0], true)
	if err != nil {
		s.logger.Debug("on-chain amount unavailable", zap.Error(err))
		return nil
	}
	return out
}

func onChainSpotPrice(reserveIn, reserveOut decimal.Decimal) *uint256.Int {
	ints, ok := toUint256s(reserveIn, reserveOut)
	if !ok {
		return nil
	}
	price := entities.NewPool(ints[0], ints[1], new(uint256.Int)).GetSpotPrice()
	if price.IsZero() {
		return nil
	}
	return price
}

// onChainLiquidity runs the pair contract's mint for the deposit.
func (s *QuoteService) onChainLiquidity(req MintRequest) *uint256.Int {
	ints, ok := toUint256s(req.AddToken1, req.AddToken2, req.Reserve1, req.Reserve2, req.TotalSupply)
	if !ok {
		return nil
	}

	liquidity, err := entities.NewPool(ints[2], ints[3], ints[4]).Mint(ints[0], ints[1])
	if err != nil {
		s.logger.Debug("on-chain liquidity unavailable", zap.Error(err))
		return nil
	}
	return liquidity
}

// onChainRedemption runs the pair contract's burn for the withdrawal.
func (s *QuoteService) onChainRedemption(req RedeemRequest) (*uint256.Int, *uint256.Int) {
	ints, ok := toUint256s(req.Liquidity, req.Reserve1, req.Reserve2, req.TotalSupply)
	if !ok {
		return nil, nil
	}

	amount0, amount1, err := entities.NewPool(ints[1], ints[2], ints[3]).Burn(ints[0])
	if err != nil {
		s.logger.Debug("on-chain redemption unavailable", zap.Error(err))
		return nil, nil
	}
	return amount0, amount1
}

func (s *QuoteService) lookup(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.GetQuote(ctx, key, dest)
	if err != nil {
		s.logger.Warn("quote cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *QuoteService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetQuote(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("quote cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toUint256s(values ...decimal.Decimal) ([]*uint256.Int, bool) {
	out := make([]*uint256.Int, len(values))
	for i, d := range values {
		if d.Sign() < 0 || !d.IsInteger() {
			return nil, false
		}
		v, overflow := uint256.FromBig(d.BigInt())
		if overflow {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
