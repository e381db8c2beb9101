package services

import (
	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/amm-calculator/internal/domain/decmath"
	"github.com/bimakw/amm-calculator/internal/domain/entities"
)

// DefaultFee is the Uniswap V2 swap fee (0.3%)
var DefaultFee = decimal.New(3, -3)

// weiScale converts smallest-unit results to human units
var weiScale = decimal.NewFromInt(params.Ether)

var (
	one         = decimal.NewFromInt(1)
	bpsDivision = decimal.NewFromInt(10000)
)

// Calculator evaluates the Uniswap V2 liquidity and swap formulas in decimal
// arithmetic at a fixed number of significant digits. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	ctx    decmath.Context
	fee    decimal.Decimal
	logger *zap.Logger
}

// Option configures a Calculator
type Option func(*Calculator) error

// WithPrecision sets the number of significant digits (at least 36)
func WithPrecision(precision int) Option {
	return func(c *Calculator) error {
		ctx, err := decmath.NewContext(precision)
		if err != nil {
			return inputError("precision", err)
		}
		c.ctx = ctx
		return nil
	}
}

// WithFee sets the default swap fee used by Swap
func WithFee(fee decimal.Decimal) Option {
	return func(c *Calculator) error {
		if err := validateFee(fee); err != nil {
			return err
		}
		c.fee = fee
		return nil
	}
}

// WithLogger sets the logger that receives intermediate swap values at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// NewCalculator creates a calculator with 36 digits of precision and a 0.3% fee
// unless overridden by opts.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		ctx:    decmath.Default(),
		fee:    DefaultFee,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Fee returns the default swap fee
func (c *Calculator) Fee() decimal.Decimal {
	return c.fee
}

// Precision returns the number of significant digits kept
func (c *Calculator) Precision() int {
	return c.ctx.Precision()
}

// LiquidityMinted returns the pool shares, in human units, minted for depositing
// addToken1 and addToken2 into a pool:
//
//	min(addToken1 * totalSupply / reserve1, addToken2 * totalSupply / reserve2) / 1e18
func (c *Calculator) LiquidityMinted(addToken1, addToken2, reserve1, reserve2, totalSupply decimal.Decimal) (decimal.Decimal, error) {
	q, err := c.Liquidity(addToken1, addToken2, reserve1, reserve2, totalSupply)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Liquidity, nil
}

// Liquidity is LiquidityMinted with the per-token candidates included.
func (c *Calculator) Liquidity(addToken1, addToken2, reserve1, reserve2, totalSupply decimal.Decimal) (*entities.LiquidityQuote, error) {
	if err := nonNegative(
		field{"addToken1", addToken1},
		field{"addToken2", addToken2},
		field{"reserve1", reserve1},
		field{"reserve2", reserve2},
		field{"totalSupply", totalSupply},
	); err != nil {
		return nil, err
	}
	if err := nonZero(field{"reserve1", reserve1}, field{"reserve2", reserve2}); err != nil {
		return nil, err
	}

	// divisors are validated above
	liquidity1 := c.ctx.MustQuo(c.ctx.Mul(addToken1, totalSupply), reserve1)
	liquidity2 := c.ctx.MustQuo(c.ctx.Mul(addToken2, totalSupply), reserve2)
	minted := c.ctx.MustQuo(c.ctx.Min(liquidity1, liquidity2), weiScale)

	return &entities.LiquidityQuote{
		Liquidity:  minted,
		Liquidity1: liquidity1,
		Liquidity2: liquidity2,
	}, nil
}

// TokensRedeemed returns the underlying token amounts, in human units, paid
// out for burning liquidity shares:
//
//	(liquidity * reserve1 / totalSupply / 1e18, liquidity * reserve2 / totalSupply / 1e18)
func (c *Calculator) TokensRedeemed(liquidity, reserve1, reserve2, totalSupply decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	q, err := c.Redemption(liquidity, reserve1, reserve2, totalSupply)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return q.Token1, q.Token2, nil
}

// Redemption is TokensRedeemed returning a RedemptionQuote.
func (c *Calculator) Redemption(liquidity, reserve1, reserve2, totalSupply decimal.Decimal) (*entities.RedemptionQuote, error) {
	if err := nonNegative(
		field{"liquidity", liquidity},
		field{"reserve1", reserve1},
		field{"reserve2", reserve2},
		field{"totalSupply", totalSupply},
	); err != nil {
		return nil, err
	}
	if err := nonZero(field{"totalSupply", totalSupply}); err != nil {
		return nil, err
	}

	if decmath.Cmp(liquidity, totalSupply) > 0 {
		c.logger.Warn("redeeming more liquidity than total supply",
			zap.Stringer("liquidity", liquidity),
			zap.Stringer("totalSupply", totalSupply))
	}

	token1 := c.ctx.MustQuo(c.ctx.Mul(liquidity, reserve1), totalSupply)
	token2 := c.ctx.MustQuo(c.ctx.Mul(liquidity, reserve2), totalSupply)
	token1 = c.ctx.MustQuo(token1, weiScale)
	token2 = c.ctx.MustQuo(token2, weiScale)

	return &entities.RedemptionQuote{Token1: token1, Token2: token2}, nil
}

// Swap prices an exact-input swap with the calculator's default fee.
func (c *Calculator) Swap(swapToken, reserveIn, reserveOut decimal.Decimal) (*entities.SwapQuote, error) {
	return c.SwapWithFee(swapToken, reserveIn, reserveOut, c.fee)
}

// SwapWithFee prices an exact-input swap of swapToken against the reserves:
//
//	tokenOut    = (1 - fee) * swapToken * reserveOut / (reserveIn + swapToken * (1 - fee))
//	feeToken    = fee * swapToken
//	midPrice    = reserveOut / reserveIn
//	exactQuote  = midPrice * swapToken
//	slippage    = (exactQuote - tokenOut) / exactQuote
//	priceImpact = slippage - fee
//
// AmountOut and FeeAmount are rescaled to human units, PriceImpact is not.
// A zero swapToken yields zero amounts, a slippage equal to the fee and no
// price impact.
func (c *Calculator) SwapWithFee(swapToken, reserveIn, reserveOut, fee decimal.Decimal) (*entities.SwapQuote, error) {
	if err := validateFee(fee); err != nil {
		return nil, err
	}
	if err := nonNegative(
		field{"swapToken", swapToken},
		field{"reserveIn", reserveIn},
		field{"reserveOut", reserveOut},
	); err != nil {
		return nil, err
	}
	if err := nonZero(field{"reserveIn", reserveIn}, field{"reserveOut", reserveOut}); err != nil {
		return nil, err
	}

	ctx := c.ctx
	feeMultiplier := ctx.Sub(one, fee)

	numerator := ctx.Mul(ctx.Mul(feeMultiplier, swapToken), reserveOut)
	denominator := ctx.Add(reserveIn, ctx.Mul(swapToken, feeMultiplier))
	tokenOut := ctx.MustQuo(numerator, denominator)

	feeToken := ctx.Mul(fee, swapToken)

	midPrice := ctx.MustQuo(reserveOut, reserveIn)
	exactQuote := ctx.Mul(midPrice, swapToken)

	c.logger.Debug("swap intermediate values",
		zap.Stringer("midPrice", midPrice),
		zap.Stringer("swapToken", swapToken),
		zap.Stringer("tokenOut", tokenOut))

	slippage := fee
	priceImpact := decimal.Zero
	executionPrice := decimal.Zero
	if !swapToken.IsZero() {
		// exactQuote is non-zero here: midPrice and swapToken are both positive
		slippage = ctx.MustQuo(ctx.Sub(exactQuote, tokenOut), exactQuote)
		priceImpact = ctx.Sub(slippage, fee)
		executionPrice = ctx.MustQuo(tokenOut, swapToken)
	}

	amountOut := ctx.MustQuo(tokenOut, weiScale)
	feeAmount := ctx.MustQuo(feeToken, weiScale)

	return &entities.SwapQuote{
		AmountOut:      amountOut,
		FeeAmount:      feeAmount,
		PriceImpact:    priceImpact,
		Slippage:       slippage,
		MidPrice:       midPrice,
		ExactQuote:     exactQuote,
		ExecutionPrice: executionPrice,
		RawAmountOut:   tokenOut,
		Fee:            fee,
	}, nil
}

// MinimumAmountOut returns the least output, in human units, an exact-input
// swap may settle for under a slippage tolerance given in basis points:
//
//	floor(floor(rawAmountOut) / (1 + slippageBps / 10000)) / 1e18
func (c *Calculator) MinimumAmountOut(quote *entities.SwapQuote, slippageBps uint64) (decimal.Decimal, error) {
	if slippageBps > 10000 {
		return decimal.Zero, inputError("slippageBps", ErrInvalidSlippage)
	}

	tolerance := c.ctx.MustQuo(decimal.NewFromInt(int64(slippageBps)), bpsDivision)
	minimum := c.ctx.MustQuo(quote.RawAmountOut.Floor(), c.ctx.Add(one, tolerance))
	minimum = c.ctx.MustQuo(minimum.Floor(), weiScale)
	return minimum, nil
}

type field struct {
	name  string
	value decimal.Decimal
}

func nonNegative(fields ...field) error {
	for _, f := range fields {
		if f.value.Sign() < 0 {
			return inputError(f.name, ErrNegativeInput)
		}
	}
	return nil
}

func nonZero(fields ...field) error {
	for _, f := range fields {
		if f.value.IsZero() {
			return inputError(f.name, ErrDivisionByZero)
		}
	}
	return nil
}

func validateFee(fee decimal.Decimal) error {
	if fee.Sign() < 0 || decmath.Cmp(fee, one) >= 0 {
		return inputError("fee", ErrInvalidFee)
	}
	return nil
}
