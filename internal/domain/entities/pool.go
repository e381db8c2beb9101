package entities

import (
	"errors"

	"github.com/holiman/uint256"
)

// MinimumLiquidity is locked forever by the pair contract on the first mint
const MinimumLiquidity = 1000

// DefaultFeeBps is the Uniswap V2 swap fee in basis points (0.3%)
const DefaultFeeBps = 30

const bpsDenominator = 10000

var (
	ErrInsufficientInputAmount     = errors.New("insufficient input amount")
	ErrInsufficientOutputAmount    = errors.New("insufficient output amount")
	ErrInsufficientAmount          = errors.New("insufficient amount")
	ErrInsufficientLiquidity       = errors.New("insufficient liquidity")
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrInvalidFee                  = errors.New("fee must be below 10000 basis points")
	ErrOverflow                    = errors.New("uint256 overflow")
)

// Pool is the integer state of a Uniswap V2 pair as the contracts see it.
// All amounts are in smallest token units.
type Pool struct {
	Reserve0    *uint256.Int
	Reserve1    *uint256.Int
	TotalSupply *uint256.Int
	FeeBps      uint64 // Fee in basis points (e.g., 30 = 0.3%)
}

// NewPool creates a pool with the default 0.3% fee
func NewPool(reserve0, reserve1, totalSupply *uint256.Int) *Pool {
	return &Pool{
		Reserve0:    reserve0,
		Reserve1:    reserve1,
		TotalSupply: totalSupply,
		FeeBps:      DefaultFeeBps,
	}
}

// GetSpotPrice calculates the spot price of token0 in terms of token1, scaled by 1e18
func (p *Pool) GetSpotPrice() *uint256.Int {
	if p.Reserve0 == nil || p.Reserve1 == nil || p.Reserve0.IsZero() {
		return uint256.NewInt(0)
	}

	precision := uint256.NewInt(1e18)
	numerator, overflow := new(uint256.Int).MulOverflow(p.Reserve1, precision)
	if overflow {
		return uint256.NewInt(0)
	}
	return numerator.Div(numerator, p.Reserve0)
}

// GetAmountOut returns the router's output for swapping amountIn of token0
// (zeroForOne) or token1 into the pair.
func (p *Pool) GetAmountOut(amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	reserveIn, reserveOut := p.orient(zeroForOne)
	return GetAmountOut(amountIn, reserveIn, reserveOut, p.FeeBps)
}

// GetAmountIn returns the router's required input to receive amountOut.
func (p *Pool) GetAmountIn(amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	reserveIn, reserveOut := p.orient(zeroForOne)
	return GetAmountIn(amountOut, reserveIn, reserveOut, p.FeeBps)
}

// Mint returns the liquidity the pair contract mints for the deposit.
func (p *Pool) Mint(amount0, amount1 *uint256.Int) (*uint256.Int, error) {
	if p.TotalSupply == nil || p.TotalSupply.IsZero() {
		product, overflow := new(uint256.Int).MulOverflow(amount0, amount1)
		if overflow {
			return nil, ErrOverflow
		}
		root := new(uint256.Int).Sqrt(product)
		minimum := uint256.NewInt(MinimumLiquidity)
		if !root.Gt(minimum) {
			return nil, ErrInsufficientLiquidityMinted
		}
		return root.Sub(root, minimum), nil
	}

	if !p.hasReserves() {
		return nil, ErrInsufficientLiquidity
	}

	// liquidity = min(amount0 * totalSupply / reserve0, amount1 * totalSupply / reserve1)
	liquidity0, err := mulDiv(amount0, p.TotalSupply, p.Reserve0)
	if err != nil {
		return nil, err
	}
	liquidity1, err := mulDiv(amount1, p.TotalSupply, p.Reserve1)
	if err != nil {
		return nil, err
	}

	liquidity := liquidity0
	if liquidity1.Lt(liquidity0) {
		liquidity = liquidity1
	}
	if liquidity.IsZero() {
		return nil, ErrInsufficientLiquidityMinted
	}
	return liquidity, nil
}

// Burn returns the token amounts the pair contract pays out for liquidity.
func (p *Pool) Burn(liquidity *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if p.TotalSupply == nil || p.TotalSupply.IsZero() || !p.hasReserves() {
		return nil, nil, ErrInsufficientLiquidity
	}

	amount0, err := mulDiv(liquidity, p.Reserve0, p.TotalSupply)
	if err != nil {
		return nil, nil, err
	}
	amount1, err := mulDiv(liquidity, p.Reserve1, p.TotalSupply)
	if err != nil {
		return nil, nil, err
	}
	if amount0.IsZero() || amount1.IsZero() {
		return nil, nil, ErrInsufficientLiquidityBurned
	}
	return amount0, amount1, nil
}

func (p *Pool) orient(zeroForOne bool) (*uint256.Int, *uint256.Int) {
	if zeroForOne {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}

func (p *Pool) hasReserves() bool {
	return p.Reserve0 != nil && p.Reserve1 != nil && !p.Reserve0.IsZero() && !p.Reserve1.IsZero()
}

// GetAmountOut mirrors UniswapV2Library.getAmountOut with a configurable fee:
//
//	amountInWithFee = amountIn * (10000 - feeBps)
//	amountOut = amountInWithFee * reserveOut / (reserveIn * 10000 + amountInWithFee)
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	if feeBps >= bpsDenominator {
		return nil, ErrInvalidFee
	}

	amountInWithFee, overflow := new(uint256.Int).MulOverflow(amountIn, uint256.NewInt(bpsDenominator-feeBps))
	if overflow {
		return nil, ErrOverflow
	}
	numerator, overflow := new(uint256.Int).MulOverflow(amountInWithFee, reserveOut)
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).MulOverflow(reserveIn, uint256.NewInt(bpsDenominator))
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = denominator.AddOverflow(denominator, amountInWithFee); overflow {
		return nil, ErrOverflow
	}

	return numerator.Div(numerator, denominator), nil
}

// GetAmountIn mirrors UniswapV2Library.getAmountIn:
//
//	amountIn = reserveIn * amountOut * 10000 / ((reserveOut - amountOut) * (10000 - feeBps)) + 1
func GetAmountIn(amountOut, reserveIn, reserveOut *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, ErrInsufficientOutputAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	if !amountOut.Lt(reserveOut) {
		return nil, ErrInsufficientLiquidity
	}
	if feeBps >= bpsDenominator {
		return nil, ErrInvalidFee
	}

	numerator, overflow := new(uint256.Int).MulOverflow(reserveIn, amountOut)
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = numerator.MulOverflow(numerator, uint256.NewInt(bpsDenominator)); overflow {
		return nil, ErrOverflow
	}
	denominator := new(uint256.Int).Sub(reserveOut, amountOut)
	if _, overflow = denominator.MulOverflow(denominator, uint256.NewInt(bpsDenominator-feeBps)); overflow {
		return nil, ErrOverflow
	}

	amountIn := numerator.Div(numerator, denominator)
	return amountIn.AddUint64(amountIn, 1), nil
}

// Quote mirrors UniswapV2Library.quote: the amount of B equal in value to
// amountA at the current reserve ratio.
func Quote(amountA, reserveA, reserveB *uint256.Int) (*uint256.Int, error) {
	if amountA == nil || amountA.IsZero() {
		return nil, ErrInsufficientAmount
	}
	if reserveA == nil || reserveB == nil || reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	return mulDiv(amountA, reserveB, reserveA)
}

func mulDiv(x, y, denominator *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, denominator), nil
}
