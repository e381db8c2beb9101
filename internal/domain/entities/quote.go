package entities

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// LiquidityQuote represents the shares minted for a two-sided deposit
type LiquidityQuote struct {
	// Liquidity is the minted amount in human units (smallest unit / 1e18)
	Liquidity decimal.Decimal `json:"liquidity"`
	// Liquidity1 and Liquidity2 are the per-token candidates in smallest units;
	// the smaller one binds.
	Liquidity1 decimal.Decimal `json:"liquidity1"`
	Liquidity2 decimal.Decimal `json:"liquidity2"`
	// OnChainLiquidity is what the pair contract mints for the same deposit,
	// nil when the inputs have no integer form.
	OnChainLiquidity *uint256.Int `json:"onChainLiquidity,omitempty"`
}

// RedemptionQuote represents the underlying tokens paid out for burned shares
type RedemptionQuote struct {
	Token1 decimal.Decimal `json:"token1"`
	Token2 decimal.Decimal `json:"token2"`

	// pair contract payouts in smallest units, nil without an integer form
	OnChainToken1 *uint256.Int `json:"onChainToken1,omitempty"`
	OnChainToken2 *uint256.Int `json:"onChainToken2,omitempty"`
}

// SwapQuote represents the result of pricing a single exact-input swap.
// AmountOut, FeeAmount and PriceImpact are the primary results.
type SwapQuote struct {
	AmountOut   decimal.Decimal `json:"amountOut"`   // human units
	FeeAmount   decimal.Decimal `json:"feeAmount"`   // human units, input token
	PriceImpact decimal.Decimal `json:"priceImpact"` // slippage - fee, dimensionless

	Slippage       decimal.Decimal `json:"slippage"`
	MidPrice       decimal.Decimal `json:"midPrice"`
	ExactQuote     decimal.Decimal `json:"exactQuote"`     // smallest units
	ExecutionPrice decimal.Decimal `json:"executionPrice"` // amountOut / amountIn
	RawAmountOut   decimal.Decimal `json:"rawAmountOut"`   // smallest units
	Fee            decimal.Decimal `json:"fee"`
}

// Severity grades a price impact for display warnings
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityBlocked
)

// Price impact thresholds, as fractions
var (
	AllowedPriceImpactLow       = decimal.New(1, -2)  // 1%
	AllowedPriceImpactMedium    = decimal.New(3, -2)  // 3%
	AllowedPriceImpactHigh      = decimal.New(5, -2)  // 5%
	BlockedPriceImpactNonExpert = decimal.New(15, -2) // 15%
)

// WarningSeverity maps a price impact to a warning tier. Impacts at or above
// BlockedPriceImpactNonExpert should not be executed without expert mode.
func WarningSeverity(priceImpact decimal.Decimal) Severity {
	switch {
	case !priceImpact.LessThan(BlockedPriceImpactNonExpert):
		return SeverityBlocked
	case !priceImpact.LessThan(AllowedPriceImpactHigh):
		return SeverityHigh
	case !priceImpact.LessThan(AllowedPriceImpactMedium):
		return SeverityMedium
	case !priceImpact.LessThan(AllowedPriceImpactLow):
		return SeverityLow
	default:
		return SeverityNone
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}
