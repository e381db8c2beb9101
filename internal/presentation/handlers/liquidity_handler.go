package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bimakw/amm-calculator/internal/domain/services"
)

// LiquidityHandler handles liquidity deposit and withdrawal quotes
type LiquidityHandler struct {
	quoteService QuoteService
	logger       *zap.Logger
}

// NewLiquidityHandler creates a new liquidity handler
func NewLiquidityHandler(quoteService QuoteService, logger *zap.Logger) *LiquidityHandler {
	return &LiquidityHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// MintRequest represents a liquidity deposit request
type MintRequest struct {
	AddToken1   string `json:"addToken1"`
	AddToken2   string `json:"addToken2"`
	Reserve1    string `json:"reserve1"`
	Reserve2    string `json:"reserve2"`
	TotalSupply string `json:"totalSupply"`
}

// MintResponse represents the minted liquidity. Liquidity is in human units,
// the candidates and the pair contract's integer result in smallest units.
type MintResponse struct {
	Liquidity        string `json:"liquidity"`
	Liquidity1       string `json:"liquidity1"`
	Liquidity2       string `json:"liquidity2"`
	OnChainLiquidity string `json:"onChainLiquidity,omitempty"`
}

// RedeemRequest represents a liquidity withdrawal request
type RedeemRequest struct {
	Liquidity   string `json:"liquidity"`
	Reserve1    string `json:"reserve1"`
	Reserve2    string `json:"reserve2"`
	TotalSupply string `json:"totalSupply"`
}

// RedeemResponse represents the redeemed token amounts in human units. The
// on-chain amounts are the pair contract's burn output in smallest units.
type RedeemResponse struct {
	Token1        string `json:"token1"`
	Token2        string `json:"token2"`
	OnChainToken1 string `json:"onChainToken1,omitempty"`
	OnChainToken2 string `json:"onChainToken2,omitempty"`
}

// Mint handles POST /api/v1/liquidity/mint
func (h *LiquidityHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var body MintRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var p fieldParser
	req := services.MintRequest{
		AddToken1:   p.decimal("addToken1", body.AddToken1),
		AddToken2:   p.decimal("addToken2", body.AddToken2),
		Reserve1:    p.decimal("reserve1", body.Reserve1),
		Reserve2:    p.decimal("reserve2", body.Reserve2),
		TotalSupply: p.decimal("totalSupply", body.TotalSupply),
	}
	if p.err != nil {
		writeServiceError(w, h.logger, p.err)
		return
	}

	quote, err := h.quoteService.Mint(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MintResponse{
		Liquidity:        quote.Liquidity.String(),
		Liquidity1:       quote.Liquidity1.String(),
		Liquidity2:       quote.Liquidity2.String(),
		OnChainLiquidity: uintString(quote.OnChainLiquidity),
	})
}

// Redeem handles POST /api/v1/liquidity/redeem
func (h *LiquidityHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var body RedeemRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var p fieldParser
	req := services.RedeemRequest{
		Liquidity:   p.decimal("liquidity", body.Liquidity),
		Reserve1:    p.decimal("reserve1", body.Reserve1),
		Reserve2:    p.decimal("reserve2", body.Reserve2),
		TotalSupply: p.decimal("totalSupply", body.TotalSupply),
	}
	if p.err != nil {
		writeServiceError(w, h.logger, p.err)
		return
	}

	quote, err := h.quoteService.Redeem(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, RedeemResponse{
		Token1:        quote.Token1.String(),
		Token2:        quote.Token2.String(),
		OnChainToken1: uintString(quote.OnChainToken1),
		OnChainToken2: uintString(quote.OnChainToken2),
	})
}
