package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/bimakw/amm-calculator/internal/domain/entities"
	"github.com/bimakw/amm-calculator/internal/domain/services"
)

// QuoteService is the calculation backend used by the handlers
type QuoteService interface {
	Mint(ctx context.Context, req services.MintRequest) (*entities.LiquidityQuote, error)
	Redeem(ctx context.Context, req services.RedeemRequest) (*entities.RedemptionQuote, error)
	Swap(ctx context.Context, req services.SwapRequest) (*services.SwapResult, error)
}

// QuoteHandler handles swap quote requests
type QuoteHandler struct {
	quoteService QuoteService
	logger       *zap.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// SwapQuoteRequest represents a swap quote request. Amounts are in the
// token's smallest unit.
type SwapQuoteRequest struct {
	SwapToken   string  `json:"swapToken"`
	ReserveIn   string  `json:"reserveIn"`
	ReserveOut  string  `json:"reserveOut"`
	Fee         string  `json:"fee,omitempty"`
	SlippageBps *uint64 `json:"slippageBps,omitempty"`
}

// SwapQuoteResponse represents a swap quote response
type SwapQuoteResponse struct {
	AmountOut        string `json:"amountOut"`
	FeeAmount        string `json:"feeAmount"`
	PriceImpact      string `json:"priceImpact"`
	PriceWarning     string `json:"priceWarning"`
	Slippage         string `json:"slippage"`
	MidPrice         string `json:"midPrice"`
	ExactQuote       string `json:"exactQuote"`
	ExecutionPrice   string `json:"executionPrice"`
	RawAmountOut     string `json:"rawAmountOut"`
	Fee              string `json:"fee"`
	MinAmountOut     string `json:"minAmountOut"`
	SlippageBps      uint64 `json:"slippageBps"`
	OnChainAmountOut string `json:"onChainAmountOut,omitempty"`
	OnChainSpotPrice string `json:"onChainSpotPrice,omitempty"`
}

// GetSwapQuote handles POST /api/v1/swap/quote
func (h *QuoteHandler) GetSwapQuote(w http.ResponseWriter, r *http.Request) {
	var body SwapQuoteRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var p fieldParser
	req := services.SwapRequest{
		SwapToken:   p.decimal("swapToken", body.SwapToken),
		ReserveIn:   p.decimal("reserveIn", body.ReserveIn),
		ReserveOut:  p.decimal("reserveOut", body.ReserveOut),
		SlippageBps: body.SlippageBps,
	}
	if body.Fee != "" {
		fee := p.decimal("fee", body.Fee)
		req.Fee = &fee
	}
	if p.err != nil {
		writeServiceError(w, h.logger, p.err)
		return
	}

	result, err := h.quoteService.Swap(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, buildSwapQuoteResponse(result))
}

// buildSwapQuoteResponse converts a SwapResult to a SwapQuoteResponse
func buildSwapQuoteResponse(result *services.SwapResult) SwapQuoteResponse {
	q := result.Quote

	return SwapQuoteResponse{
		AmountOut:        q.AmountOut.String(),
		FeeAmount:        q.FeeAmount.String(),
		PriceImpact:      q.PriceImpact.String(),
		PriceWarning:     result.Severity.String(),
		Slippage:         q.Slippage.String(),
		MidPrice:         q.MidPrice.String(),
		ExactQuote:       q.ExactQuote.String(),
		ExecutionPrice:   q.ExecutionPrice.String(),
		RawAmountOut:     q.RawAmountOut.String(),
		Fee:              q.Fee.String(),
		MinAmountOut:     result.MinimumAmountOut.String(),
		SlippageBps:      result.SlippageBps,
		OnChainAmountOut: uintString(result.OnChainAmountOut),
		OnChainSpotPrice: uintString(result.OnChainSpotPrice),
	}
}
