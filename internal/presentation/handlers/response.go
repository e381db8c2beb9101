package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/amm-calculator/internal/domain/decmath"
	"github.com/bimakw/amm-calculator/internal/domain/services"
)

const maxBodyBytes = 1 << 20

// Bounds on decimal request values. Reserves reach about 1e27 smallest units
// and on-chain amounts fit in uint256 (< 1.2e77); anything far outside that is
// refused before it reaches the calculator.
const (
	maxDecimalLength    = 100
	maxDecimalDigits    = 80
	maxDecimalMagnitude = 80
	minDecimalExponent  = -36
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var (
	errMissingField = errors.New("is required")
	errNotDecimal   = errors.New("is not a decimal number")
	errOutOfRange   = errors.New("is out of range")
)

// requestError is a malformed request, reported as 400 with its own code
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return &requestError{code: "invalid_body", message: "request body must be a JSON object: " + err.Error()}
	}
	return nil
}

// parseDecimal parses a required decimal string field
func parseDecimal(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, &requestError{code: "missing_params", message: fmt.Sprintf("%s %v", field, errMissingField)}
	}
	if len(value) > maxDecimalLength {
		return decimal.Zero, &requestError{code: "invalid_amount", message: fmt.Sprintf("%s %v", field, errOutOfRange)}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &requestError{code: "invalid_amount", message: fmt.Sprintf("%s %v", field, errNotDecimal)}
	}
	if !inDecimalRange(d) {
		return decimal.Zero, &requestError{code: "invalid_amount", message: fmt.Sprintf("%s %v", field, errOutOfRange)}
	}
	return d, nil
}

func inDecimalRange(d decimal.Decimal) bool {
	digits := decmath.NumDigits(d)
	if digits > maxDecimalDigits || d.Exponent() < minDecimalExponent {
		return false
	}
	return d.IsZero() || int(d.Exponent())+digits-1 <= maxDecimalMagnitude
}

// fieldParser parses request fields, keeping the first error
type fieldParser struct {
	err error
}

func (p *fieldParser) decimal(field, value string) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	d, err := parseDecimal(field, value)
	p.err = err
	return d
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeServiceError maps request and calculation errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeError(w, http.StatusBadRequest, reqErr.code, reqErr.message)
		return
	}

	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, inputErrorCode(err), err.Error())
		return
	}

	logger.Error("quote failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "unable to compute quote")
}

func inputErrorCode(err error) string {
	switch {
	case errors.Is(err, services.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, services.ErrNegativeInput):
		return "negative_input"
	case errors.Is(err, services.ErrInvalidFee):
		return "invalid_fee"
	case errors.Is(err, services.ErrInvalidSlippage):
		return "invalid_slippage"
	default:
		return "invalid_input"
	}
}

// uintString renders an on-chain amount, empty when it is unavailable
func uintString(v *uint256.Int) string {
	if v == nil {
		return ""
	}
	return v.Dec()
}
