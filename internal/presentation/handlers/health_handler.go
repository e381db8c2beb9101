package handlers

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Precision int    `json:"precision"`
	Fee       string `json:"fee"`
	Cache     string `json:"cache"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	info HealthResponse
}

// NewHealthHandler creates a new health handler. cacheKind names the quote
// cache backend ("redis", "memory" or "none").
func NewHealthHandler(version string, precision int, fee, cacheKind string) *HealthHandler {
	return &HealthHandler{info: HealthResponse{
		Status:    "ok",
		Version:   version,
		Precision: precision,
		Fee:       fee,
		Cache:     cacheKind,
	}}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}
