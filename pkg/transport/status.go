package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// StatusInfo is the capabilities snapshot served by the status endpoint.
type StatusInfo struct {
	// Model is the configured upstream model identifier.
	Model string `json:"model"`

	// UpstreamConfigured reports whether an API key is present. The key
	// itself is never exposed.
	UpstreamConfigured bool `json:"upstream_configured"`
}

// statusResponse is the wire shape of the status endpoint.
type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	StatusInfo
}

// StatusHandler serves the status/capabilities endpoint. The info function is
// resolved per request so hot-reloaded configuration is reflected.
type StatusHandler struct {
	version string
	info    func() StatusInfo
	logger  *slog.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(version string, info func() StatusInfo, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHandler{version: version, info: info, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		resp := NewErrorResponse("method not allowed, use GET", "invalid_request_error")
		if err := WriteJSONError(w, http.StatusMethodNotAllowed, resp); err != nil {
			h.logger.Error("failed to write error response", "error", err)
		}
		return
	}

	resp := statusResponse{
		Status:     "ok",
		Version:    h.version,
		StatusInfo: h.info(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write status response", "error", err)
	}
}
