package telemetry

import (
	"log/slog"
	"net/http"
)

// HubBuilderOption is a functional option used to configure a Hub during construction.
type HubBuilderOption func(*hubImpl)

// WithCheckOrigin replaces the default origin check, which accepts every origin.
//
// Parameters:
//   - check: returns true when the request's origin is allowed
//
// Returns:
//   - HubBuilderOption: a function that sets the origin check
func WithCheckOrigin(check func(r *http.Request) bool) HubBuilderOption {
	return func(h *hubImpl) {
		h.upgrader.CheckOrigin = check
	}
}

// WithLogger sets the logger used by the hub.
//
// Parameters:
//   - logger: the logger, common.Logger() when nil
//
// Returns:
//   - HubBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) HubBuilderOption {
	return func(h *hubImpl) {
		h.logger = logger
	}
}
