// Package httpserver exposes a dispatch router over HTTP. The gateway
// accepts call envelopes as JSON POST bodies and replies with the route's
// serialized output text.
package httpserver

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/wiregate/adapters/metrics"
	"github.com/artpar/wiregate/core/dispatch"
	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/domain/calllog"
	"github.com/artpar/wiregate/ports"
)

// maxBodyBytes bounds envelope bodies.
const maxBodyBytes = 10 << 20 // 10MB

// ErrorResponseBody is the JSON error envelope returned to callers.
type ErrorResponseBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// Handler serves a router over HTTP.
type Handler struct {
	router  *dispatch.Router
	logger  zerolog.Logger
	metrics *metrics.Collector

	// API key auth; empty keyHashes disables auth.
	keyHashes [][]byte
	hasher    ports.Hasher

	// Dispatch audit trail; nil disables logging to the store.
	callLog ports.CallLog
	ids     ports.IDGenerator
	clock   ports.Clock
}

// Option configures the handler.
type Option func(*Handler)

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithKeyAuth enables API key authentication against hashed keys at rest.
func WithKeyAuth(hasher ports.Hasher, keyHashes [][]byte) Option {
	return func(h *Handler) {
		h.hasher = hasher
		h.keyHashes = keyHashes
	}
}

// WithCallLog records every dispatch to the store.
func WithCallLog(store ports.CallLog, ids ports.IDGenerator, clock ports.Clock) Option {
	return func(h *Handler) {
		h.callLog = store
		h.ids = ids
		h.clock = clock
	}
}

// New creates an HTTP handler for the router.
func New(router *dispatch.Router, logger zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		router: router,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the chi router with all gateway endpoints mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/rpc", h.handleRPC)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// handleRPC authenticates the caller, decodes the envelope, dispatches it,
// and writes the route's serialized output as the response body.
func (h *Handler) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if !h.authenticate(r) {
		if h.metrics != nil {
			h.metrics.AuthFailures.WithLabelValues("invalid_key").Inc()
		}
		h.writeError(w, http.StatusUnauthorized, "invalid_api_key", "Invalid or missing API key")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read request body")
		h.writeError(w, http.StatusBadRequest, "bad_request", "Failed to read request body")
		return
	}

	env, err := feature.DecodeEnvelope(body)
	if err != nil {
		h.observe("", "", err, start, r)
		h.writeFault(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.DispatchInFlight.Inc()
		defer h.metrics.DispatchInFlight.Dec()
	}

	result, err := h.router.DispatchEnvelope(ctx, env)
	h.observe(env.Feature, env.Method, err, start, r)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("feature", env.Feature).
			Str("method", env.Method).
			Str("trace_id", middleware.GetReqID(ctx)).
			Msg("dispatch failed")
		h.writeFault(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result))
}

// handleHealth reports liveness.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// authenticate checks the caller's API key when auth is configured.
func (h *Handler) authenticate(r *http.Request) bool {
	if len(h.keyHashes) == 0 {
		return true
	}

	key := extractAPIKey(r)
	if key == "" {
		return false
	}
	for _, hash := range h.keyHashes {
		if h.hasher.Compare(hash, key) {
			return true
		}
	}
	return false
}

// observe records metrics and the call log entry for one dispatch.
func (h *Handler) observe(featureName, method string, err error, start time.Time, r *http.Request) {
	elapsed := time.Since(start)
	outcome := outcomeFor(err)

	if h.metrics != nil && featureName != "" {
		h.metrics.ObserveDispatch(featureName, method, string(outcome), elapsed)
	}

	if h.callLog != nil && featureName != "" {
		entry := calllog.Entry{
			ID:        h.ids.New(),
			RequestID: middleware.GetReqID(r.Context()),
			Feature:   featureName,
			Method:    method,
			Outcome:   outcome,
			LatencyMs: elapsed.Milliseconds(),
			RemoteIP:  remoteIP(r),
			Timestamp: h.clock.Now(),
		}
		if recErr := h.callLog.Record(r.Context(), entry); recErr != nil {
			h.logger.Error().Err(recErr).Msg("failed to record call log entry")
		}
	}
}

// writeFault maps a dispatch failure onto an HTTP error response.
func (h *Handler) writeFault(w http.ResponseWriter, err error) {
	if nf, ok := fault.AsNotFound(err); ok {
		if nf.Kind == fault.NotFoundImplementation {
			h.writeError(w, http.StatusNotImplemented, "not_implemented", err.Error())
			return
		}
		h.writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	if ve, ok := fault.AsValidation(err); ok {
		if h.metrics != nil {
			h.metrics.ValidationFailures.WithLabelValues(string(ve.Side), string(ve.Phase)).Inc()
		}
		// An output failure means the implementation produced a bad
		// value; that is a server bug, not a caller error.
		if ve.Phase == fault.PhaseOutput {
			h.writeError(w, http.StatusInternalServerError, "invalid_output", err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	// Business errors and anything else surface as 500.
	h.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponseBody{Error: ErrorDetail{Code: code, Message: message}})
}

// outcomeFor classifies a dispatch error for the audit trail.
func outcomeFor(err error) calllog.Outcome {
	switch {
	case err == nil:
		return calllog.OutcomeOK
	case fault.IsValidation(err):
		return calllog.OutcomeValidation
	case fault.IsNotFound(err):
		return calllog.OutcomeNotFound
	default:
		return calllog.OutcomeError
	}
}

// extractAPIKey reads the key from X-API-Key or a bearer Authorization
// header.
func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// remoteIP extracts the caller address without the port.
func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
