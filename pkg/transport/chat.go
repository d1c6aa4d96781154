package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"meridian-hq/ganymede/pkg/audit"
	"meridian-hq/ganymede/pkg/relay"
	"meridian-hq/ganymede/pkg/telemetry/metrics"
	"meridian-hq/ganymede/pkg/transport/middleware"
	"meridian-hq/ganymede/pkg/upstream"
)

// maxRequestBodyBytes bounds the chat request body.
const maxRequestBodyBytes = 1 << 20 // 1MB

// Engine runs relay invocations. Implemented by *relay.Orchestrator.
type Engine interface {
	Relay(ctx context.Context, req *relay.ChatRequest) *relay.Invocation
}

// ChatHandler streams relay events for chat requests over SSE.
//
// The engine is resolved per request through a function so that hot-reloaded
// configuration can swap the orchestrator between invocations without
// touching in-flight streams.
type ChatHandler struct {
	engine    func() Engine
	collector *metrics.Collector
	recorder  *audit.Recorder
	logger    *slog.Logger
}

// NewChatHandler creates a chat handler. collector and recorder may be nil.
func NewChatHandler(engine func() Engine, collector *metrics.Collector, recorder *audit.Recorder, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		engine:    engine,
		collector: collector,
		recorder:  recorder,
		logger:    logger.With("component", "transport.chat"),
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		resp := NewErrorResponse("method not allowed, use POST", "invalid_request_error")
		if err := WriteJSONError(w, http.StatusMethodNotAllowed, resp); err != nil {
			h.logger.Error("failed to write error response", "error", err)
		}
		return
	}

	req, err := parseChatRequest(r)
	if err != nil {
		h.logger.Warn("failed to parse chat request",
			"request_id", requestID,
			"error", err,
		)
		resp := NewErrorResponse(err.Error(), "invalid_request_error")
		if err := WriteJSONError(w, http.StatusBadRequest, resp); err != nil {
			h.logger.Error("failed to write error response", "error", err)
		}
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		resp := NewErrorResponse("streaming not supported by this connection", "server_error")
		if err := WriteJSONError(w, http.StatusInternalServerError, resp); err != nil {
			h.logger.Error("failed to write error response", "error", err)
		}
		return
	}

	SetSSEHeaders(w)
	flusher.Flush()

	h.logger.Info("starting relay invocation",
		"request_id", requestID,
		"messages", len(req.Messages),
	)

	// The request context is the cancellation source: a client disconnect
	// fires the invocation's signal.
	inv := h.engine().Relay(ctx, req)

	for ev := range inv.Events() {
		if err := WriteSSEEvent(w, ev); err != nil {
			h.logger.Warn("failed to write event, cancelling invocation",
				"request_id", requestID,
				"error", err,
			)
			inv.Cancel()
			// Drain so the pipeline can reach its terminal state.
			for range inv.Events() {
			}
			break
		}
		flusher.Flush()
	}

	h.finish(ctx, requestID, inv)
}

// finish records the terminal outcome in logs, metrics, and the audit store.
func (h *ChatHandler) finish(ctx context.Context, requestID string, inv *relay.Invocation) {
	outcome := inv.Outcome()
	duration := inv.Duration()

	h.logger.Info("relay invocation finished",
		"request_id", requestID,
		"outcome", outcome.String(),
		"segments", inv.Segments(),
		"duration_ms", duration.Milliseconds(),
	)

	if h.collector != nil {
		h.collector.RecordRelay(outcome.String(), inv.Segments(), duration, inv.FirstSegmentLatency())
	}

	if h.recorder != nil {
		rec := audit.Record{
			Outcome:    outcome.String(),
			Segments:   inv.Segments(),
			DurationMS: duration.Milliseconds(),
		}
		if err := inv.Err(); err != nil {
			rec.Error = err.Error()
			var rej *upstream.RejectionError
			if errors.As(err, &rej) {
				rec.UpstreamStatus = rej.StatusCode
			}
		}
		// The request context may already be done (client gone); record
		// against the background context so outcomes are never lost.
		if err := h.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
			h.logger.Error("failed to record audit outcome",
				"request_id", requestID,
				"error", err,
			)
		}
	}
}

// parseChatRequest decodes and converts the request body.
func parseChatRequest(r *http.Request) (*relay.ChatRequest, error) {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)
	defer body.Close()

	var wire chatRequestBody
	dec := json.NewDecoder(body)
	if err := dec.Decode(&wire); err != nil {
		return nil, errors.New("request body is not valid JSON")
	}

	req := &relay.ChatRequest{
		Messages: make([]relay.Message, 0, len(wire.Messages)),
	}
	for _, m := range wire.Messages {
		req.Messages = append(req.Messages, relay.Message{Role: m.Role, Content: m.Content})
	}
	if wire.System != nil {
		req.System = &relay.Message{Role: relay.RoleSystem, Content: wire.System.Content}
	}
	return req, nil
}
