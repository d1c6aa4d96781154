package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"meridian-hq/ganymede/pkg/relay"
)

// SetSSEHeaders sets the response headers for a Server-Sent Events stream.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteSSEEvent writes one relay event as an SSE data frame.
func WriteSSEEvent(w http.ResponseWriter, ev relay.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}
	return nil
}
