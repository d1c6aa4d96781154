package transport

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON error shape returned before a stream is
// established (malformed body, wrong method). Once streaming has begun,
// failures surface as diagnostic events instead.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error message and machine-readable type.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewErrorResponse creates an ErrorResponse.
func NewErrorResponse(message, errType string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Message: message, Type: errType}}
}

// WriteJSONError writes an ErrorResponse with the given status code.
func WriteJSONError(w http.ResponseWriter, statusCode int, resp *ErrorResponse) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(resp)
}

// chatRequestBody is the wire shape of the chat endpoint's request body.
type chatRequestBody struct {
	Messages []messageBody `json:"messages"`
	System   *messageBody  `json:"system_directive,omitempty"`
}

// messageBody is the wire shape of a single message.
type messageBody struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
