package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeConflict         = "conflict"
	ErrCodeTooManyRequests  = "too_many_requests"
	ErrCodeInternalError    = "internal_error"
)

// Fixed user-facing messages.
const (
	MsgBadRequest       = "Ungültige Anfrage"
	MsgBodyTooLarge     = "Anfrage zu groß"
	MsgUnauthorized     = "Nicht autorisiert"
	MsgNotFound         = "Nicht gefunden"
	MsgMethodNotAllowed = "Methode nicht erlaubt"
	MsgTooManyRequests  = "Zu viele Anfragen. Bitte versuchen Sie es später erneut."
	MsgInternalError    = "Ein Fehler ist aufgetreten. Bitte versuchen Sie es später erneut."
)

// APIResponse is the envelope shared by all responses. Endpoints returning data embed it
// in a struct of their own so the resource fields sit next to success and message.
// swagger:model APIResponse
type APIResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Code    string   `json:"code,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// OK returns a successful envelope with an optional message.
func OK(message string) APIResponse {
	return APIResponse{Success: true, Message: message}
}

// WriteJSON sets Content-Type to application/json, writes statusCode and encodes body.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONSuccess writes {success: true, message}.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, OK(message))
}

// WriteJSONError writes {success: false, code, message}.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, APIResponse{Success: false, Code: code, Message: message})
}

// WriteValidationErrors writes a 400 whose message is the first failed rule and whose
// errors list holds every failed rule in order.
func WriteValidationErrors(w http.ResponseWriter, errs []string) {
	WriteJSON(w, http.StatusBadRequest, APIResponse{
		Success: false,
		Code:    ErrCodeBadRequest,
		Message: errs[0],
		Errors:  errs,
	})
}

// WriteMethodNotAllowed writes a 405 with the Allow header set to the given methods.
func WriteMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteJSONError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, MsgMethodNotAllowed)
}
