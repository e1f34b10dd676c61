package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"coachingsite/internal/delivery/http/helpers"
	"coachingsite/internal/delivery/http/middleware"
	"coachingsite/internal/domain"
)

// AdminGate wraps handlers that require a valid admin token.
type AdminGate func(http.HandlerFunc) http.HandlerFunc

type actionRoute struct {
	method  string
	handler http.HandlerFunc
}

// actionRouter dispatches on the "action" query parameter. The empty action is the
// resource's default route. Unknown actions answer 404; a known action with the wrong
// method answers 405 with an Allow header.
type actionRouter map[string]actionRoute

func (a actionRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimSpace(r.URL.Query().Get("action"))
	route, ok := a[action]
	if !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, helpers.MsgNotFound)
		return
	}
	if r.Method != route.method {
		helpers.WriteMethodNotAllowed(w, route.method+", "+http.MethodOptions)
		return
	}
	route.handler(w, r)
}

// NotFound answers every request with the JSON 404 envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, helpers.MsgNotFound)
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /healthz [get]
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		helpers.WriteMethodNotAllowed(w, "GET, HEAD")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "ok")
}

// Conflict messages for slot state errors.
const (
	msgSlotUnavailable   = "Dieser Termin ist leider nicht mehr verfügbar."
	msgSlotNotDeletable  = "Nur freie Termine können gelöscht werden."
	msgInvalidTransition = "Nur angefragte Termine können bestätigt oder abgelehnt werden."
)

// writeServiceError maps service errors to responses. Unexpected errors are logged and
// answered with the generic 500 message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFoundMsg string) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		helpers.WriteValidationErrors(w, []string{vErr.Message})
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, helpers.MsgUnauthorized)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrSlotUnavailable):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, msgSlotUnavailable)
	case errors.Is(err, domain.ErrSlotNotDeletable):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, msgSlotNotDeletable)
	case errors.Is(err, domain.ErrInvalidTransition):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, msgInvalidTransition)
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"action", r.URL.Query().Get("action"),
			"err", err,
		)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, helpers.MsgInternalError)
	}
}

// Shared field messages.
const (
	msgEmailRequired = "Bitte geben Sie Ihre E-Mail-Adresse an"
	msgEmailInvalid  = "Ungültige E-Mail-Adresse"
)

// logAdminAction records a state-changing admin request together with the token subject.
func logAdminAction(logger *slog.Logger, r *http.Request, action string, attrs ...any) {
	subject, _ := middleware.SubjectFromContext(r.Context())
	logger.InfoContext(r.Context(), "admin action", append([]any{"action", action, "subject", subject}, attrs...)...)
}
