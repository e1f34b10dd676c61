package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	h "coachingsite/internal/delivery/http/helpers"
)

// Recover turns a panic in next into a 500 with the generic message and logs the stack.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, h.MsgInternalError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
