package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"coachingsite/internal/delivery/http/controllers"
	"coachingsite/internal/delivery/http/middleware"
	"coachingsite/internal/domain"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	Contact        *controllers.ContactController
	Newsletter     *controllers.NewsletterController
	Booking        *controllers.BookingController
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
}

// NewRouter initializes the HTTP router with all application routes and wraps it with
// recovery, request logging, CORS and rate limiting, in that order from the outside.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	gate := controllers.AdminGate(middleware.RequireAdmin(cfg.Verifier, cfg.Logger))

	// Resources dispatch on method and ?action= themselves so that 404 and 405 stay JSON.
	mux.Handle("/contact", cfg.Contact.Handler(gate))
	mux.Handle("/newsletter", cfg.Newsletter.Handler(gate))
	mux.Handle("/booking", cfg.Booking.Handler(gate))
	mux.HandleFunc("/healthz", controllers.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/", controllers.NotFound)

	var handler http.Handler = mux
	if cfg.RateLimiter != nil {
		handler = cfg.RateLimiter.Middleware(handler)
	}
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	return middleware.Recover(cfg.Logger, handler)
}
