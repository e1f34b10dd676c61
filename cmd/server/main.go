package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"coachingsite/config"
	_ "coachingsite/docs"
	"coachingsite/internal/adapters/auth"
	"coachingsite/internal/adapters/email"
	delivery "coachingsite/internal/delivery/http"
	"coachingsite/internal/delivery/http/controllers"
	"coachingsite/internal/delivery/http/middleware"
	"coachingsite/internal/repository/postgres"
	"coachingsite/internal/services"
)

// @title Coaching Site API
// @version 1.0
// @description Contact form, newsletter and appointment booking for the coaching website.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin token from POST /booking?action=admin-login, sent as "Bearer <token>".
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	loc := cfg.Location()

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
		},
		ResendAPIKey: cfg.Mail.ResendAPIKey,
	}, logger)
	notifier := services.NewNotifier(mailer, email.NewTemplateRenderer(loc), services.NotifierConfig{
		SiteName:   cfg.SiteName,
		AdminEmail: cfg.Mail.NotifyEmail,
	}, logger)

	secret := cfg.Admin.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("JWT_SECRET not set, using a per-process secret; admin tokens end with the process")
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD not set, admin login is disabled")
	}
	tokens := auth.NewJWT(secret)

	contactSvc := services.NewContactService(postgres.NewContactRepository(db), notifier)
	newsletterSvc := services.NewNewsletterService(postgres.NewSubscriberRepository(db), notifier, loc)
	bookingSvc := services.NewBookingService(postgres.NewSlotRepository(db), notifier, loc)
	adminSvc := services.NewAdminAuthService(auth.NewPasswordChecker(cfg.Admin.Password, cfg.Admin.PasswordHash), tokens, cfg.Admin.TokenTTL)

	router := delivery.NewRouter(delivery.RouterConfig{
		Logger:         logger,
		Verifier:       tokens,
		Contact:        controllers.NewContactController(logger, contactSvc),
		Newsletter:     controllers.NewNewsletterController(logger, newsletterSvc),
		Booking:        controllers.NewBookingController(logger, bookingSvc, adminSvc),
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, logger),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment, "mail_provider", cfg.Mail.Provider)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		logger.Warn("pending emails not delivered before shutdown", "err", err)
	}
	logger.Info("server stopped")
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
