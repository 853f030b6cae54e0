package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-redis/internal/application/registration"
	"github.com/go-otp-redis/internal/application/session"
	"github.com/go-otp-redis/internal/application/verification"
	"github.com/go-otp-redis/internal/config"
	"github.com/go-otp-redis/internal/transport/http/handler"
	appmiddleware "github.com/go-otp-redis/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second with a burst of 10 on the sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	registrationSvc := registration.NewService(registration.ServiceDeps{
		UserRepo:  deps.UserRepo,
		OTPStore:  deps.OTPStore,
		Channel:   deps.Channel,
		OTPLength: cfg.OTPLength,
	})
	verificationSvc := verification.NewService(deps.UserRepo, deps.OTPStore)

	healthH := handler.NewHealthHandler()
	registrationH := handler.NewRegistrationHandler(registrationSvc)
	verificationH := handler.NewVerificationHandler(verificationSvc)

	// ── Public routes ────────────────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/health-check/{action}", healthH.Ping)
	r.With(sensitiveRL.Limit).Post("/register", registrationH.Register)
	r.Post("/verify", verificationH.Verify)
	r.With(sensitiveRL.Limit).Post("/resendotp", registrationH.Resend)

	// Session routes need signing keys. Without a provider they answer 503
	// instead of wiring a service that cannot sign.
	if deps.JWTProvider != nil {
		sessionSvc := session.NewService(deps.UserRepo, deps.JWTProvider)
		sessionH := handler.NewSessionHandler(sessionSvc)
		r.With(sensitiveRL.Limit).Post("/login", sessionH.Login)

		// ── Authenticated routes ─────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Get("/me", sessionH.Me)
		})
	} else {
		r.Post("/login", sessionUnavailable)
		r.Get("/me", sessionUnavailable)
	}

	return r
}

func sessionUnavailable(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":"login is unavailable, signing keys are not configured"}`))
}
