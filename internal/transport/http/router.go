package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jobboard-api/internal/application/auth"
	"github.com/jobboard-api/internal/config"
	"github.com/jobboard-api/internal/domain"
	jwtinfra "github.com/jobboard-api/internal/infrastructure/jwt"
	"github.com/jobboard-api/internal/infrastructure/smtp"
	"github.com/jobboard-api/internal/infrastructure/sns"
	"github.com/jobboard-api/internal/transport/http/handler"
	appmiddleware "github.com/jobboard-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	SessionRepo SessionRepository
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender // nil disables the SMS mirror
	Signer      *jwtinfra.Provider
}

// NewRouter builds and returns the application router. ctx bounds the
// background work started for the router, such as rate limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		Mailer:      deps.Mailer,
		SMSSender:   deps.SMSSender,
		BcryptCost:  cfg.BcryptCost,
		OTPTTL:      cfg.OTPTTL,
		SessionTTL:  cfg.SessionTTL,
	})
	return newRouter(ctx, cfg, authSvc, deps.Signer)
}

func newRouter(ctx context.Context, cfg *config.Config, authSvc auth.Service, signer *jwtinfra.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.Session(authSvc, signer, cfg.SessionCookieName))

	// 5 requests/second, burst of 10 on the unauthenticated auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(authSvc)
	sessionH := handler.NewSessionHandler(authSvc, signer, handler.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.CookieSecure,
	})
	emailH := handler.NewEmailConfirmHandler(authSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)

	r.Get("/health-check/{action}", healthH.Ping)

	routes := func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.With(sensitiveRL.Limit).Post("/register", userH.Register)
		r.With(sensitiveRL.Limit).Post("/verify-otp", emailH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/resend-otp", emailH.ResendOTP)
		r.With(sensitiveRL.Limit).Post("/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/request-password-reset", pwH.Request)
		r.With(sensitiveRL.Limit).Post("/reset-password", pwH.Reset)

		// ── Session routes ───────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireSession)

			r.Post("/logout", sessionH.Logout)
			r.Put("/update-profile", userH.UpdateProfile)
			r.Get("/dashboard", handler.Dashboard)
		})

		// ── Role dashboards ──────────────────────────────────────────────────
		r.With(appmiddleware.RequireRole(domain.RoleClient)).Get("/client-dashboard", handler.RoleDashboard(domain.RoleClient))
		r.With(appmiddleware.RequireRole(domain.RoleWorker)).Get("/worker-dashboard", handler.RoleDashboard(domain.RoleWorker))
		r.With(appmiddleware.RequireRole(domain.RoleLeader)).Get("/leader-dashboard", handler.RoleDashboard(domain.RoleLeader))
	}

	routes(r)
	r.Route("/api/auth", routes)

	return r
}

