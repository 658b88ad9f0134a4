package api

import (
	"log/slog"
	"net/http"
	"time"

	"lc_stat/internal/api/handler"
	"lc_stat/internal/api/middleware"
	"lc_stat/internal/app/service"
	"lc_stat/internal/common"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	TokenAuth      *jwtauth.JWTAuth
	AllowedOrigins []string
	HandlerTimeout time.Duration
}

func NewRouter(
	opts RouterOptions,
	authService *service.AuthService,
	userService *service.UserService,
	friendsService *service.FriendsService,
	reportService *service.ReportService,
) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(opts.HandlerTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Puts the verified bearer token, if any, in the context.
	r.Use(jwtauth.Verifier(opts.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(authService)
	statsHandler := handler.NewStatsHandler(reportService)
	userHandler := handler.NewUserHandler(userService, friendsService)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", authHandler.RegisterRoutes)

		statsHandler.RegisterRoutes(api)
		userHandler.RegisterRoutes(api)

		api.Group(func(private chi.Router) {
			private.Use(middleware.Authenticator)
			private.Route("/me", func(me chi.Router) {
				userHandler.RegisterMeRoutes(me)
				statsHandler.RegisterMeRoutes(me)
			})
		})
	})

	return r
}
