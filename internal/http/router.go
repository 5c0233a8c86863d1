package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/playtimeuy/payments/internal/http/auth"
	"github.com/playtimeuy/payments/internal/http/checkout"
	"github.com/playtimeuy/payments/internal/http/sale"
	"github.com/playtimeuy/payments/internal/http/webhook"
)

type Options struct {
	AllowedOrigins []string
	// AdminSecret signs admin API tokens. The admin API is not mounted when empty.
	AdminSecret string
}

func New(
	opts Options,
	checkoutV1 *checkout.Handler,
	webhookV1 *webhook.Handler,
	salesV1 *sale.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		checkoutV1.Routes(r)
	})

	webhookV1.Routes(router)

	if opts.AdminSecret != "" && salesV1 != nil {
		router.Route("/api/v1/sales", func(r chi.Router) {
			r.Use(auth.RequireRole([]byte(opts.AdminSecret), auth.RoleAdmin))
			salesV1.Routes(r)
		})
	}

	return router
}
