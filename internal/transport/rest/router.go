package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/finance-tracker/internal/auth"
	"github.com/frahmantamala/finance-tracker/internal/category"
	"github.com/frahmantamala/finance-tracker/internal/expense"
	"github.com/frahmantamala/finance-tracker/internal/passwordreset"
	"github.com/frahmantamala/finance-tracker/internal/transport/middleware"
	"github.com/frahmantamala/finance-tracker/internal/transport/swagger"
	"github.com/frahmantamala/finance-tracker/internal/user"
	"github.com/go-chi/chi"
)

// RegisterAllRoutes wires every endpoint onto the router. Paths keep
// their trailing slashes so existing API clients keep working.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	categoryHandler *category.Handler,
	expenseHandler *expense.Handler,
	resetHandler *passwordreset.Handler,
	mediaFS http.FileSystem,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Uploaded receipts.
	if mediaFS != nil {
		router.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(mediaFS)))
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/register/", userHandler.Register)
		r.Post("/token/", authHandler.Login)
		r.Post("/token/refresh/", authHandler.RefreshToken)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/password_reset/", resetHandler.Request)
			ar.Post("/reset/{uid}/{token}/", resetHandler.Confirm)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/profile/", userHandler.GetProfile)

			pr.Route("/categories", func(cr chi.Router) {
				cr.Get("/", categoryHandler.List)
				cr.Post("/", categoryHandler.Create)
				cr.Get("/{id}/", categoryHandler.Get)
				cr.Put("/{id}/", categoryHandler.Update)
				cr.Patch("/{id}/", categoryHandler.Patch)
				cr.Delete("/{id}/", categoryHandler.Delete)
			})

			pr.Route("/expenses", func(er chi.Router) {
				er.Get("/", expenseHandler.List)
				er.Post("/", expenseHandler.Create)
				er.Get("/{id}/", expenseHandler.Get)
				er.Put("/{id}/", expenseHandler.Update)
				er.Patch("/{id}/", expenseHandler.Patch)
				er.Delete("/{id}/", expenseHandler.Delete)
			})
		})
	})
}
