package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/financeops/finance-management/internal/auth"
	coreuser "github.com/financeops/finance-management/internal/core/user"
	"github.com/financeops/finance-management/internal/finance"
	"github.com/financeops/finance-management/internal/transport/middleware"
	"github.com/financeops/finance-management/internal/transport/swagger"
	"github.com/financeops/finance-management/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, revenueHandler, expenseHandler *finance.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)
			pr.Use(middleware.UserContext)

			// OTP enrollment and verification for the logged-in user
			pr.Post("/auth/generate-otp", authHandler.GenerateOTP)
			pr.Post("/auth/verify-otp", authHandler.VerifyOTP)

			if userHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					// Current user
					ur.Get("/me", userHandler.GetCurrentUser)
					ur.Put("/me", userHandler.UpdateCurrentUser)

					// Hierarchy views for the logged-in manager
					ur.Get("/subordinates", userHandler.GetSubordinates)
					ur.Get("/hierarchy", userHandler.GetHierarchy)

					// Subordinate creation forces the actor as manager
					ur.With(middleware.RequireMinRole(coreuser.RoleManager)).
						Post("/subordinates", userHandler.CreateSubordinate)

					// Directory routes, manager rank and above
					ur.With(middleware.RequireMinRole(coreuser.RoleManager)).
						Get("/", userHandler.ListUsers)
					ur.Get("/{id}", userHandler.GetUser)

					// Administration routes
					ur.With(middleware.RequireMinRole(coreuser.RoleAdmin)).Group(func(ar chi.Router) {
						ar.Post("/", userHandler.CreateUser)
						ar.Put("/{id}", userHandler.UpdateUser)
						ar.Post("/{id}/deactivate", userHandler.DeactivateUser)
						ar.Post("/{id}/activate", userHandler.ActivateUser)
					})

					ur.With(middleware.RequireMinRole(coreuser.RoleSuperAdmin)).
						Delete("/{id}", userHandler.DeleteUser)
				})
			}

			// Ledger routes, one subtree per kind
			mountEntryRoutes := func(path string, h *finance.Handler) {
				pr.Route(path, func(er chi.Router) {
					er.With(middleware.RequireMinRole(coreuser.RoleAccountant)).
						Post("/", h.CreateEntry)
					er.Get("/", h.ListEntries)
					er.Get("/{id}", h.GetEntry)
					er.Put("/{id}", h.UpdateEntry)

					er.With(middleware.RequireMinRole(coreuser.RoleManager)).
						Post("/{id}/approve", h.ApproveEntry)

					er.With(middleware.RequireMinRole(coreuser.RoleAdmin)).
						Delete("/{id}", h.DeleteEntry)
				})
			}

			if revenueHandler != nil {
				mountEntryRoutes("/revenues", revenueHandler)
			}
			if expenseHandler != nil {
				mountEntryRoutes("/expenses", expenseHandler)
			}
		})
	})
}
