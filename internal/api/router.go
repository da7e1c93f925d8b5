package api

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/service"
	"github.com/erazemk/najdeno/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
//
// Role checks here only reject obviously unauthorized callers early; the
// service layer re-checks every rule against the stored account.
func NewRouter(db *sql.DB, jwtSecret string, opts ...service.Option) http.Handler {
	mux := http.NewServeMux()

	st := store.New(db)
	engine := service.NewEngine(st, st, st, opts...)
	users := service.NewUserAdmin(st, opts...)

	authHandler := &AuthHandler{Store: st, Users: users, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{Users: users}
	itemsHandler := &ItemsHandler{Engine: engine}
	requestsHandler := &RequestsHandler{Engine: engine}

	authMW := AuthMiddleware(jwtSecret, st)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff)
	requireUser := RequireRole(model.RoleUser)

	// Public.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Session.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items: read (all roles), report (user+), edit/delete checked per item.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireUser(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Claim requests: file (user+), own reads checked per request, listings and resolution (staff+).
	mux.Handle("POST /api/requests", authMW(requireUser(http.HandlerFunc(requestsHandler.Create))))
	mux.Handle("GET /api/requests", authMW(requireStaff(http.HandlerFunc(requestsHandler.List))))
	mux.Handle("GET /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.Get)))
	mux.Handle("PUT /api/requests/{id}/status", authMW(requireStaff(http.HandlerFunc(requestsHandler.UpdateStatus))))
	mux.Handle("DELETE /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.Delete)))
	mux.Handle("GET /api/requests/user/{userID}", authMW(http.HandlerFunc(requestsHandler.ByUser)))
	mux.Handle("GET /api/requests/item/{itemID}", authMW(requireStaff(http.HandlerFunc(requestsHandler.ByItem))))
	mux.Handle("GET /api/requests/status/{status}", authMW(requireStaff(http.HandlerFunc(requestsHandler.ByStatus))))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/role", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return RequestIDMiddleware(LoggingMiddleware(metrics.Middleware(mux)))
}
