// Package api serves the lending service over HTTP with JSON bodies and
// bearer token authentication.
package api

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/auth"
	"github.com/erazemk/izposoja/internal/catalog"
	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/metrics"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
)

// Deps are the services the router dispatches to.
type Deps struct {
	DB        *sql.DB
	Issuer    *auth.Issuer
	Engine    *lending.Engine
	Catalog   *catalog.Service
	Inbox     *notify.Inbox
	Metrics   *metrics.Metrics
	LoginRate config.LoginRateConfig
	Log       zerolog.Logger
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	if d.Metrics == nil {
		d.Metrics = metrics.New(config.MetricsConfig{})
	}

	authHandler := &AuthHandler{DB: d.DB, Issuer: d.Issuer, Log: d.Log}
	usersHandler := &UsersHandler{DB: d.DB, Log: d.Log}
	itemsHandler := &ItemsHandler{Catalog: d.Catalog, Log: d.Log}
	requestsHandler := &RequestsHandler{Engine: d.Engine, Log: d.Log}
	notificationsHandler := &NotificationsHandler{Inbox: d.Inbox, Log: d.Log}

	authMW := AuthMiddleware(d.Issuer, d.DB, d.Log)
	requireAdmin := RequireRole(model.RoleAdmin)
	limiter := newLoginLimiter(d.LoginRate)

	// Public: login and metrics.
	mux.Handle("POST /api/auth/login", limiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// Authenticated routes.
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: any member may post; only the owner may change.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Owner dashboards.
	mux.Handle("GET /api/me/items/active", authMW(http.HandlerFunc(itemsHandler.Active)))
	mux.Handle("GET /api/me/items/lent", authMW(http.HandlerFunc(itemsHandler.Lent)))
	mux.Handle("GET /api/me/items/sold", authMW(http.HandlerFunc(itemsHandler.Sold)))

	// Requests.
	mux.Handle("POST /api/requests", authMW(http.HandlerFunc(requestsHandler.Create)))
	mux.Handle("GET /api/requests/mine", authMW(http.HandlerFunc(requestsHandler.Mine)))
	mux.Handle("GET /api/requests/received", authMW(http.HandlerFunc(requestsHandler.Received)))
	mux.Handle("GET /api/requests/accepted", authMW(http.HandlerFunc(requestsHandler.Accepted)))
	mux.Handle("GET /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.Get)))
	mux.Handle("PUT /api/requests/{id}/status", authMW(http.HandlerFunc(requestsHandler.UpdateStatus)))
	mux.Handle("POST /api/requests/{id}/lent", authMW(http.HandlerFunc(requestsHandler.MarkLent)))
	mux.Handle("POST /api/requests/{id}/receipt", authMW(http.HandlerFunc(requestsHandler.ConfirmReceipt)))
	mux.Handle("POST /api/requests/{id}/done", authMW(http.HandlerFunc(requestsHandler.MarkDone)))
	mux.Handle("POST /api/requests/{id}/return", authMW(http.HandlerFunc(requestsHandler.ConfirmReturn)))

	// Notifications.
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("GET /api/notifications/unread-count", authMW(http.HandlerFunc(notificationsHandler.UnreadCount)))
	mux.Handle("PUT /api/notifications/read-all", authMW(http.HandlerFunc(notificationsHandler.MarkAllRead)))
	mux.Handle("PUT /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))
	mux.Handle("DELETE /api/notifications/{id}", authMW(http.HandlerFunc(notificationsHandler.Delete)))

	return LoggingMiddleware(d.Log, d.Metrics)(mux)
}
