// Package subscriptiongatekeeper предоставляет маршруты для основного приложения.
package subscriptiongatekeeper

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/assignsubscription"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/broadcast"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/grantrole"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/listusers"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/revokerole"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/userstatus"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/health"
	notificationlist "github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/notification/markallread"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/notification/markread"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/notification/stream"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/notification/unread"
	packageslist "github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/packages/list"
	sessionget "github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/session/get"
	tipslist "github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/tips/list"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/upgrade/listrequests"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/upgrade/resolve"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/upgrade/submit"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/realtime"
	adminservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/admin"
	authservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/catalog"
	notificationservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/notification"
	sessionservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/session"
	upgradeservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/upgrade"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// Services группирует зависимости маршрутов приложения.
type Services struct {
	Auth          *authservice.Service
	Session       *sessionservice.Service
	Catalog       *catalogservice.Service
	Upgrade       *upgradeservice.Service
	Admin         *adminservice.Service
	Notifications *notificationservice.Service
	Tips          *repository.Storage
	Roles         middlewarectx.RoleSource
	Hub           *realtime.Hub
	JWTMaker      jwt.Maker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/packages", packageslist.New(logger, s.Catalog).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/session", sessionget.New(logger, s.Session).ServeHTTP)
			r.Get("/tips", tipslist.New(logger, s.Session, s.Tips).ServeHTTP)
			r.Post("/upgrade-requests", submit.New(logger, s.Upgrade).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, s.Notifications).ServeHTTP)
			r.Get("/notifications/unread", unread.New(logger, s.Notifications).ServeHTTP)
			r.Get("/notifications/stream", stream.New(logger, s.Hub).ServeHTTP)
			r.Post("/notifications/read-all", markallread.New(logger, s.Notifications).ServeHTTP)
			r.Post("/notifications/{id}/read", markread.New(logger, s.Notifications).ServeHTTP)
		})

		// Группа только для администраторов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger, s.Roles))

			r.Get("/admin/users", listusers.New(logger, s.Admin).ServeHTTP)
			r.Post("/admin/users/{id}/status", userstatus.New(logger, s.Admin).ServeHTTP)
			r.Post("/admin/subscriptions", assignsubscription.New(logger, s.Admin).ServeHTTP)
			r.Post("/admin/roles", grantrole.New(logger, s.Admin).ServeHTTP)
			r.Delete("/admin/roles/{id}", revokerole.New(logger, s.Admin).ServeHTTP)
			r.Get("/admin/upgrade-requests", listrequests.New(logger, s.Upgrade).ServeHTTP)
			r.Post("/admin/upgrade-requests/{id}", resolve.New(logger, s.Upgrade).ServeHTTP)
			r.Post("/admin/notifications", broadcast.New(logger, s.Notifications).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
