package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// RoleSource отдает актуальные роли пользователя из хранилища.
type RoleSource interface {
	ListRoles(ctx context.Context, userID string) ([]models.Role, error)
}

// AdminOnlyMiddleware пропускает запрос дальше только для администраторов.
// Роль не берется из токена: она перечитывается из хранилища на каждый
// запрос, поэтому снятие роли действует сразу, не дожидаясь истечения
// ранее выданных токенов.
func AdminOnlyMiddleware(log *slog.Logger, roles RoleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "auth.AdminOnlyMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			uid, ok := r.Context().Value(UserUID).(string)
			if !ok || uid == "" {
				log.Error("user identity missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identity missing"))
				return
			}

			current, err := roles.ListRoles(r.Context(), uid)
			if err != nil {
				log.Error("failed to verify role", sl.Err(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error("failed to verify role"))
				return
			}

			isAdmin := false
			for _, role := range current {
				if role == models.RoleAdmin {
					isAdmin = true
					break
				}
			}
			if !isAdmin {
				log.Error("admin access required", slog.String("user_uid", uid))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
