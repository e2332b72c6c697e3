// Package listusers реализует HTTP-обработчик списка пользователей
// и действующих администраторов для панели управления.
package listusers

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

// Handler управляет HTTP-запросами на список пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения пользователей и администраторов.
type Service interface {
	ListUsers(ctx context.Context) ([]*models.Profile, error)
	ListAdmins(ctx context.Context) ([]*models.RoleAssignment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить пользователей и администраторов
// @Description Возвращает все профили и действующие назначения роли admin.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Пользователи и администраторы"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выборке пользователей"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.listusers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		log.Error("failed to list admins", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list admins"))
		return
	}

	log.Info("users listed", slog.Int("users_count", len(users)), slog.Int("admins_count", len(admins)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users_count": len(users),
		"users":       users,
		"admins":      admins,
	}))
}
