// Package revokerole реализует HTTP-обработчик снятия ранее назначенной роли.
// Администратор не может снять собственную последнюю роль admin.
package revokerole

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// Handler управляет HTTP-запросами на снятие роли.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс снятия роли.
type Service interface {
	RevokeRole(ctx context.Context, assignmentID, actingAdminID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Снять назначенную роль
// @Description Удаляет строку назначения роли. Попытка снять собственную последнюю роль admin возвращает 409.
// @Tags Admin
// @Produce  json
// @Param id path string true "Идентификатор назначения"
// @Success 200 {object} map[string]any "Роль снята"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Назначение не найдено"
// @Failure 409 {object} response.ErrorResponse "Последняя роль admin не может быть снята"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при снятии роли"
// @Security BearerAuth
// @Router /admin/roles/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.revokerole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		log.Error("assignment id missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("assignment id is required"))
		return
	}

	adminUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || adminUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.RevokeRole(r.Context(), assignmentID, adminUID); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastAdmin):
			log.Error("cannot revoke own last admin role", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot revoke own last admin role"))
		case errors.Is(err, repository.ErrNotFound):
			log.Error("role assignment not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("role assignment not found"))
		default:
			log.Error("failed to revoke role", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to revoke role"))
		}
		return
	}

	log.Info("role revoked", slog.String("assignment_id", assignmentID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"assignment_id": assignmentID,
		"message":       "role revoked",
	}))
}
