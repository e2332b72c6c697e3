// Package unread реализует HTTP-обработчик счетчика непрочитанных уведомлений.
package unread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
)

// Handler управляет HTTP-запросами на счетчик непрочитанных.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс подсчета непрочитанных уведомлений.
type Service interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить число непрочитанных уведомлений
// @Tags Notifications
// @Produce  json
// @Success 200 {object} map[string]any "Счетчик непрочитанных"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при подсчете"
// @Security BearerAuth
// @Router /notifications/unread [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.unread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userUID)
	if err != nil {
		log.Error("failed to count unread notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to count unread notifications"))
		return
	}

	log.Info("unread notifications counted", slog.Int("count", count))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"unread_count": count,
	}))
}
