// Package markallread реализует HTTP-обработчик отметки всех уведомлений
// пользователя прочитанными. Операция идемпотентна.
package markallread

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

// Handler управляет HTTP-запросами на массовую отметку прочитанными.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс массовой отметки прочитанными.
type Service interface {
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить все уведомления прочитанными
// @Description Помечает все непрочитанные уведомления пользователя прочитанными и возвращает их число. Повторный вызов безопасен.
// @Tags Notifications
// @Produce  json
// @Success 200 {object} map[string]any "Число отмеченных уведомлений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отметке"
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.markallread"

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

	affected, err := h.service.MarkAllRead(r.Context(), userUID)
	if err != nil {
		log.Error("failed to mark all notifications read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to mark all notifications read"))
		return
	}

	log.Info("all notifications marked read", slog.Int("affected", affected))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"marked_count": affected,
	}))
}
