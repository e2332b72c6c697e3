// Package get реализует HTTP-обработчик получения сессии текущего пользователя.
//
// Handler извлекает идентификатор пользователя из контекста, собирает
// сессию с профилем, ролями и производными флагами доступа и возвращает
// ее в JSON-формате. Отсутствие профиля не является ошибкой: возвращается
// ограниченная сессия без профиля.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// Handler управляет HTTP-запросами на получение сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сборки сессии пользователя.
type Service interface {
	Resolve(ctx context.Context, userID string) (*models.Session, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить сессию текущего пользователя
// @Description Возвращает профиль, роли и производные флаги доступа. Если профиль еще не создан, возвращает ограниченную сессию.
// @Tags Session
// @Produce  json
// @Success 200 {object} map[string]any "Сессия пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.get"

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

	sess, err := h.service.Resolve(r.Context(), userUID)
	if err != nil {
		log.Error("failed to resolve session", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("storage is unavailable"))
		return
	}

	log.Info("session resolved", slog.Bool("has_profile", sess.Profile != nil))
	render.JSON(w, r, response.StatusOKWithData(sess))
}
