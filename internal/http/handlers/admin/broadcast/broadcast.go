// Package broadcast реализует HTTP-обработчик рассылки уведомлений
// администратором: одному пользователю или аудитории по фильтру.
// Аудитория фиксируется на момент вызова; пользователи, попавшие под
// фильтр позже, рассылку не получают.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// Handler управляет HTTP-запросами на рассылку уведомлений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс отправки уведомлений.
type Service interface {
	SendToUser(ctx context.Context, userID, title, message string) (*models.Notification, error)
	SendToAll(ctx context.Context, title, message string, audience models.AudienceFilter) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Разослать уведомление
// @Description Отправляет уведомление одному пользователю (user_id) или всем, кто попадает под фильтр аудитории на момент вызова.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyNotificationRequest true "Содержимое и адресаты"
// @Success 200 {object} map[string]any "Результат рассылки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Получатель не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при рассылке"
// @Security BearerAuth
// @Router /admin/notifications [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.broadcast"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("title", req.Title))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	if req.UserID != nil {
		res, err := h.service.SendToUser(r.Context(), *req.UserID, req.Title, req.Message)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.Error("recipient not found", sl.Err(err))
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error("recipient not found"))
				return
			}
			log.Error("failed to send notification", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to send notification"))
			return
		}

		log.Info("notification sent", slog.String("user_id", *req.UserID))
		render.JSON(w, r, response.StatusOKWithData(res))
		return
	}

	var audience models.AudienceFilter
	if req.Audience != nil {
		audience = *req.Audience
	}

	sent, err := h.service.SendToAll(r.Context(), req.Title, req.Message, audience)
	if err != nil {
		log.Error("failed to broadcast notification", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to broadcast notification"))
		return
	}

	log.Info("notification broadcasted", slog.Int("recipients", sent))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"recipients_count": sent,
	}))
}
