// Package listrequests реализует HTTP-обработчик списка заявок на повышение
// тарифа для администраторов. Поддерживает фильтрацию по статусу заявки.
package listrequests

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

// Handler управляет HTTP-запросами на список заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки заявок.
type Service interface {
	List(ctx context.Context, status *models.RequestStatus) ([]*models.UpgradeRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить заявки на повышение тарифа
// @Description Возвращает заявки, отсортированные от новых к старым. Параметр status фильтрует по состоянию заявки.
// @Tags Upgrade
// @Produce  json
// @Param status query string false "Фильтр по статусу: pending, approved или rejected"
// @Success 200 {object} map[string]any "Список заявок"
// @Failure 422 {object} response.ErrorResponse "Неизвестный статус заявки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выборке заявок"
// @Security BearerAuth
// @Router /admin/upgrade-requests [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upgrade.listrequests"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var status *models.RequestStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		parsed, err := models.ParseRequestStatus(statusStr)
		if err != nil {
			log.Error("unknown request status", slog.String("status", statusStr))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown request status"))
			return
		}
		status = &parsed
	}

	res, err := h.service.List(r.Context(), status)
	if err != nil {
		log.Error("failed to list upgrade requests", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list upgrade requests"))
		return
	}

	log.Info("upgrade requests listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"requests_count": len(res),
		"requests":       res,
	}))
}
