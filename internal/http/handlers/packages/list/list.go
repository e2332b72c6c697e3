// Package list реализует HTTP-обработчик выдачи активных пакетов подписки.
package list

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

// Handler управляет HTTP-запросами на список пакетов подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс каталога пакетов.
type Service interface {
	ListActive(ctx context.Context) ([]*models.SubscriptionPackage, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить активные пакеты подписки
// @Description Возвращает список активных пакетов, отсортированный для витрины.
// @Tags Packages
// @Produce  json
// @Success 200 {object} map[string]any "Список пакетов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выдаче пакетов"
// @Router /packages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.packages.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.ListActive(r.Context())
	if err != nil {
		log.Error("failed to list packages", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list packages"))
		return
	}

	log.Info("packages listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"packages_count": len(res),
		"packages":       res,
	}))
}
