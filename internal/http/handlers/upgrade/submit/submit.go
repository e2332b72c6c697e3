// Package submit реализует HTTP-обработчик подачи заявки на повышение тарифа.
//
// Handler принимает JSON-запрос с желаемым тарифом, опциональным пакетом
// и подтверждением оплаты, валидирует его и создает заявку в статусе pending
// со снимком полей заявителя на момент подачи.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/services/upgrade"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// Handler управляет HTTP-запросами на подачу заявки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подачи заявки.
type Service interface {
	Submit(ctx context.Context, userID string, req models.DummyUpgradeRequest) (*models.UpgradeRequest, error)
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
// @Summary Подать заявку на повышение тарифа
// @Description Создает заявку в статусе pending со снимком данных заявителя. Подтверждение оплаты сохраняется до создания заявки.
// @Tags Upgrade
// @Accept  json
// @Produce  json
// @Param request body models.DummyUpgradeRequest true "Данные заявки"
// @Success 200 {object} map[string]any "Созданная заявка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Профиль еще не создан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неподходящий тариф"
// @Failure 503 {object} response.ErrorResponse "Хранилище подтверждений недоступно"
// @Security BearerAuth
// @Router /upgrade-requests [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upgrade.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("requested_tier", req.RequestedTier))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Submit(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, upgrade.ErrInvalidTier):
			log.Error("requested tier is not payable", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("requested tier must be vip or special"))
		case errors.Is(err, upgrade.ErrInvalidProof):
			log.Error("payment proof is not decodable", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("payment proof is not valid base64"))
		case errors.Is(err, upgrade.ErrPackageTierMismatch):
			log.Error("package does not match requested tier", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("package does not match requested tier"))
		case errors.Is(err, upgrade.ErrProofStorage):
			log.Error("failed to store payment proof", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("proof storage is unavailable, retry later"))
		case errors.Is(err, repository.ErrNotFound):
			log.Error("profile is not provisioned yet", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("profile is not provisioned yet, retry later"))
		default:
			log.Error("failed to submit upgrade request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to submit upgrade request"))
		}
		return
	}

	log.Info("upgrade request submitted", slog.String("request_id", res.ID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
