// Package grantrole реализует HTTP-обработчик назначения роли пользователю.
// Повторное назначение уже существующей роли возвращает 409.
package grantrole

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

// Handler управляет HTTP-запросами на назначение роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс назначения роли.
type Service interface {
	GrantRole(ctx context.Context, req models.DummyGrantRole) (string, error)
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
// @Summary Назначить роль пользователю
// @Description Создает строку назначения роли. Возвращает 409, если роль уже назначена.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyGrantRole true "Пользователь и роль"
// @Success 200 {object} map[string]any "Идентификатор назначения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Роль уже назначена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при назначении роли"
// @Security BearerAuth
// @Router /admin/roles [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.grantrole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyGrantRole
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("user_id", req.UserID), slog.String("role", req.Role))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	assignmentID, err := h.service.GrantRole(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrRoleExists) {
			log.Error("role already granted", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("role already granted"))
			return
		}
		log.Error("failed to grant role", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to grant role"))
		return
	}

	log.Info("role granted", slog.String("assignment_id", assignmentID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"assignment_id": assignmentID,
	}))
}
