// Package list реализует HTTP-обработчик выдачи прогнозов по уровню подписки.
//
// Handler читает требуемый уровень из query-параметра tier, собирает сессию
// текущего пользователя и проверяет право просмотра. Контент уровня
// возвращается только если сессия проходит проверку доступа, иначе 403.
package list

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
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/services/access"
)

// Handler управляет HTTP-запросами на список прогнозов.
type Handler struct {
	log      *slog.Logger
	sessions SessionService
	tips     TipsProvider
}

// SessionService описывает интерфейс сборки сессии пользователя.
type SessionService interface {
	Resolve(ctx context.Context, userID string) (*models.Session, error)
}

// TipsProvider описывает интерфейс чтения прогнозов по категории.
type TipsProvider interface {
	ListTipsByCategory(ctx context.Context, category models.Tier) ([]*models.Tip, error)
}

// New создает новый Handler с переданными логгером и зависимостями.
func New(log *slog.Logger, sessions SessionService, tips TipsProvider) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		tips:     tips,
	}
}

// ServeHTTP godoc
// @Summary Получить прогнозы уровня подписки
// @Description Возвращает прогнозы запрошенного уровня, если сессия пользователя дает право их просматривать.
// @Tags Tips
// @Produce  json
// @Param tier query string false "Уровень контента: free, vip или special (по умолчанию free)"
// @Success 200 {object} map[string]any "Список прогнозов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав для просмотра"
// @Failure 422 {object} response.ErrorResponse "Неизвестный уровень подписки"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /tips [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tips.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tierStr := r.URL.Query().Get("tier")
	if tierStr == "" {
		tierStr = string(models.TierFree)
	}
	tier, err := models.ParseTier(tierStr)
	if err != nil {
		log.Error("unknown tier requested", slog.String("tier", tierStr))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown subscription tier"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sess, err := h.sessions.Resolve(r.Context(), userUID)
	if err != nil {
		log.Error("failed to resolve session", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("storage is unavailable"))
		return
	}

	if !access.CanView(sess, tier) {
		log.Info("access denied", slog.String("tier", string(tier)))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("subscription upgrade required"))
		return
	}

	res, err := h.tips.ListTipsByCategory(r.Context(), tier)
	if err != nil {
		log.Error("failed to list tips", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list tips"))
		return
	}

	log.Info("tips listed", slog.Int("count", len(res)), slog.String("tier", string(tier)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tips_count": len(res),
		"tips":       res,
	}))
}
