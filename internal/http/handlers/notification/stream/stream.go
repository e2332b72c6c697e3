// Package stream реализует HTTP-обработчик realtime-потока уведомлений
// по протоколу Server-Sent Events.
//
// Handler подписывает пользователя на его канал событий и пишет каждое
// событие отдельным SSE-сообщением до разрыва соединения клиентом.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/realtime"
)

// Handler управляет SSE-подключениями к потоку уведомлений.
type Handler struct {
	log *slog.Logger
	hub *realtime.Hub
}

// New создает новый Handler с переданными логгером и хабом событий.
func New(log *slog.Logger, hub *realtime.Hub) *Handler {
	return &Handler{
		log: log,
		hub: hub,
	}
}

// ServeHTTP godoc
// @Summary Подписаться на поток уведомлений
// @Description Открывает SSE-поток с событиями уведомлений текущего пользователя.
// @Tags Notifications
// @Produce  text/event-stream
// @Success 200 {string} string "Поток событий"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Security BearerAuth
// @Router /notifications/stream [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.stream"

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

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming is not supported by response writer")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("streaming is not supported"))
		return
	}

	events, unsubscribe := h.hub.Subscribe(userUID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.Info("notification stream opened")

	for {
		select {
		case <-r.Context().Done():
			log.Info("notification stream closed by client")
			return
		case event, more := <-events:
			if !more {
				log.Info("notification stream closed by hub")
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Error("failed to marshal notification event", sl.Err(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				log.Error("failed to write notification event", sl.Err(err))
				return
			}
			flusher.Flush()
		}
	}
}
