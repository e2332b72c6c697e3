// Package realtime реализует шину событий уведомлений, разделенную по
// получателям. Единственный производитель — диспетчер рассылки; каждый
// подключенный клиент получает события своего пользователя в порядке записи.
// Упорядоченность между разными получателями не гарантируется.
package realtime

import (
	"sync"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

const subscriberBuffer = 16

// Hub хранит подписки realtime-клиентов по идентификатору пользователя.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.NotificationEvent]struct{}
}

// NewHub создает пустую шину.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan models.NotificationEvent]struct{}),
	}
}

// Subscribe регистрирует подписчика на события пользователя и возвращает
// канал событий вместе с функцией отписки. Канал закрывается при отписке.
func (h *Hub) Subscribe(userID string) (<-chan models.NotificationEvent, func()) {
	ch := make(chan models.NotificationEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan models.NotificationEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish доставляет событие всем подписчикам получателя. Медленный
// подписчик с переполненным буфером пропускает событие: счетчик
// непрочитанного он все равно обновит при следующем событии или опросе.
func (h *Hub) Publish(userID string, event models.NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
