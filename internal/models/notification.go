package models

import "time"

// Notification представляет уведомление, адресованное одному пользователю.
// Создается только диспетчером рассылки; получатель может менять лишь
// признак прочтения.
type Notification struct {
	ID        string    `json:"id"`         // Идентификатор уведомления
	UserID    string    `json:"user_id"`    // Получатель
	Title     string    `json:"title"`      // Заголовок
	Message   string    `json:"message"`    // Текст сообщения
	IsRead    bool      `json:"is_read"`    // Признак прочтения
	CreatedAt time.Time `json:"created_at"` // Дата создания
}

// AudienceFilter описывает предикат над профилями для массовой рассылки.
// Пустой фильтр означает всех пользователей. Предикат вычисляется по
// хранилищу в момент вызова, а не по закешированному списку.
type AudienceFilter struct {
	Status *Status `json:"status,omitempty"` // Требуемый статус учетной записи
	Tiers  []Tier  `json:"tiers,omitempty"`  // Допустимые тарифы
}

// Matches сообщает, попадает ли профиль под фильтр.
func (f AudienceFilter) Matches(p *Profile) bool {
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if len(f.Tiers) == 0 {
		return true
	}
	for _, t := range f.Tiers {
		if p.Subscription == t {
			return true
		}
	}
	return false
}

// NotificationEvent — событие realtime-канала о вставке или обновлении
// строки уведомления. Передается подписчику получателя в порядке записи.
type NotificationEvent struct {
	Kind         string       `json:"kind"` // "insert" или "update"
	Notification Notification `json:"notification"`
	UnreadCount  int          `json:"unread_count"`
}

// DummyNotificationRequest используется для приема JSON-запроса рассылки
// уведомления администратором: либо одному пользователю, либо аудитории
// по фильтру.
type DummyNotificationRequest struct {
	UserID   *string         `json:"user_id,omitempty" validate:"omitempty,uuid"` // Получатель, если рассылка одному
	Title    string          `json:"title" validate:"required"`                   // Заголовок
	Message  string          `json:"message" validate:"required"`                 // Текст
	Audience *AudienceFilter `json:"audience,omitempty"`                          // Фильтр аудитории для массовой рассылки
}

// NotificationEmail — сообщение для очереди почтовой доставки уведомлений.
type NotificationEmail struct {
	Email   string `json:"email"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
