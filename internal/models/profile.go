package models

import "time"

// Profile представляет профиль аутентифицированного пользователя.
// Создается при регистрации со статусом pending и тарифом free,
// изменяется только действиями администратора или одобрением заявки.
type Profile struct {
	ID           string    `json:"id"`                     // Уникальный идентификатор пользователя (uuid)
	Email        string    `json:"email"`                  // Электронная почта
	FullName     *string   `json:"full_name,omitempty"`    // Полное имя (опционально)
	PhoneNumber  *string   `json:"phone_number,omitempty"` // Телефон (опционально)
	Country      *string   `json:"country,omitempty"`      // Страна (опционально)
	Status       Status    `json:"status"`                 // Статус учетной записи
	Subscription Tier      `json:"subscription"`           // Текущий тариф
	CreatedAt    time.Time `json:"created_at"`             // Дата создания профиля
}

// Session содержит профиль, роли и производные флаги доступа на момент
// разрешения. Флаги пересчитываются при каждом Resolve и отдельно
// не кешируются.
type Session struct {
	Profile *Profile `json:"profile"` // nil, если профиль еще не создан
	Roles   []Role   `json:"roles"`

	IsAdmin    bool `json:"is_admin"`
	IsApproved bool `json:"is_approved"`
	IsVip      bool `json:"is_vip"`
	IsSpecial  bool `json:"is_special"`
}

// RoleAssignment представляет строку назначения роли пользователю.
// Пользователь с хотя бы одной строкой admin считается администратором.
type RoleAssignment struct {
	ID        string    `json:"id"`         // Идентификатор назначения
	UserID    string    `json:"user_id"`    // Идентификатор пользователя
	Role      Role      `json:"role"`       // Назначенная роль
	CreatedAt time.Time `json:"created_at"` // Дата назначения
}

// DummyGrantRole используется для приема JSON-запроса назначения роли.
type DummyGrantRole struct {
	UserID string `json:"user_id" validate:"required,uuid"`            // Пользователь
	Role   string `json:"role" validate:"required,oneof=user admin"`   // Назначаемая роль
}

// DummyUpdateStatus используется для приема JSON-запроса смены статуса
// учетной записи.
type DummyUpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=pending approved blocked"` // Новый статус
}
