package models

import "time"

// AuthUser представляет учетные данные пользователя: почту и хэш пароля.
// Профиль хранится отдельно и может появиться чуть позже учетной записи.
type AuthUser struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // Хэш пароля
	CreatedAt    time.Time // Дата регистрации
}

// DummyRegisterRequest используется для приема JSON-запроса регистрации.
type DummyRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`       // Электронная почта
	Password string `json:"password" validate:"required,min=8"`    // Пароль
	FullName string `json:"full_name" validate:"required,min=2"`   // Полное имя
	Phone    string `json:"phone_number,omitempty"`                // Телефон (опционально)
	Country  string `json:"country,omitempty"`                     // Страна (опционально)
}

// DummyLoginRequest используется для приема JSON-запроса входа.
type DummyLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`    // Электронная почта
	Password string `json:"password" validate:"required"`       // Пароль
}
