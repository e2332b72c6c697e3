package models

import "time"

// SubscriptionPackage представляет пакет подписки из каталога.
// Каталог читается ядром, но не редактируется им.
type SubscriptionPackage struct {
	ID           string    `json:"id"`            // Идентификатор пакета
	Name         string    `json:"name"`          // Название пакета
	Slug         string    `json:"slug"`          // Слаг для внешних ссылок
	Tier         Tier      `json:"tier"`          // Тариф, который активирует пакет
	Price        float64   `json:"price"`         // Цена пакета
	DurationDays int       `json:"duration_days"` // Длительность действия в днях
	Features     []string  `json:"features"`      // Список возможностей пакета
	IsPopular    bool      `json:"is_popular"`    // Помечен ли пакет как популярный
	IsActive     bool      `json:"is_active"`     // Доступен ли пакет для покупки
	DisplayOrder int       `json:"display_order"` // Порядок отображения
	CreatedAt    time.Time `json:"created_at"`    // Дата создания
}

// SubscriptionRecord представляет активацию тарифа по пакету.
// У пользователя может быть несколько записей (продления); текущий тариф
// для проверок доступа берется из Profile.Subscription.
type SubscriptionRecord struct {
	ID        string    `json:"id"`         // Идентификатор записи
	UserID    string    `json:"user_id"`    // Идентификатор пользователя
	PackageID string    `json:"package_id"` // Идентификатор пакета
	StartsAt  time.Time `json:"starts_at"`  // Начало действия
	ExpiresAt time.Time `json:"expires_at"` // Окончание действия: StartsAt + DurationDays
	IsActive  bool      `json:"is_active"`  // Признак активности записи
}

// DummyAssignSubscription используется для приема JSON-запроса прямого
// назначения подписки администратором.
type DummyAssignSubscription struct {
	UserID    string `json:"user_id" validate:"required,uuid"`    // Пользователь
	PackageID string `json:"package_id" validate:"required,uuid"` // Пакет
}
