package models

import "time"

// UpgradeRequest представляет заявку пользователя на повышение тарифа.
// Контактные данные и текущий тариф фиксируются на момент подачи,
// чтобы последующие правки профиля не меняли аудиторский след.
// Заявки никогда не удаляются.
type UpgradeRequest struct {
	ID                   string        `json:"id"`                               // Идентификатор заявки
	UserID               string        `json:"user_id"`                          // Идентификатор заявителя
	UserEmail            string        `json:"user_email"`                       // Почта заявителя на момент подачи
	UserName             *string       `json:"user_name,omitempty"`              // Имя заявителя на момент подачи
	UserPhone            *string       `json:"user_phone,omitempty"`             // Телефон заявителя на момент подачи
	UserCountry          *string       `json:"user_country,omitempty"`           // Страна заявителя на момент подачи
	CurrentTier          Tier          `json:"current_tier"`                     // Тариф заявителя на момент подачи
	RequestedTier        Tier          `json:"requested_tier"`                   // Запрошенный тариф, vip или special
	RequestedPackageID   *string       `json:"requested_package_id,omitempty"`   // Идентификатор пакета (опционально)
	RequestedPackageName *string       `json:"requested_package_name,omitempty"` // Название пакета (опционально)
	PaymentProofKey      *string       `json:"payment_proof_key,omitempty"`      // Ключ объекта с подтверждением оплаты
	Status               RequestStatus `json:"status"`                           // Состояние заявки
	AdminNotes           *string       `json:"admin_notes,omitempty"`            // Комментарий администратора
	CreatedAt            time.Time     `json:"created_at"`                       // Дата подачи
}

// DummyUpgradeRequest используется для приема JSON-запроса на подачу заявки.
// Подтверждение оплаты приходит отдельным полем в base64, чтобы его можно
// было сохранить в хранилище до записи строки заявки.
type DummyUpgradeRequest struct {
	RequestedTier string  `json:"requested_tier" validate:"required"` // vip или special
	PackageID     *string `json:"package_id,omitempty"`               // Идентификатор пакета
	ProofBase64   *string `json:"proof_base64,omitempty"`             // Содержимое подтверждения оплаты
	ProofFilename *string `json:"proof_filename,omitempty"`           // Исходное имя файла подтверждения
}

// DummyResolveRequest используется для приема JSON-запроса решения по заявке.
type DummyResolveRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approve reject"` // approve или reject
	Notes    *string `json:"notes,omitempty"`                                   // Комментарий администратора
}
