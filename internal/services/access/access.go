// Package access содержит правило допуска к контенту по уровню подписки.
package access

import (
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// CanView сообщает, вправе ли сессия видеть контент с уровнем requiredTier.
// Это единственная точка принятия решения: каждый отдающий контент
// обработчик обязан вызвать ее перед выдачей данных.
//
// Функция чистая и тотальная: любая комбинация аргументов дает ответ без
// побочных эффектов. Статус учетной записи закрывает все уровни разом —
// неодобренный или заблокированный профиль не видит даже бесплатный контент.
func CanView(sess *models.Session, requiredTier models.Tier) bool {
	if sess == nil || sess.Profile == nil || !sess.IsApproved {
		return false
	}
	switch requiredTier {
	case models.TierFree:
		return true
	case models.TierVip:
		return sess.IsVip
	case models.TierSpecial:
		return sess.IsSpecial
	default:
		return false
	}
}
