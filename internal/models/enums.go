// Package models содержит доменные структуры платформы: профили пользователей,
// заявки на повышение тарифа, подписки, уведомления и закрытые перечисления
// для тарифов, статусов и ролей.
package models

import "fmt"

// Tier описывает уровень подписки пользователя. Уровни упорядочены:
// free < vip < special.
type Tier string

const (
	// TierFree — бесплатный уровень, выдается при регистрации.
	TierFree Tier = "free"
	// TierVip — платный уровень VIP.
	TierVip Tier = "vip"
	// TierSpecial — максимальный платный уровень.
	TierSpecial Tier = "special"
)

// ParseTier преобразует строку из внешнего представления в Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierVip, TierSpecial:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier: %q", s)
}

// ParsePaidTier преобразует строку в Tier и допускает только платные уровни,
// которые можно запросить в заявке на повышение.
func ParsePaidTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierVip, TierSpecial:
		return Tier(s), nil
	}
	return "", fmt.Errorf("tier %q cannot be requested", s)
}

// Status описывает состояние учетной записи. Статус отсекает доступ
// независимо от тарифа: не подтвержденный или заблокированный пользователь
// не видит даже бесплатный контент.
type Status string

const (
	// StatusPending — учетная запись создана, но еще не подтверждена админом.
	StatusPending Status = "pending"
	// StatusApproved — учетная запись подтверждена.
	StatusApproved Status = "approved"
	// StatusBlocked — учетная запись заблокирована.
	StatusBlocked Status = "blocked"
)

// ParseStatus преобразует строку из внешнего представления в Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusBlocked:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status: %q", s)
}

// Role описывает роль пользователя в системе.
type Role string

const (
	// RoleUser — обычный пользователь.
	RoleUser Role = "user"
	// RoleAdmin — администратор.
	RoleAdmin Role = "admin"
)

// RequestStatus описывает состояние заявки на повышение тарифа.
// Допустимы только переходы pending -> approved и pending -> rejected,
// терминальные состояния неизменяемы.
type RequestStatus string

const (
	// RequestPending — заявка ожидает решения администратора.
	RequestPending RequestStatus = "pending"
	// RequestApproved — заявка одобрена.
	RequestApproved RequestStatus = "approved"
	// RequestRejected — заявка отклонена.
	RequestRejected RequestStatus = "rejected"
)

// ParseRequestStatus разбирает строку в RequestStatus.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestPending, RequestApproved, RequestRejected:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown request status: %q", s)
}
