// Package session собирает сессию пользователя: профиль, роли и производные
// флаги доступа.
package session

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// IdentityRepository описывает контракт чтения профилей и ролей.
type IdentityRepository interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListRoles(ctx context.Context, userID string) ([]models.Role, error)
}

// Service вычисляет сессию по идентификатору пользователя.
type Service struct {
	repo IdentityRepository
}

// New создает новый экземпляр Service.
func New(repo IdentityRepository) *Service {
	return &Service{repo: repo}
}

// Resolve возвращает сессию пользователя. Флаги вычисляются заново при
// каждом вызове и нигде не кешируются. Отсутствие профиля не ошибка:
// такой пользователь получает ограниченную сессию без профиля, все флаги
// ложные.
func (s *Service) Resolve(ctx context.Context, userID string) (*models.Session, error) {
	sess := &models.Session{Roles: []models.Role{}}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return sess, nil
		}
		return nil, err
	}
	sess.Profile = profile

	roles, err := s.repo.ListRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.Roles = roles

	for _, r := range roles {
		if r == models.RoleAdmin {
			sess.IsAdmin = true
		}
	}
	sess.IsApproved = profile.Status == models.StatusApproved
	// Тариф special включает в себя vip-доступ.
	sess.IsVip = profile.Subscription == models.TierVip || profile.Subscription == models.TierSpecial
	sess.IsSpecial = profile.Subscription == models.TierSpecial

	return sess, nil
}
