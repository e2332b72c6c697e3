// Package admin содержит административные операции над учетными записями:
// смену статуса, прямое назначение подписки и управление ролями.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// AdminRepository описывает контракт хранилища для административных операций.
type AdminRepository interface {
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	UpdateProfileStatus(ctx context.Context, userID string, status models.Status) (int, error)
	UpdateProfileSubscription(ctx context.Context, userID string, tier models.Tier) (int, error)
	GetPackage(ctx context.Context, id string) (*models.SubscriptionPackage, error)
	CreateSubscriptionRecord(ctx context.Context, userID, packageID string) (*models.SubscriptionRecord, error)
	GrantRole(ctx context.Context, userID string, role models.Role) (string, error)
	RevokeRole(ctx context.Context, assignmentID, actingAdminID string) error
	ListRoleAssignments(ctx context.Context, role models.Role) ([]*models.RoleAssignment, error)
}

// Dispatcher описывает контракт рассылки уведомлений о действиях администратора.
type Dispatcher interface {
	SendToUser(ctx context.Context, userID, title, message string) (*models.Notification, error)
}

// Service реализует административные операции.
type Service struct {
	repo       AdminRepository
	dispatcher Dispatcher
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo AdminRepository, dispatcher Dispatcher, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		log:        log,
	}
}

// ListUsers возвращает все профили, новые первыми.
func (s *Service) ListUsers(ctx context.Context) ([]*models.Profile, error) {
	return s.repo.ListProfiles(ctx)
}

// UpdateUserStatus меняет статус учетной записи. Одобрение сопровождается
// уведомлением пользователю.
func (s *Service) UpdateUserStatus(ctx context.Context, userID string, req models.DummyUpdateStatus) error {
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	affected, err := s.repo.UpdateProfileStatus(ctx, userID, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	s.log.Info("user status updated",
		slog.String("user_id", userID),
		slog.String("status", string(status)))

	if status == models.StatusApproved {
		if _, err := s.dispatcher.SendToUser(ctx, userID, "Account Approved",
			"Your account has been approved. Welcome aboard!"); err != nil {
			s.log.Error("failed to dispatch approval notification", sl.Err(err))
		}
	}
	return nil
}

// AssignSubscription активирует пакет пользователю напрямую, минуя заявку:
// создает запись подписки, переводит профиль на тариф пакета и уведомляет
// пользователя.
func (s *Service) AssignSubscription(ctx context.Context, req models.DummyAssignSubscription) (*models.SubscriptionRecord, error) {
	pkg, err := s.repo.GetPackage(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.CreateSubscriptionRecord(ctx, req.UserID, pkg.ID)
	if err != nil {
		return nil, err
	}
	affected, err := s.repo.UpdateProfileSubscription(ctx, req.UserID, pkg.Tier)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, repository.ErrNotFound
	}
	s.log.Info("subscription assigned",
		slog.String("user_id", req.UserID),
		slog.String("package", pkg.Slug))

	if _, err := s.dispatcher.SendToUser(ctx, req.UserID, "Subscription Activated",
		fmt.Sprintf("Your %s subscription is now active.",
			strings.ToUpper(string(pkg.Tier)))); err != nil {
		s.log.Error("failed to dispatch activation notification", sl.Err(err))
	}
	return record, nil
}

// GrantRole выдает роль пользователю. Повторная выдача той же роли
// завершается ошибкой конфликта.
func (s *Service) GrantRole(ctx context.Context, req models.DummyGrantRole) (string, error) {
	assignmentID, err := s.repo.GrantRole(ctx, req.UserID, models.Role(req.Role))
	if err != nil {
		return "", err
	}
	s.log.Info("role granted",
		slog.String("user_id", req.UserID),
		slog.String("role", req.Role))
	return assignmentID, nil
}

// RevokeRole снимает назначение роли. Администратор не может снять свою
// последнюю административную роль: иначе система могла бы остаться без
// администраторов.
func (s *Service) RevokeRole(ctx context.Context, assignmentID, actingAdminID string) error {
	if err := s.repo.RevokeRole(ctx, assignmentID, actingAdminID); err != nil {
		return err
	}
	s.log.Info("role revoked", slog.String("assignment_id", assignmentID))
	return nil
}

// ListAdmins возвращает назначения административной роли.
func (s *Service) ListAdmins(ctx context.Context) ([]*models.RoleAssignment, error) {
	return s.repo.ListRoleAssignments(ctx, models.RoleAdmin)
}
