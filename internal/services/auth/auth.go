// Package auth содержит логику бизнес-уровня для регистрации и аутентификации.
package auth

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/password"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с учетными записями в базе данных.
type UserRepository interface {
	// RegisterAuthUser сохраняет учетные данные и возвращает uid.
	RegisterAuthUser(ctx context.Context, email, passwordHash string) (string, error)

	// GetAuthUserByEmail возвращает учетную запись по почте или ошибку, если не найдена.
	GetAuthUserByEmail(ctx context.Context, email string) (*models.AuthUser, error)

	// CreateProfile создает профиль зарегистрированного пользователя.
	CreateProfile(ctx context.Context, profile models.Profile) error

	// GrantRole выдает роль пользователю.
	GrantRole(ctx context.Context, userID string, role models.Role) (string, error)

	// ListRoles возвращает роли пользователя.
	ListRoles(ctx context.Context, userID string) ([]models.Role, error)
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает учетную запись с хэшированием пароля и профиль
// в состоянии pending с бесплатным тарифом. Новому пользователю
// выдается роль user.
func (s *Service) Register(ctx context.Context, req models.DummyRegisterRequest) (string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	uid, err := s.users.RegisterAuthUser(ctx, req.Email, hashed)
	if err != nil {
		return "", err
	}
	profile := models.Profile{
		ID:           uid,
		Email:        req.Email,
		FullName:     &req.FullName,
		Status:       models.StatusPending,
		Subscription: models.TierFree,
	}
	if req.Phone != "" {
		profile.PhoneNumber = &req.Phone
	}
	if req.Country != "" {
		profile.Country = &req.Country
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return "", err
	}
	if _, err := s.users.GrantRole(ctx, uid, models.RoleUser); err != nil {
		return "", err
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT. В токен попадает
// роль admin, если у пользователя есть хотя бы одна административная запись.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (token string, role models.Role, err error) {
	user, err := s.users.GetAuthUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	role = models.RoleUser
	roles, err := s.users.ListRoles(ctx, user.UID)
	if err != nil {
		return "", "", err
	}
	for _, r := range roles {
		if r == models.RoleAdmin {
			role = models.RoleAdmin
		}
	}
	token, err = s.jwtMaker.GenerateToken(user.UID, user.Email, string(role))
	if err != nil {
		return "", "", err
	}
	return token, role, nil
}
