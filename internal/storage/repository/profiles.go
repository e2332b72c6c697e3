package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// CreateProfile вставляет строку профиля для нового пользователя.
// Статус и тариф берутся из значений по умолчанию: pending и free.
func (s *Storage) CreateProfile(ctx context.Context, profile models.Profile) error {
	const op = "storage.CreateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profiles (id, email, full_name, phone_number, country)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.PhoneNumber, profile.Country)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProfile возвращает профиль по идентификатору пользователя.
// Отсутствие строки — обычная ситуация сразу после регистрации,
// поэтому оно оборачивается в ErrNotFound, а вызывающая сторона решает,
// считать ли это ошибкой.
func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, full_name, phone_number, country, status, subscription, created_at
			  FROM profiles
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, userID)

	p := &models.Profile{}
	var fullName, phone, country sql.NullString
	var status, subscription string
	if err := row.Scan(&p.ID, &p.Email, &fullName, &phone, &country,
		&status, &subscription, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if phone.Valid {
		p.PhoneNumber = &phone.String
	}
	if country.Valid {
		p.Country = &country.String
	}

	var err error
	if p.Status, err = models.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.Subscription, err = models.ParseTier(subscription); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateProfileStatus меняет статус учетной записи и возвращает количество
// измененных строк.
func (s *Storage) UpdateProfileStatus(ctx context.Context, userID string, status models.Status) (int, error) {
	const op = "storage.UpdateProfileStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET status = $1
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, string(status), userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateProfileSubscription меняет текущий тариф пользователя.
func (s *Storage) UpdateProfileSubscription(ctx context.Context, userID string, tier models.Tier) (int, error) {
	const op = "storage.UpdateProfileSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET subscription = $1
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, string(tier), userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListProfiles возвращает все профили, упорядоченные по дате создания.
func (s *Storage) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	const op = "storage.ListProfiles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, full_name, phone_number, country, status, subscription, created_at
			  FROM profiles
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Profile
	for rows.Next() {
		p := &models.Profile{}
		var fullName, phone, country sql.NullString
		var status, subscription string
		if err := rows.Scan(&p.ID, &p.Email, &fullName, &phone, &country,
			&status, &subscription, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if fullName.Valid {
			p.FullName = &fullName.String
		}
		if phone.Valid {
			p.PhoneNumber = &phone.String
		}
		if country.Valid {
			p.Country = &country.String
		}
		if p.Status, err = models.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if p.Subscription, err = models.ParseTier(subscription); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
