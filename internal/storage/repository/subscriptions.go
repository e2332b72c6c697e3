package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// ListActivePackages возвращает доступные для покупки пакеты каталога
// в порядке display_order.
func (s *Storage) ListActivePackages(ctx context.Context) ([]*models.SubscriptionPackage, error) {
	const op = "storage.ListActivePackages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, slug, tier, price, duration_days, features,
				  is_popular, is_active, display_order, created_at
			  FROM subscription_packages
			  WHERE is_active
			  ORDER BY display_order, name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionPackage
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, pkg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPackage возвращает пакет каталога по идентификатору.
func (s *Storage) GetPackage(ctx context.Context, id string) (*models.SubscriptionPackage, error) {
	const op = "storage.GetPackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, slug, tier, price, duration_days, features,
				  is_popular, is_active, display_order, created_at
			  FROM subscription_packages
			  WHERE id = $1`
	pkg, err := scanPackage(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pkg, nil
}

func scanPackage(row interface{ Scan(...any) error }) (*models.SubscriptionPackage, error) {
	p := &models.SubscriptionPackage{}
	var tier string
	var features []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &tier, &p.Price, &p.DurationDays,
		&features, &p.IsPopular, &p.IsActive, &p.DisplayOrder, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Tier, err = models.ParseTier(tier); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err = json.Unmarshal(features, &p.Features); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// CreateSubscriptionRecord фиксирует активацию пакета: срок действия
// вычисляется в базе как now() + duration_days пакета.
func (s *Storage) CreateSubscriptionRecord(ctx context.Context, userID, packageID string) (*models.SubscriptionRecord, error) {
	const op = "storage.CreateSubscriptionRecord"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_subscriptions (user_id, package_id, expires_at)
			  SELECT $1, p.id, now() + make_interval(days => p.duration_days)
			  FROM subscription_packages p
			  WHERE p.id = $2
			  RETURNING id, user_id, package_id, starts_at, expires_at, is_active`
	rec := &models.SubscriptionRecord{}
	err := s.DB.QueryRowContext(ctx, query, userID, packageID).Scan(
		&rec.ID, &rec.UserID, &rec.PackageID, &rec.StartsAt, &rec.ExpiresAt, &rec.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}
