package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// CreateNotification вставляет уведомление для одного получателя.
// Несуществующий получатель возвращается как ErrNotFound.
func (s *Storage) CreateNotification(ctx context.Context, userID, title, message string) (*models.Notification, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (user_id, title, message)
			  VALUES ($1, $2, $3)
			  RETURNING id, user_id, title, message, is_read, created_at`
	n := &models.Notification{}
	err := s.DB.QueryRowContext(ctx, query, userID, title, message).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "violates foreign key constraint") {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CreateNotificationsBatch вставляет одинаковое уведомление каждому из
// получателей одной транзакцией: либо строки появляются у всех, либо
// ни у кого.
func (s *Storage) CreateNotificationsBatch(ctx context.Context, userIDs []string, title, message string) ([]*models.Notification, error) {
	const op = "storage.CreateNotificationsBatch"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO notifications (user_id, title, message)
			  VALUES ($1, $2, $3)
			  RETURNING id, user_id, title, message, is_read, created_at`
	result := make([]*models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		n := &models.Notification{}
		err = tx.QueryRowContext(ctx, query, userID, title, message).Scan(
			&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "violates foreign key constraint") {
				return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListNotificationsForUser возвращает уведомления получателя, новые первыми.
func (s *Storage) ListNotificationsForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	const op = "storage.ListNotificationsForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, title, message, is_read, created_at
			  FROM notifications
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUnreadNotifications возвращает число непрочитанных уведомлений.
func (s *Storage) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountUnreadNotifications"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// MarkNotificationRead помечает уведомление прочитанным. Операция
// идемпотентна: повторный вызов возвращает ту же строку без изменений.
// Уведомление должно принадлежать userID, иначе ErrNotFound.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications
			  SET is_read = true
			  WHERE id = $1 AND user_id = $2
			  RETURNING id, user_id, title, message, is_read, created_at`
	n := &models.Notification{}
	err := s.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// MarkAllNotificationsRead помечает прочитанными все уведомления получателя
// и возвращает число строк, которые действительно изменились.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	const op = "storage.MarkAllNotificationsRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}
