package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// ListRoles возвращает роли пользователя.
func (s *Storage) ListRoles(ctx context.Context, userID string) ([]models.Role, error) {
	const op = "storage.ListRoles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT role
			  FROM user_roles
			  WHERE user_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, models.Role(role))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListRoleAssignments возвращает все назначения заданной роли.
func (s *Storage) ListRoleAssignments(ctx context.Context, role models.Role) ([]*models.RoleAssignment, error) {
	const op = "storage.ListRoleAssignments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, role, created_at
			  FROM user_roles
			  WHERE role = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.RoleAssignment
	for rows.Next() {
		ra := &models.RoleAssignment{}
		var r string
		if err := rows.Scan(&ra.ID, &ra.UserID, &r, &ra.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ra.Role = models.Role(r)
		result = append(result, ra)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GrantRole назначает роль пользователю и возвращает идентификатор назначения.
func (s *Storage) GrantRole(ctx context.Context, userID string, role models.Role) (string, error) {
	const op = "storage.GrantRole"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_roles (user_id, role)
			  VALUES ($1, $2)
			  RETURNING id`
	var newID string
	if err := s.DB.QueryRowContext(ctx, query, userID, string(role)).Scan(&newID); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return "", fmt.Errorf("%s: %w", op, ErrRoleExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// RevokeRole снимает назначение роли. Если назначение принадлежит самому
// действующему администратору и является его последней ролью admin, операция
// отклоняется с ErrLastAdmin. Проверка и удаление выполняются в одной
// транзакции, чтобы конкурирующее снятие не оставило систему без
// администратора.
func (s *Storage) RevokeRole(ctx context.Context, assignmentID, actingAdminID string) error {
	const op = "storage.RevokeRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var targetUserID, targetRole string
	row := tx.QueryRowContext(ctx,
		`SELECT user_id, role FROM user_roles WHERE id = $1 FOR UPDATE`, assignmentID)
	if err := row.Scan(&targetUserID, &targetRole); err != nil {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if targetUserID == actingAdminID && models.Role(targetRole) == models.RoleAdmin {
		var adminCount int
		row := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM user_roles WHERE user_id = $1 AND role = 'admin'`, actingAdminID)
		if err := row.Scan(&adminCount); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if adminCount <= 1 {
			return fmt.Errorf("%s: %w", op, ErrLastAdmin)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE id = $1`, assignmentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
