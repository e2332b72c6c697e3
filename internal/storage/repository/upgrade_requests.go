package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

const upgradeRequestColumns = `id, user_id, user_email, user_name, user_phone, user_country,
		current_tier, requested_tier, requested_package_id, requested_package_name,
		payment_proof_key, status, admin_notes, created_at`

func scanUpgradeRequest(row interface{ Scan(...any) error }) (*models.UpgradeRequest, error) {
	r := &models.UpgradeRequest{}
	var userName, userPhone, userCountry, packageID, packageName, proofKey, notes sql.NullString
	var currentTier, requestedTier, status string

	if err := row.Scan(&r.ID, &r.UserID, &r.UserEmail, &userName, &userPhone, &userCountry,
		&currentTier, &requestedTier, &packageID, &packageName,
		&proofKey, &status, &notes, &r.CreatedAt); err != nil {
		return nil, err
	}

	if userName.Valid {
		r.UserName = &userName.String
	}
	if userPhone.Valid {
		r.UserPhone = &userPhone.String
	}
	if userCountry.Valid {
		r.UserCountry = &userCountry.String
	}
	if packageID.Valid {
		r.RequestedPackageID = &packageID.String
	}
	if packageName.Valid {
		r.RequestedPackageName = &packageName.String
	}
	if proofKey.Valid {
		r.PaymentProofKey = &proofKey.String
	}
	if notes.Valid {
		r.AdminNotes = &notes.String
	}

	var err error
	if r.CurrentTier, err = models.ParseTier(currentTier); err != nil {
		return nil, err
	}
	if r.RequestedTier, err = models.ParseTier(requestedTier); err != nil {
		return nil, err
	}
	r.Status = models.RequestStatus(status)
	return r, nil
}

// CreateUpgradeRequest вставляет новую заявку со снимком данных заявителя
// и возвращает созданную строку.
func (s *Storage) CreateUpgradeRequest(ctx context.Context, req models.UpgradeRequest) (*models.UpgradeRequest, error) {
	const op = "storage.CreateUpgradeRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO upgrade_requests (user_id, user_email, user_name, user_phone,
				  user_country, current_tier, requested_tier, requested_package_id,
				  requested_package_name, payment_proof_key)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + upgradeRequestColumns
	row := s.DB.QueryRowContext(ctx, query,
		req.UserID, req.UserEmail, req.UserName, req.UserPhone, req.UserCountry,
		string(req.CurrentTier), string(req.RequestedTier),
		req.RequestedPackageID, req.RequestedPackageName, req.PaymentProofKey)

	created, err := scanUpgradeRequest(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUpgradeRequest возвращает заявку по идентификатору.
func (s *Storage) GetUpgradeRequest(ctx context.Context, id string) (*models.UpgradeRequest, error) {
	const op = "storage.GetUpgradeRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + upgradeRequestColumns + `
			  FROM upgrade_requests
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	req, err := scanUpgradeRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// ListUpgradeRequests возвращает заявки, новые первыми. Если status задан,
// выборка ограничивается этим состоянием.
func (s *Storage) ListUpgradeRequests(ctx context.Context, status *models.RequestStatus) ([]*models.UpgradeRequest, error) {
	const op = "storage.ListUpgradeRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + upgradeRequestColumns + `
			  FROM upgrade_requests
			  WHERE ($1::text IS NULL OR status = $1)
			  ORDER BY created_at DESC`
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}
	rows, err := s.DB.QueryContext(ctx, query, statusArg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UpgradeRequest
	for rows.Next() {
		req, err := scanUpgradeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ResolveUpgradeRequest переводит заявку из pending в терминальное состояние.
// Обновление выполняется с проверкой текущего состояния в самом запросе
// (check-then-act): если заявка уже решена конкурирующим администратором,
// возвращается ErrAlreadyResolved и никакие данные не меняются.
// Для одобрения с повышением тарифа используется ApproveUpgradeRequest.
func (s *Storage) ResolveUpgradeRequest(ctx context.Context, id string, status models.RequestStatus, notes *string) (*models.UpgradeRequest, error) {
	const op = "storage.ResolveUpgradeRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE upgrade_requests
			  SET status = $1, admin_notes = COALESCE($2, admin_notes)
			  WHERE id = $3 AND status = 'pending'
			  RETURNING ` + upgradeRequestColumns
	row := s.DB.QueryRowContext(ctx, query, string(status), notes, id)

	resolved, err := scanUpgradeRequest(row)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Строка не обновилась: либо заявки нет, либо она уже терминальна.
	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM upgrade_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil, fmt.Errorf("%s: %w", op, ErrAlreadyResolved)
}

// ApproveUpgradeRequest одобряет pending-заявку и повышает тариф заявителя
// одной транзакцией. Если любой из шагов не удался — заявка уже решена
// конкурирующим администратором, профиль заявителя отсутствует или выбранный
// пакет снят с продажи — все изменения откатываются, заявка остается pending
// и решение можно повторить.
func (s *Storage) ApproveUpgradeRequest(ctx context.Context, id string, notes *string) (*models.UpgradeRequest, error) {
	const op = "storage.ApproveUpgradeRequest"
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

	query := `UPDATE upgrade_requests
			  SET status = 'approved', admin_notes = COALESCE($1, admin_notes)
			  WHERE id = $2 AND status = 'pending'
			  RETURNING ` + upgradeRequestColumns
	approved, err := scanUpgradeRequest(tx.QueryRowContext(ctx, query, notes, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM upgrade_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyResolved)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET subscription = $1 WHERE id = $2`,
		string(approved.RequestedTier), approved.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if approved.RequestedPackageID != nil {
		var recordID string
		err = tx.QueryRowContext(ctx,
			`INSERT INTO user_subscriptions (user_id, package_id, expires_at)
			 SELECT $1, p.id, now() + make_interval(days => p.duration_days)
			 FROM subscription_packages p
			 WHERE p.id = $2 AND p.is_active
			 RETURNING id`,
			approved.UserID, *approved.RequestedPackageID).Scan(&recordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return approved, nil
}
