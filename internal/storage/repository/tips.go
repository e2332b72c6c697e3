package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// ListTipsByCategory возвращает прогнозы указанного уровня, новые первыми.
// Проверка права смотреть этот уровень выполняется выше, в сервисе доступа.
func (s *Storage) ListTipsByCategory(ctx context.Context, category models.Tier) ([]*models.Tip, error) {
	const op = "storage.ListTipsByCategory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, league, home_team, away_team, prediction, odds,
				  category, match_time, status, created_at
			  FROM tips
			  WHERE category = $1
			  ORDER BY match_time DESC`
	rows, err := s.DB.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Tip
	for rows.Next() {
		t := &models.Tip{}
		var cat string
		if err = rows.Scan(&t.ID, &t.League, &t.HomeTeam, &t.AwayTeam, &t.Prediction,
			&t.Odds, &cat, &t.MatchTime, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if t.Category, err = models.ParseTier(cat); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
