package models

import "time"

// Tip представляет прогноз, закрытый уровнем подписки. Управление контентом
// лежит на внешней админке; ядро только читает прогнозы после проверки
// доступа.
type Tip struct {
	ID         string    `json:"id"`         // Идентификатор прогноза
	League     string    `json:"league"`     // Лига
	HomeTeam   string    `json:"home_team"`  // Хозяева
	AwayTeam   string    `json:"away_team"`  // Гости
	Prediction string    `json:"prediction"` // Прогноз
	Odds       string    `json:"odds"`       // Коэффициент
	Category   Tier      `json:"category"`   // Уровень подписки, открывающий прогноз
	MatchTime  time.Time `json:"match_time"` // Время матча
	Status     string    `json:"status"`     // Состояние прогноза: pending, won, lost
	CreatedAt  time.Time `json:"created_at"` // Дата публикации
}
