// Package notification содержит диспетчер рассылки уведомлений: запись строк
// получателям, realtime-события и публикацию в очередь почтовой доставки.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	rabbitlib "github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/realtime"
)

const unreadCountTTL = time.Minute

// NotificationRepository описывает контракт хранилища уведомлений и профилей.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, userID, title, message string) (*models.Notification, error)
	CreateNotificationsBatch(ctx context.Context, userIDs []string, title, message string) ([]*models.Notification, error)
	ListNotificationsForUser(ctx context.Context, userID string) ([]*models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
}

// Cache описывает контракт кэша счетчиков непрочитанного.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service — диспетчер рассылки. Единственный создатель строк уведомлений
// и единственный производитель realtime-событий.
type Service struct {
	repo    NotificationRepository
	cache   Cache
	hub     *realtime.Hub
	channel *amqp.Channel
	log     *slog.Logger
}

// New создает новый экземпляр Service. channel может быть nil, тогда
// публикация в очередь почтовой доставки отключена.
func New(repo NotificationRepository, cache Cache, hub *realtime.Hub, channel *amqp.Channel, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		hub:     hub,
		channel: channel,
		log:     log,
	}
}

// SendToUser записывает уведомление одному получателю и рассылает события.
func (s *Service) SendToUser(ctx context.Context, userID, title, message string) (*models.Notification, error) {
	n, err := s.repo.CreateNotification(ctx, userID, title, message)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, n, "insert")
	s.publishEmail(ctx, n)
	return n, nil
}

// SendToAll записывает уведомление каждому профилю, попадающему под фильтр.
// Фильтр вычисляется по хранилищу в момент вызова: профили, изменившиеся
// после начала рассылки, на состав получателей не влияют. Возвращает число
// получателей.
func (s *Service) SendToAll(ctx context.Context, title, message string, audience models.AudienceFilter) (int, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return 0, err
	}
	var recipients []string
	for _, p := range profiles {
		if audience.Matches(p) {
			recipients = append(recipients, p.ID)
		}
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	created, err := s.repo.CreateNotificationsBatch(ctx, recipients, title, message)
	if err != nil {
		return 0, err
	}
	for _, n := range created {
		s.afterWrite(ctx, n, "insert")
		s.publishEmail(ctx, n)
	}
	return len(created), nil
}

// ListForUser возвращает уведомления получателя, новые первыми.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.repo.ListNotificationsForUser(ctx, userID)
}

// UnreadCount возвращает число непрочитанных уведомлений. Значение
// кэшируется ненадолго; каждая запись уведомления сбрасывает кэш.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	cacheKey := unreadCacheKey(userID)
	found, err := s.cache.Get(cacheKey, &count)
	if err != nil {
		s.log.Warn("failed to read unread count from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return count, nil
	}
	count, err = s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(cacheKey, count, unreadCountTTL); err != nil {
		s.log.Warn("failed to cache unread count", slog.String("key", cacheKey), sl.Err(err))
	}
	return count, nil
}

// MarkRead помечает уведомление прочитанным. Повторный вызов не ошибка.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	n, err := s.repo.MarkNotificationRead(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, n, "update")
	return n, nil
}

// MarkAllRead помечает прочитанными все уведомления получателя.
// Возвращает число реально изменившихся строк.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	affected, err := s.repo.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		if err := s.cache.Invalidate(unreadCacheKey(userID)); err != nil {
			s.log.Warn("failed to invalidate unread count", sl.Err(err))
		}
		count, err := s.repo.CountUnreadNotifications(ctx, userID)
		if err == nil && s.hub != nil {
			s.hub.Publish(userID, models.NotificationEvent{Kind: "update", UnreadCount: count})
		}
	}
	return affected, nil
}

// afterWrite рассылает realtime-событие и сбрасывает кэш счетчика.
// Строка в базе уже записана; сбои здесь только логируются.
func (s *Service) afterWrite(ctx context.Context, n *models.Notification, kind string) {
	if err := s.cache.Invalidate(unreadCacheKey(n.UserID)); err != nil {
		s.log.Warn("failed to invalidate unread count", sl.Err(err))
	}
	count, err := s.repo.CountUnreadNotifications(ctx, n.UserID)
	if err != nil {
		s.log.Warn("failed to count unread notifications", sl.Err(err))
	}
	if s.hub != nil {
		s.hub.Publish(n.UserID, models.NotificationEvent{
			Kind:         kind,
			Notification: *n,
			UnreadCount:  count,
		})
	}
}

// publishEmail кладет уведомление в очередь почтовой доставки.
func (s *Service) publishEmail(ctx context.Context, n *models.Notification) {
	if s.channel == nil {
		return
	}
	profile, err := s.repo.GetProfile(ctx, n.UserID)
	if err != nil {
		s.log.Warn("failed to load recipient profile for email", sl.Err(err))
		return
	}
	msg := models.NotificationEmail{
		Email:   profile.Email,
		Title:   n.Title,
		Message: n.Message,
	}
	if err := rabbitlib.PublishMessage(s.channel, "notifications", "dispatched", msg); err != nil {
		s.log.Error("failed to publish notification email", sl.Err(err))
	}
}

func unreadCacheKey(userID string) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}
