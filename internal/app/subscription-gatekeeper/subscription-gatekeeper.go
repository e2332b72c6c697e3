// Package subscriptiongatekeeper собирает основное HTTP-приложение:
// хранилище, кеш, очередь, сервисы и маршруты.
package subscriptiongatekeeper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/cache"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/config"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/migrations"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/proofstore"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/rabbitmq"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/realtime"
	adminservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/admin"
	authservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/catalog"
	notificationservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/notification"
	sessionservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/session"
	upgradeservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/upgrade"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Очередь почтовой доставки не обязательна для работы ядра:
	// при недоступном брокере уведомления остаются только в базе.
	var conn *amqp.Connection
	var ch *amqp.Channel
	conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("rabbitmq is unavailable, email delivery disabled", sl.Err(err))
	} else {
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			logger.Error("failed to setup rabbitmq channel, email delivery disabled", sl.Err(err))
			conn.Close()
			conn = nil
			ch = nil
		}
	}

	proofs, err := proofstore.New(cfg.ProofDir)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	hub := realtime.NewHub()

	notificationService := notificationservice.New(db, cacheRedis, hub, ch, logger)
	authService := authservice.New(db, jwtMaker)
	sessionService := sessionservice.New(db)
	catalogService := catalogservice.New(db, cacheRedis, logger)
	upgradeService := upgradeservice.New(db, proofs, notificationService, logger)
	adminService := adminservice.New(db, notificationService, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, &Services{
		Auth:          authService,
		Session:       sessionService,
		Catalog:       catalogService,
		Upgrade:       upgradeService,
		Admin:         adminService,
		Notifications: notificationService,
		Tips:          db,
		Roles:         db,
		Hub:           hub,
		JWTMaker:      jwtMaker,
	})

	// WriteTimeout не задается: он обрывал бы долгоживущий SSE-поток
	// уведомлений.
	srv := &http.Server{
		Addr:        cfg.AddressHTTP,
		Handler:     router,
		ReadTimeout: cfg.TimeoutHTTP,
		IdleTimeout: cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.ch != nil {
			_ = a.ch.Close()
		}
		if a.conn != nil {
			_ = a.conn.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
