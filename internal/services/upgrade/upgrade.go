// Package upgrade содержит машину состояний заявки на повышение тарифа:
// подача со снимком данных заявителя, загрузка подтверждения оплаты и
// решение администратора.
package upgrade

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

var (
	// ErrInvalidTier возвращается, когда запрошен несуществующий или
	// бесплатный тариф.
	ErrInvalidTier = errors.New("invalid requested tier")

	// ErrInvalidDecision возвращается на неизвестное решение администратора.
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrInvalidProof возвращается, когда подтверждение оплаты не удалось
	// декодировать.
	ErrInvalidProof = errors.New("invalid payment proof")

	// ErrProofStorage возвращается, когда подтверждение оплаты не удалось
	// сохранить. Подача при этом не оставляет строки заявки, клиент может
	// повторить запрос целиком.
	ErrProofStorage = errors.New("payment proof storage unavailable")

	// ErrPackageTierMismatch возвращается, когда выбранный пакет активирует
	// не тот тариф, что указан в заявке.
	ErrPackageTierMismatch = errors.New("package does not match requested tier")
)

// UpgradeRepository описывает контракт хранилища для работы заявок.
// ApproveUpgradeRequest обязан выполнять решение заявки, повышение тарифа
// и запись активации пакета атомарно.
type UpgradeRepository interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	CreateUpgradeRequest(ctx context.Context, req models.UpgradeRequest) (*models.UpgradeRequest, error)
	GetUpgradeRequest(ctx context.Context, id string) (*models.UpgradeRequest, error)
	ListUpgradeRequests(ctx context.Context, status *models.RequestStatus) ([]*models.UpgradeRequest, error)
	ResolveUpgradeRequest(ctx context.Context, id string, status models.RequestStatus, notes *string) (*models.UpgradeRequest, error)
	ApproveUpgradeRequest(ctx context.Context, id string, notes *string) (*models.UpgradeRequest, error)
	GetPackage(ctx context.Context, id string) (*models.SubscriptionPackage, error)
}

// ProofStore описывает контракт хранилища подтверждений оплаты.
type ProofStore interface {
	Save(userID string, filename string, data []byte) (string, error)
}

// Dispatcher описывает контракт рассылки уведомлений о решении.
type Dispatcher interface {
	SendToUser(ctx context.Context, userID, title, message string) (*models.Notification, error)
}

// Service реализует жизненный цикл заявки.
type Service struct {
	repo       UpgradeRepository
	proofs     ProofStore
	dispatcher Dispatcher
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UpgradeRepository, proofs ProofStore, dispatcher Dispatcher, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		proofs:     proofs,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Submit создает заявку на повышение тарифа. Контактные данные и текущий
// тариф заявителя фиксируются на момент подачи. Подтверждение оплаты,
// если передано, сохраняется до записи строки заявки: при сбое хранилища
// подача отклоняется целиком, осиротевших строк не остается.
//
// Несколько одновременных pending-заявок одного пользователя допустимы
// и независимы друг от друга.
func (s *Service) Submit(ctx context.Context, userID string, req models.DummyUpgradeRequest) (*models.UpgradeRequest, error) {
	requestedTier, err := models.ParsePaidTier(req.RequestedTier)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, req.RequestedTier)
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	request := models.UpgradeRequest{
		UserID:        userID,
		UserEmail:     profile.Email,
		UserName:      profile.FullName,
		UserPhone:     profile.PhoneNumber,
		UserCountry:   profile.Country,
		CurrentTier:   profile.Subscription,
		RequestedTier: requestedTier,
	}

	if req.PackageID != nil {
		pkg, err := s.repo.GetPackage(ctx, *req.PackageID)
		if err != nil {
			return nil, err
		}
		if pkg.Tier != requestedTier {
			return nil, ErrPackageTierMismatch
		}
		request.RequestedPackageID = &pkg.ID
		request.RequestedPackageName = &pkg.Name
	}

	if req.ProofBase64 != nil {
		data, err := base64.StdEncoding.DecodeString(*req.ProofBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
		filename := "proof"
		if req.ProofFilename != nil {
			filename = *req.ProofFilename
		}
		key, err := s.proofs.Save(userID, filename, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProofStorage, err)
		}
		request.PaymentProofKey = &key
	}

	created, err := s.repo.CreateUpgradeRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	s.log.Info("upgrade request submitted",
		slog.String("request_id", created.ID),
		slog.String("requested_tier", string(created.RequestedTier)))
	return created, nil
}

// Resolve переводит заявку в терминальное состояние по решению администратора.
// Одобрение выполняется атомарно: заявка, тариф заявителя и запись активации
// пакета меняются в одной транзакции хранилища, поэтому сбой на любом шаге
// оставляет заявку pending и решение можно повторить. Повторное решение по
// уже решенной заявке завершается ошибкой конфликта, тариф заявителя при
// этом не меняется и уведомление не дублируется.
func (s *Service) Resolve(ctx context.Context, requestID, adminID string, req models.DummyResolveRequest) (*models.UpgradeRequest, error) {
	var resolved *models.UpgradeRequest
	var err error
	switch req.Decision {
	case "approve":
		resolved, err = s.repo.ApproveUpgradeRequest(ctx, requestID, req.Notes)
	case "reject":
		resolved, err = s.repo.ResolveUpgradeRequest(ctx, requestID, models.RequestRejected, req.Notes)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, req.Decision)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("upgrade request resolved",
		slog.String("request_id", requestID),
		slog.String("decision", req.Decision),
		slog.String("admin_id", adminID))

	if resolved.Status == models.RequestRejected {
		s.notify(ctx, resolved.UserID, "Upgrade Request Update",
			"Your upgrade request was not approved. Please contact support for details.")
		return resolved, nil
	}

	s.notify(ctx, resolved.UserID, "Upgrade Approved! 🎉",
		fmt.Sprintf("Your subscription has been upgraded to %s.",
			strings.ToUpper(string(resolved.RequestedTier))))
	return resolved, nil
}

// List возвращает заявки для административного обзора, новые первыми.
// status nil означает все заявки.
func (s *Service) List(ctx context.Context, status *models.RequestStatus) ([]*models.UpgradeRequest, error) {
	return s.repo.ListUpgradeRequests(ctx, status)
}

// ListPending возвращает нерешенные заявки, новые первыми.
func (s *Service) ListPending(ctx context.Context) ([]*models.UpgradeRequest, error) {
	pending := models.RequestPending
	return s.repo.ListUpgradeRequests(ctx, &pending)
}

// notify отправляет уведомление о решении. Заявка уже решена, поэтому сбой
// рассылки только логируется.
func (s *Service) notify(ctx context.Context, userID, title, message string) {
	if _, err := s.dispatcher.SendToUser(ctx, userID, title, message); err != nil {
		s.log.Error("failed to dispatch resolution notification", sl.Err(err))
	}
}
