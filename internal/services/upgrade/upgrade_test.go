package upgrade_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/services/upgrade"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// Мок для UpgradeRepository
type UpgradeRepoMock struct {
	mock.Mock
}

func (m *UpgradeRepoMock) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *UpgradeRepoMock) CreateUpgradeRequest(ctx context.Context, req models.UpgradeRequest) (*models.UpgradeRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpgradeRequest), args.Error(1)
}

func (m *UpgradeRepoMock) GetUpgradeRequest(ctx context.Context, id string) (*models.UpgradeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpgradeRequest), args.Error(1)
}

func (m *UpgradeRepoMock) ListUpgradeRequests(ctx context.Context, status *models.RequestStatus) ([]*models.UpgradeRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UpgradeRequest), args.Error(1)
}

func (m *UpgradeRepoMock) ResolveUpgradeRequest(ctx context.Context, id string, status models.RequestStatus, notes *string) (*models.UpgradeRequest, error) {
	args := m.Called(ctx, id, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpgradeRequest), args.Error(1)
}

func (m *UpgradeRepoMock) ApproveUpgradeRequest(ctx context.Context, id string, notes *string) (*models.UpgradeRequest, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpgradeRequest), args.Error(1)
}

func (m *UpgradeRepoMock) GetPackage(ctx context.Context, id string) (*models.SubscriptionPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPackage), args.Error(1)
}

// Мок для ProofStore
type ProofStoreMock struct {
	mock.Mock
}

func (m *ProofStoreMock) Save(userID string, filename string, data []byte) (string, error) {
	args := m.Called(userID, filename, data)
	return args.String(0), args.Error(1)
}

// Мок для Dispatcher
type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) SendToUser(ctx context.Context, userID, title, message string) (*models.Notification, error) {
	args := m.Called(ctx, userID, title, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func requesterProfile() *models.Profile {
	name := "Test User"
	phone := "+10000000000"
	return &models.Profile{
		ID:           "user-uid",
		Email:        "requester@example.com",
		FullName:     &name,
		PhoneNumber:  &phone,
		Status:       models.StatusApproved,
		Subscription: models.TierFree,
	}
}

func TestService_Submit(t *testing.T) {
	tests := []struct {
		name       string
		req        models.DummyUpgradeRequest
		setupMocks func(r *UpgradeRepoMock, p *ProofStoreMock)
		wantErr    error
	}{
		{
			name: "successful submit snapshots requester fields",
			req:  models.DummyUpgradeRequest{RequestedTier: "vip"},
			setupMocks: func(r *UpgradeRepoMock, _ *ProofStoreMock) {
				r.On("GetProfile", mock.Anything, "user-uid").Return(requesterProfile(), nil).Once()
				r.On("CreateUpgradeRequest", mock.Anything, mock.MatchedBy(func(req models.UpgradeRequest) bool {
					return req.UserID == "user-uid" &&
						req.UserEmail == "requester@example.com" &&
						req.UserName != nil && *req.UserName == "Test User" &&
						req.CurrentTier == models.TierFree &&
						req.RequestedTier == models.TierVip &&
						req.PaymentProofKey == nil
				})).Return(&models.UpgradeRequest{ID: "req-1", UserID: "user-uid"}, nil).Once()
			},
		},
		{
			name: "submit with proof stores proof before the row",
			req: models.DummyUpgradeRequest{
				RequestedTier: "special",
				ProofBase64:   strPtr("cGF5bWVudA=="),
				ProofFilename: strPtr("receipt.png"),
			},
			setupMocks: func(r *UpgradeRepoMock, p *ProofStoreMock) {
				r.On("GetProfile", mock.Anything, "user-uid").Return(requesterProfile(), nil).Once()
				p.On("Save", "user-uid", "receipt.png", []byte("payment")).
					Return("user-uid/abc.png", nil).Once()
				r.On("CreateUpgradeRequest", mock.Anything, mock.MatchedBy(func(req models.UpgradeRequest) bool {
					return req.PaymentProofKey != nil && *req.PaymentProofKey == "user-uid/abc.png"
				})).Return(&models.UpgradeRequest{ID: "req-1", UserID: "user-uid"}, nil).Once()
			},
		},
		{
			name: "proof storage failure fails the whole submission",
			req: models.DummyUpgradeRequest{
				RequestedTier: "vip",
				ProofBase64:   strPtr("cGF5bWVudA=="),
			},
			setupMocks: func(r *UpgradeRepoMock, p *ProofStoreMock) {
				r.On("GetProfile", mock.Anything, "user-uid").Return(requesterProfile(), nil).Once()
				p.On("Save", "user-uid", "proof", []byte("payment")).
					Return("", errors.New("disk full")).Once()
			},
			wantErr: upgrade.ErrProofStorage,
		},
		{
			name: "undecodable proof rejected before any write",
			req: models.DummyUpgradeRequest{
				RequestedTier: "vip",
				ProofBase64:   strPtr("%%%not-base64%%%"),
			},
			setupMocks: func(r *UpgradeRepoMock, _ *ProofStoreMock) {
				r.On("GetProfile", mock.Anything, "user-uid").Return(requesterProfile(), nil).Once()
			},
			wantErr: upgrade.ErrInvalidProof,
		},
		{
			name:       "free tier cannot be requested",
			req:        models.DummyUpgradeRequest{RequestedTier: "free"},
			setupMocks: func(_ *UpgradeRepoMock, _ *ProofStoreMock) {},
			wantErr:    upgrade.ErrInvalidTier,
		},
		{
			name: "package of a different tier rejected",
			req: models.DummyUpgradeRequest{
				RequestedTier: "vip",
				PackageID:     strPtr("pkg-1"),
			},
			setupMocks: func(r *UpgradeRepoMock, _ *ProofStoreMock) {
				r.On("GetProfile", mock.Anything, "user-uid").Return(requesterProfile(), nil).Once()
				r.On("GetPackage", mock.Anything, "pkg-1").
					Return(&models.SubscriptionPackage{ID: "pkg-1", Tier: models.TierSpecial}, nil).Once()
			},
			wantErr: upgrade.ErrPackageTierMismatch,
		},
		{
			name: "missing profile propagates",
			req:  models.DummyUpgradeRequest{RequestedTier: "vip"},
			setupMocks: func(r *UpgradeRepoMock, _ *ProofStoreMock) {
				r.On("GetProfile", mock.Anything, "user-uid").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UpgradeRepoMock)
			proofs := new(ProofStoreMock)
			dispatcher := new(DispatcherMock)
			svc := upgrade.New(repo, proofs, dispatcher, discardLogger())

			tt.setupMocks(repo, proofs)

			got, err := svc.Submit(context.Background(), "user-uid", tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
			}

			repo.AssertExpectations(t)
			proofs.AssertExpectations(t)
			dispatcher.AssertExpectations(t)
		})
	}
}

func TestService_Resolve(t *testing.T) {
	pendingSpecial := func() *models.UpgradeRequest {
		return &models.UpgradeRequest{
			ID:            "req-1",
			UserID:        "user-uid",
			RequestedTier: models.TierSpecial,
			Status:        models.RequestApproved,
		}
	}

	tests := []struct {
		name       string
		req        models.DummyResolveRequest
		setupMocks func(r *UpgradeRepoMock, d *DispatcherMock)
		wantStatus models.RequestStatus
		wantErr    error
	}{
		{
			name: "approve resolves atomically and dispatches exactly one notification",
			req:  models.DummyResolveRequest{Decision: "approve"},
			setupMocks: func(r *UpgradeRepoMock, d *DispatcherMock) {
				r.On("ApproveUpgradeRequest", mock.Anything, "req-1", (*string)(nil)).
					Return(pendingSpecial(), nil).Once()
				d.On("SendToUser", mock.Anything, "user-uid", "Upgrade Approved! 🎉",
					"Your subscription has been upgraded to SPECIAL.").
					Return(&models.Notification{ID: "n-1"}, nil).Once()
			},
			wantStatus: models.RequestApproved,
		},
		{
			name: "second approve conflicts without notification",
			req:  models.DummyResolveRequest{Decision: "approve"},
			setupMocks: func(r *UpgradeRepoMock, _ *DispatcherMock) {
				r.On("ApproveUpgradeRequest", mock.Anything, "req-1", (*string)(nil)).
					Return(nil, repository.ErrAlreadyResolved).Once()
			},
			wantErr: repository.ErrAlreadyResolved,
		},
		{
			name: "reject never mutates the tier",
			req:  models.DummyResolveRequest{Decision: "reject", Notes: strPtr("no proof")},
			setupMocks: func(r *UpgradeRepoMock, d *DispatcherMock) {
				rejected := pendingSpecial()
				rejected.Status = models.RequestRejected
				r.On("ResolveUpgradeRequest", mock.Anything, "req-1", models.RequestRejected, strPtr("no proof")).
					Return(rejected, nil).Once()
				d.On("SendToUser", mock.Anything, "user-uid", "Upgrade Request Update", mock.Anything).
					Return(&models.Notification{ID: "n-1"}, nil).Once()
			},
			wantStatus: models.RequestRejected,
		},
		{
			name: "second resolve conflicts without tier change or notification",
			req:  models.DummyResolveRequest{Decision: "reject"},
			setupMocks: func(r *UpgradeRepoMock, _ *DispatcherMock) {
				r.On("ResolveUpgradeRequest", mock.Anything, "req-1", models.RequestRejected, (*string)(nil)).
					Return(nil, repository.ErrAlreadyResolved).Once()
			},
			wantErr: repository.ErrAlreadyResolved,
		},
		{
			name:       "unknown decision rejected before any write",
			req:        models.DummyResolveRequest{Decision: "maybe"},
			setupMocks: func(_ *UpgradeRepoMock, _ *DispatcherMock) {},
			wantErr:    upgrade.ErrInvalidDecision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UpgradeRepoMock)
			proofs := new(ProofStoreMock)
			dispatcher := new(DispatcherMock)
			svc := upgrade.New(repo, proofs, dispatcher, discardLogger())

			tt.setupMocks(repo, dispatcher)

			got, err := svc.Resolve(context.Background(), "req-1", "admin-uid", tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.wantStatus, got.Status)
			}

			repo.AssertExpectations(t)
			dispatcher.AssertExpectations(t)
		})
	}
}

// Сбой одобрения не должен оставлять заявку в терминальном состоянии:
// хранилище откатывает транзакцию целиком, уведомление не уходит,
// а повторное решение по той же заявке проходит успешно.
func TestService_Resolve_ApproveFailureIsRetriable(t *testing.T) {
	repo := new(UpgradeRepoMock)
	dispatcher := new(DispatcherMock)
	svc := upgrade.New(repo, new(ProofStoreMock), dispatcher, discardLogger())

	repo.On("ApproveUpgradeRequest", mock.Anything, "req-1", (*string)(nil)).
		Return(nil, errors.New("connection reset by peer")).Once()

	got, err := svc.Resolve(context.Background(), "req-1", "admin-uid",
		models.DummyResolveRequest{Decision: "approve"})
	require.Error(t, err)
	assert.Nil(t, got)
	dispatcher.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	approved := &models.UpgradeRequest{
		ID:            "req-1",
		UserID:        "user-uid",
		RequestedTier: models.TierSpecial,
		Status:        models.RequestApproved,
	}
	repo.On("ApproveUpgradeRequest", mock.Anything, "req-1", (*string)(nil)).
		Return(approved, nil).Once()
	dispatcher.On("SendToUser", mock.Anything, "user-uid", "Upgrade Approved! 🎉", mock.Anything).
		Return(&models.Notification{ID: "n-1"}, nil).Once()

	got, err = svc.Resolve(context.Background(), "req-1", "admin-uid",
		models.DummyResolveRequest{Decision: "approve"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.RequestApproved, got.Status)

	repo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestService_ListPending(t *testing.T) {
	repo := new(UpgradeRepoMock)
	svc := upgrade.New(repo, new(ProofStoreMock), new(DispatcherMock), discardLogger())

	pending := models.RequestPending
	repo.On("ListUpgradeRequests", mock.Anything, &pending).
		Return([]*models.UpgradeRequest{{ID: "req-2"}, {ID: "req-1"}}, nil).Once()

	got, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}
