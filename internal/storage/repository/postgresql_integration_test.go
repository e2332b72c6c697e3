package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

func TestStorage_GetProfile(t *testing.T) {
	tests := []struct {
		name       string
		wantTier   models.Tier
		wantStatus models.Status
		wantErr    error
		setup      func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:       "successful get approved vip profile",
			wantTier:   models.TierVip,
			wantStatus: models.StatusApproved,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				return factory.CreateAccount(t, "vip@example.com", models.StatusApproved, models.TierVip)
			},
		},
		{
			name:    "get non-existing profile",
			wantErr: ErrNotFound,
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return "00000000-0000-0000-0000-000000000000"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userID := tt.setup(t, factory)

			got, err := storage.GetProfile(context.Background(), userID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, userID, got.ID)
				assert.Equal(t, tt.wantStatus, got.Status)
				assert.Equal(t, tt.wantTier, got.Subscription)
			}
		})
	}
}

func TestStorage_RegisterAuthUser(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name:  "successful register new user",
			email: "new@example.com",
			setup: func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name:    "register with duplicate email",
			email:   "taken@example.com",
			wantErr: ErrEmailExists,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateAccount(t, "taken@example.com", models.StatusPending, models.TierFree)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			uid, err := storage.RegisterAuthUser(context.Background(), tt.email, "hashedpassword")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, uid)
			}
		})
	}
}

func TestStorage_ResolveUpgradeRequest(t *testing.T) {
	notes := "paid via transfer"

	tests := []struct {
		name    string
		status  models.RequestStatus
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:   "successful approve pending request",
			status: models.RequestApproved,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				return factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)
			},
		},
		{
			name:    "resolve already resolved request",
			status:  models.RequestRejected,
			wantErr: ErrAlreadyResolved,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				requestID := factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)
				_, err := factory.storage.DB.Exec(
					`UPDATE upgrade_requests SET status = 'approved' WHERE id = $1`, requestID)
				require.NoError(t, err)
				return requestID
			},
		},
		{
			name:    "resolve non-existing request",
			status:  models.RequestApproved,
			wantErr: ErrNotFound,
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return "00000000-0000-0000-0000-000000000000"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			requestID := tt.setup(t, factory)

			got, err := storage.ResolveUpgradeRequest(context.Background(), requestID, tt.status, &notes)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.status, got.Status)
				require.NotNil(t, got.AdminNotes)
				assert.Equal(t, notes, *got.AdminNotes)

				verification := NewTestVerification(storage)
				verification.VerifyRequestStatus(t, requestID, tt.status)
			}
		})
	}
}

func TestStorage_ResolveUpgradeRequest_ConcurrentAdmins(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
	requestID := factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)

	// Два администратора решают одну заявку: выигрывает ровно один
	_, firstErr := storage.ResolveUpgradeRequest(context.Background(), requestID, models.RequestApproved, nil)
	_, secondErr := storage.ResolveUpgradeRequest(context.Background(), requestID, models.RequestRejected, nil)

	require.NoError(t, firstErr)
	require.Error(t, secondErr)
	assert.True(t, errors.Is(secondErr, ErrAlreadyResolved))

	verification := NewTestVerification(storage)
	verification.VerifyRequestStatus(t, requestID, models.RequestApproved)
}

func TestStorage_ApproveUpgradeRequest(t *testing.T) {
	notes := "paid via transfer"

	tests := []struct {
		name    string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) (requestID, userID string)
	}{
		{
			name: "approve raises the requester tier",
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				return factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip), userID
			},
		},
		{
			name: "approve with package also records the subscription",
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				packageID := factory.CreatePackage(t, "VIP Monthly", "vip-monthly", models.TierVip, 30)
				return factory.CreatePendingRequestWithPackage(t, userID, "requester@example.com", models.TierVip, packageID), userID
			},
		},
		{
			name:    "approve already resolved request changes nothing",
			wantErr: ErrAlreadyResolved,
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				requestID := factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)
				_, err := factory.storage.DB.Exec(
					`UPDATE upgrade_requests SET status = 'rejected' WHERE id = $1`, requestID)
				require.NoError(t, err)
				return requestID, userID
			},
		},
		{
			name:    "approve non-existing request",
			wantErr: ErrNotFound,
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				return "00000000-0000-0000-0000-000000000000", userID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			requestID, userID := tt.setup(t, factory)

			got, err := storage.ApproveUpgradeRequest(context.Background(), requestID, &notes)

			verification := NewTestVerification(storage)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, got)
				verification.VerifyProfileSubscription(t, userID, models.TierFree)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, models.RequestApproved, got.Status)
				require.NotNil(t, got.AdminNotes)
				assert.Equal(t, notes, *got.AdminNotes)
				verification.VerifyRequestStatus(t, requestID, models.RequestApproved)
				verification.VerifyProfileSubscription(t, userID, got.RequestedTier)
			}
		})
	}
}

// Одобрение, споткнувшееся на полпути, не должно оставлять частичного
// состояния: транзакция откатывается целиком, заявка остается pending,
// тариф не меняется, и повторное одобрение после устранения причины
// проходит успешно.
func TestStorage_ApproveUpgradeRequest_RollsBackOnFailure(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
	packageID := factory.CreatePackage(t, "VIP Monthly", "vip-monthly", models.TierVip, 30)
	requestID := factory.CreatePendingRequestWithPackage(t, userID, "requester@example.com", models.TierVip, packageID)

	// Пакет снят с продажи между подачей и решением: активация невозможна
	_, err := storage.DB.Exec(`UPDATE subscription_packages SET is_active = false WHERE id = $1`, packageID)
	require.NoError(t, err)

	got, err := storage.ApproveUpgradeRequest(context.Background(), requestID, nil)
	require.Error(t, err)
	assert.Nil(t, got)

	verification := NewTestVerification(storage)
	verification.VerifyRequestStatus(t, requestID, models.RequestPending)
	verification.VerifyProfileSubscription(t, userID, models.TierFree)

	var subscriptions int
	err = storage.DB.QueryRow(`SELECT COUNT(*) FROM user_subscriptions WHERE user_id = $1`, userID).
		Scan(&subscriptions)
	require.NoError(t, err)
	assert.Equal(t, 0, subscriptions)

	// После возврата пакета в продажу повторное одобрение проходит
	_, err = storage.DB.Exec(`UPDATE subscription_packages SET is_active = true WHERE id = $1`, packageID)
	require.NoError(t, err)

	got, err = storage.ApproveUpgradeRequest(context.Background(), requestID, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	verification.VerifyRequestStatus(t, requestID, models.RequestApproved)
	verification.VerifyProfileSubscription(t, userID, models.TierVip)

	err = storage.DB.QueryRow(`SELECT COUNT(*) FROM user_subscriptions WHERE user_id = $1`, userID).
		Scan(&subscriptions)
	require.NoError(t, err)
	assert.Equal(t, 1, subscriptions)
}

func TestStorage_ListUpgradeRequests(t *testing.T) {
	pending := models.RequestPending

	tests := []struct {
		name      string
		status    *models.RequestStatus
		wantCount int
		setup     func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name:      "list only pending requests",
			status:    &pending,
			wantCount: 2,
			setup: func(t *testing.T, factory *TestDataFactory) {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)
				factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierSpecial)
				resolved := factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)
				_, err := factory.storage.DB.Exec(
					`UPDATE upgrade_requests SET status = 'rejected' WHERE id = $1`, resolved)
				require.NoError(t, err)
			},
		},
		{
			name:      "list all requests without filter",
			status:    nil,
			wantCount: 3,
			setup: func(t *testing.T, factory *TestDataFactory) {
				userID := factory.CreateAccount(t, "requester@example.com", models.StatusApproved, models.TierFree)
				factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)
				factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierSpecial)
				resolved := factory.CreatePendingRequest(t, userID, "requester@example.com", models.TierVip)
				_, err := factory.storage.DB.Exec(
					`UPDATE upgrade_requests SET status = 'approved' WHERE id = $1`, resolved)
				require.NoError(t, err)
			},
		},
		{
			name:      "list with no requests",
			status:    &pending,
			wantCount: 0,
			setup:     func(_ *testing.T, _ *TestDataFactory) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			got, err := storage.ListUpgradeRequests(context.Background(), tt.status)

			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestStorage_RevokeRole(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) (assignmentID, actingAdminID string)
	}{
		{
			name: "admin revokes role of another user",
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				adminID := factory.CreateAccount(t, "admin@example.com", models.StatusApproved, models.TierFree)
				factory.GrantAdmin(t, adminID)
				otherID := factory.CreateAccount(t, "other@example.com", models.StatusApproved, models.TierFree)
				assignmentID := factory.GrantAdmin(t, otherID)
				return assignmentID, adminID
			},
		},
		{
			name:    "admin removes own last admin role",
			wantErr: ErrLastAdmin,
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				adminID := factory.CreateAccount(t, "admin@example.com", models.StatusApproved, models.TierFree)
				assignmentID := factory.GrantAdmin(t, adminID)
				return assignmentID, adminID
			},
		},
		{
			name:    "revoke non-existing assignment",
			wantErr: ErrNotFound,
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				adminID := factory.CreateAccount(t, "admin@example.com", models.StatusApproved, models.TierFree)
				factory.GrantAdmin(t, adminID)
				return "00000000-0000-0000-0000-000000000000", adminID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			assignmentID, actingAdminID := tt.setup(t, factory)

			err := storage.RevokeRole(context.Background(), assignmentID, actingAdminID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStorage_MarkNotificationRead(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) (notificationID, userID string)
	}{
		{
			name: "successful mark unread notification",
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				userID := factory.CreateAccount(t, "reader@example.com", models.StatusApproved, models.TierFree)
				return factory.CreateNotification(t, userID, "Upgrade Approved!", false), userID
			},
		},
		{
			name: "mark already read notification is idempotent",
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				userID := factory.CreateAccount(t, "reader@example.com", models.StatusApproved, models.TierFree)
				return factory.CreateNotification(t, userID, "Upgrade Approved!", true), userID
			},
		},
		{
			name:    "mark notification of another user",
			wantErr: ErrNotFound,
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				ownerID := factory.CreateAccount(t, "owner@example.com", models.StatusApproved, models.TierFree)
				strangerID := factory.CreateAccount(t, "stranger@example.com", models.StatusApproved, models.TierFree)
				return factory.CreateNotification(t, ownerID, "Private", false), strangerID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			notificationID, userID := tt.setup(t, factory)

			got, err := storage.MarkNotificationRead(context.Background(), notificationID, userID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.True(t, got.IsRead)
			}
		})
	}
}

func TestStorage_CountUnreadNotifications(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateAccount(t, "reader@example.com", models.StatusApproved, models.TierFree)
	factory.CreateNotification(t, userID, "first", false)
	factory.CreateNotification(t, userID, "second", false)
	factory.CreateNotification(t, userID, "third", true)

	count, err := storage.CountUnreadNotifications(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	affected, err := storage.MarkAllNotificationsRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, affected)

	// Повторный вызов ничего не меняет
	affected, err = storage.MarkAllNotificationsRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)

	count, err = storage.CountUnreadNotifications(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_CreateNotification_UnknownRecipient(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	got, err := storage.CreateNotification(context.Background(),
		"00000000-0000-0000-0000-000000000000", "Hello", "message body")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Nil(t, got)
}

func TestStorage_CreateNotificationsBatch(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	first := factory.CreateAccount(t, "first@example.com", models.StatusApproved, models.TierVip)
	second := factory.CreateAccount(t, "second@example.com", models.StatusApproved, models.TierVip)

	got, err := storage.CreateNotificationsBatch(context.Background(),
		[]string{first, second}, "Maintenance", "Service will be down tonight")

	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, n := range got {
		assert.False(t, n.IsRead)
		assert.Equal(t, "Maintenance", n.Title)
	}
}

func TestStorage_CreateSubscriptionRecord(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateAccount(t, "buyer@example.com", models.StatusApproved, models.TierFree)
	packageID := factory.CreatePackage(t, "VIP Monthly", "vip-monthly", models.TierVip, 30)

	rec, err := storage.CreateSubscriptionRecord(context.Background(), userID, packageID)

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, packageID, rec.PackageID)
	// Срок действия равен началу плюс длительность пакета
	assert.WithinDuration(t, rec.StartsAt.AddDate(0, 0, 30), rec.ExpiresAt, time.Minute)
}

func TestStorage_ListTipsByCategory(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	now := time.Now()
	factory.CreateTip(t, models.TierFree, now)
	factory.CreateTip(t, models.TierVip, now.Add(time.Hour))
	factory.CreateTip(t, models.TierVip, now.Add(2*time.Hour))

	got, err := storage.ListTipsByCategory(context.Background(), models.TierVip)

	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, tip := range got {
		assert.Equal(t, models.TierVip, tip.Category)
	}
}
