package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/services/access"
)

func sessionWith(status models.Status, tier models.Tier) *models.Session {
	profile := &models.Profile{
		ID:           "user-uid",
		Status:       status,
		Subscription: tier,
	}
	return &models.Session{
		Profile:    profile,
		IsApproved: status == models.StatusApproved,
		IsVip:      tier == models.TierVip || tier == models.TierSpecial,
		IsSpecial:  tier == models.TierSpecial,
	}
}

func TestCanView(t *testing.T) {
	tests := []struct {
		name         string
		session      *models.Session
		requiredTier models.Tier
		want         bool
	}{
		{
			name:         "approved free user views free content",
			session:      sessionWith(models.StatusApproved, models.TierFree),
			requiredTier: models.TierFree,
			want:         true,
		},
		{
			name:         "approved free user denied vip content",
			session:      sessionWith(models.StatusApproved, models.TierFree),
			requiredTier: models.TierVip,
			want:         false,
		},
		{
			name:         "approved vip user views vip content",
			session:      sessionWith(models.StatusApproved, models.TierVip),
			requiredTier: models.TierVip,
			want:         true,
		},
		{
			name:         "approved vip user denied special content",
			session:      sessionWith(models.StatusApproved, models.TierVip),
			requiredTier: models.TierSpecial,
			want:         false,
		},
		{
			name:         "approved special user views every tier",
			session:      sessionWith(models.StatusApproved, models.TierSpecial),
			requiredTier: models.TierVip,
			want:         true,
		},
		{
			name:         "approved special user views special content",
			session:      sessionWith(models.StatusApproved, models.TierSpecial),
			requiredTier: models.TierSpecial,
			want:         true,
		},
		{
			name:         "pending special user denied even free content",
			session:      sessionWith(models.StatusPending, models.TierSpecial),
			requiredTier: models.TierFree,
			want:         false,
		},
		{
			name:         "blocked vip user denied vip content",
			session:      sessionWith(models.StatusBlocked, models.TierVip),
			requiredTier: models.TierVip,
			want:         false,
		},
		{
			name:         "session without profile denied free content",
			session:      &models.Session{},
			requiredTier: models.TierFree,
			want:         false,
		},
		{
			name:         "nil session denied",
			session:      nil,
			requiredTier: models.TierFree,
			want:         false,
		},
		{
			name:         "unknown tier denied",
			session:      sessionWith(models.StatusApproved, models.TierSpecial),
			requiredTier: models.Tier("platinum"),
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, access.CanView(tt.session, tt.requiredTier))
		})
	}
}
