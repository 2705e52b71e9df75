// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Fetcher adapts the user store to auth.UserFetcher so the session
// middleware can refresh role, permissions, and region assignments on
// every request.
type Fetcher struct {
	store *Store
	log   *zap.Logger
}

func NewFetcher(store *Store, log *zap.Logger) *Fetcher {
	return &Fetcher{store: store, log: log}
}

// FetchUser loads fresh user data for the session middleware. Returns nil
// for unknown, malformed, or disabled users so stale sessions fail closed.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		f.log.Warn("session user id is not an object id", zap.String("user_id", userID))
		return nil
	}

	u, err := f.store.GetByID(ctx, oid)
	if err != nil {
		f.log.Debug("session user not found", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if u.Status == models.StatusDisabled {
		return nil
	}

	return &auth.SessionUser{
		ID:              u.ID.Hex(),
		Name:            u.FullName(),
		Email:           u.Email,
		Role:            u.Role,
		Permissions:     u.Permissions,
		AssignedRegions: u.AssignedRegions,
		ReferralCode:    u.ReferralCode,
	}
}
