// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/normalize"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.PresidentEmail != "" {
		if err := ensurePresident(ctx, deps, appCfg.PresidentEmail, logger); err != nil {
			return fmt.Errorf("ensure president: %w", err)
		}
	}
	return nil
}

// ensurePresident guarantees a usable president account exists. An existing
// user with the configured email is promoted; otherwise a fresh account is
// created with no password, so the first sign-in must go through Google.
func ensurePresident(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := deps.MongoDatabase.Collection("users")
	email = normalize.Email(email)

	var existing models.User
	err := users.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	switch {
	case err == nil:
		if existing.Role == "president" {
			return nil
		}
		_, err = users.UpdateOne(ctx,
			bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{
				"role":       "president",
				"status":     models.StatusActive,
				"updated_at": time.Now(),
			}})
		if err != nil {
			return err
		}
		logger.Info("promoted existing user to president",
			zap.String("email", email),
			zap.String("previous_role", existing.Role))
		return nil

	case err == mongo.ErrNoDocuments:
		now := time.Now()
		u := models.User{
			ID:           primitive.NewObjectID(),
			FirstName:    "Union",
			LastName:     "President",
			FullNameCI:   text.Fold("Union President"),
			Email:        email,
			Role:         "president",
			Status:       models.StatusActive,
			AuthMethod:   "google",
			ReferralCode: userstore.NewReferralCode(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := users.InsertOne(ctx, u); err != nil {
			return err
		}
		logger.Info("created president account", zap.String("email", email))
		return nil

	default:
		return err
	}
}
