// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	applicationstore "github.com/mwalimuhub/unionhub/internal/app/store/applications"
	approvalstore "github.com/mwalimuhub/unionhub/internal/app/store/approvals"
	auditstore "github.com/mwalimuhub/unionhub/internal/app/store/audit"
	contactstore "github.com/mwalimuhub/unionhub/internal/app/store/contact"
	oauthstatestore "github.com/mwalimuhub/unionhub/internal/app/store/oauthstate"
	referralstore "github.com/mwalimuhub/unionhub/internal/app/store/referrals"
	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every store relies on. Index creation is
// idempotent, so this runs unconditionally on every boot.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	ensure := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"approval_requests", approvalstore.New(db).EnsureIndexes},
		{"referrals", referralstore.New(db).EnsureIndexes},
		{"member_applications", applicationstore.New(db).EnsureIndexes},
		{"audit_events", auditstore.New(db).EnsureIndexes},
		{"oauth_states", oauthstatestore.New(db).EnsureIndexes},
		{"contact_messages", contactstore.New(db).EnsureIndexes},
	}

	for _, e := range ensure {
		if err := e.fn(ctx); err != nil {
			logger.Error("index creation failed",
				zap.String("collection", e.name), zap.Error(err))
			return fmt.Errorf("ensure indexes for %s: %w", e.name, err)
		}
	}

	logger.Info("database indexes ensured")
	return nil
}
