package bootstrap

import (
	"testing"
	"time"

	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/mwalimuhub/unionhub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsurePresident_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext()

	deps := DBDeps{MongoDatabase: db}

	if err := ensurePresident(ctx, deps, "president@union.test", testLogger()); err != nil {
		t.Fatalf("ensurePresident failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"email": "president@union.test"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}

	if user.Role != "president" {
		t.Errorf("expected role 'president', got %q", user.Role)
	}
	if user.Status != models.StatusActive {
		t.Errorf("expected status 'active', got %q", user.Status)
	}
	if user.ReferralCode == "" {
		t.Error("expected a referral code to be minted")
	}
	if user.PasswordHash != "" {
		t.Error("expected no password on a bootstrap account")
	}
}

func TestEnsurePresident_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext()

	now := time.Now().UTC()
	existing := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  "Grace",
		LastName:   "Wanjiku",
		FullNameCI: text.Fold("Grace Wanjiku"),
		Email:      "grace@union.test",
		Role:       "finance",
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := db.Collection("users").InsertOne(ctx, existing); err != nil {
		t.Fatalf("failed to create existing user: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}

	if err := ensurePresident(ctx, deps, "grace@union.test", testLogger()); err != nil {
		t.Fatalf("ensurePresident failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}

	if user.Role != "president" {
		t.Errorf("expected role 'president', got %q", user.Role)
	}
	if user.FirstName != "Grace" {
		t.Errorf("promotion should not rewrite the name, got %q", user.FirstName)
	}
}

func TestEnsurePresident_AlreadyPresident(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext()

	now := time.Now().UTC()
	existing := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  "Daniel",
		LastName:   "Otieno",
		FullNameCI: text.Fold("Daniel Otieno"),
		Email:      "daniel@union.test",
		Role:       "president",
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := db.Collection("users").InsertOne(ctx, existing); err != nil {
		t.Fatalf("failed to create existing user: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}

	if err := ensurePresident(ctx, deps, "daniel@union.test", testLogger()); err != nil {
		t.Fatalf("ensurePresident failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.UpdatedAt.Sub(now) > time.Second {
		t.Error("expected an existing president to be left untouched")
	}
}
