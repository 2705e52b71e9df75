// internal/app/store/referrals/referralstore.go
package referralstore

import (
	"context"
	"errors"
	"time"

	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no referral with the given ID exists.
	ErrNotFound = errors.New("referral not found")

	// ErrConflict is returned when a conditional status update matched no
	// document in the expected status.
	ErrConflict = errors.New("referral was modified concurrently")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("referrals")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "referrer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "referee_id", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create records a new referral in pending status with the flat bonus
// amount fixed at creation time.
func (s *Store) Create(ctx context.Context, ref models.Referral) (models.Referral, error) {
	ref.ID = primitive.NewObjectID()
	ref.Status = models.ReferralPending
	if ref.Amount == 0 {
		ref.Amount = models.ReferralBonusAmount
	}
	now := time.Now()
	ref.CreatedAt = now
	ref.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ref); err != nil {
		return models.Referral{}, err
	}
	return ref, nil
}

// GetByID loads a referral, mapping missing documents to ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Referral, error) {
	var ref models.Referral
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Transition moves the referral from one status to another only if it is
// still in the expected status.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, fromStatuses []string, toStatus string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": fromStatuses}},
		bson.M{"$set": bson.M{"status": toStatus, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}); err == nil && n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// ListByReferrer returns a member's own referrals, newest first.
func (s *Store) ListByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]models.Referral, error) {
	return s.find(ctx, bson.M{"referrer_id": referrerID})
}

// ListByStatus returns referrals in the given statuses for the payouts
// screen; nil statuses means everything.
func (s *Store) ListByStatus(ctx context.Context, statuses []string) ([]models.Referral, error) {
	query := bson.M{}
	if len(statuses) > 0 {
		query["status"] = bson.M{"$in": statuses}
	}
	return s.find(ctx, query)
}

func (s *Store) find(ctx context.Context, query bson.M) ([]models.Referral, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(500)
	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var refs []models.Referral
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// TotalOwed sums the amounts of referrals not yet paid, for the finance
// dashboard card.
func (s *Store) TotalOwed(ctx context.Context) (int, error) {
	cursor, err := s.c.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"status": bson.M{"$in": []string{
			models.ReferralEligible, models.ReferralRequested,
		}}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}
