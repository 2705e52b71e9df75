// internal/app/store/applications/applicationstore.go
package applicationstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mwalimuhub/unionhub/internal/app/system/normalize"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no application with the given ID exists.
	ErrNotFound = errors.New("application not found")

	// ErrDuplicate is returned when an open application already exists for
	// the email.
	ErrDuplicate = errors.New("an application with this email already exists")

	// ErrConflict is returned when a decision raced another reviewer.
	ErrConflict = errors.New("application was modified concurrently")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("member_applications")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.ApplicationSubmitted}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "county", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create records a public join application in submitted status.
func (s *Store) Create(ctx context.Context, app models.MemberApplication) (models.MemberApplication, error) {
	app.ID = primitive.NewObjectID()
	app.FirstName = normalize.Name(app.FirstName)
	app.LastName = normalize.Name(app.LastName)
	app.FullNameCI = text.Fold(strings.TrimSpace(app.FirstName + " " + app.LastName))
	app.Email = normalize.Email(app.Email)
	app.County = normalize.Region(app.County)
	app.TSCNumber = strings.TrimSpace(app.TSCNumber)
	app.ReferralCode = strings.ToUpper(strings.TrimSpace(app.ReferralCode))
	app.Status = models.ApplicationSubmitted

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, app); err != nil {
		if wafflemongo.IsDup(err) {
			return models.MemberApplication{}, ErrDuplicate
		}
		return models.MemberApplication{}, err
	}
	return app, nil
}

// GetByID loads an application, mapping missing documents to ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.MemberApplication, error) {
	var app models.MemberApplication
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Decide moves a submitted application to approved or rejected. Only
// applications still in submitted status can be decided; a matched count of
// zero against an existing document means another reviewer got there first.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ApplicationSubmitted},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
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

// ListFilter selects applications for the review queue.
type ListFilter struct {
	Status   string
	Counties []string // restrict to these counties; nil means no restriction
	Limit    int64
}

// List returns applications matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.MemberApplication, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Counties != nil {
		query["county"] = bson.M{"$in": filter.Counties}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var apps []models.MemberApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// CountSubmitted returns the number of applications waiting for review.
func (s *Store) CountSubmitted(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": models.ApplicationSubmitted})
}
