// internal/app/store/oauthstate/oauthstatestore.go
package oauthstatestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStateInvalid is returned when a callback state is unknown, already
// used, or expired.
var ErrStateInvalid = errors.New("oauth state is invalid or expired")

// stateTTL bounds how long a login attempt may sit between redirect and
// callback.
const stateTTL = 10 * time.Minute

type record struct {
	State     string    `bson:"_id"`
	ReturnTo  string    `bson:"return_to,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states")}
}

// EnsureIndexes sets a TTL so abandoned login attempts clean themselves up.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(stateTTL.Seconds())),
	})
	return err
}

// Save records a fresh state token before redirecting to the provider.
func (s *Store) Save(ctx context.Context, state, returnTo string) error {
	_, err := s.c.InsertOne(ctx, record{
		State:     state,
		ReturnTo:  returnTo,
		CreatedAt: time.Now(),
	})
	return err
}

// Consume validates and burns a state token, returning the stored return
// path. Each state can be consumed exactly once.
func (s *Store) Consume(ctx context.Context, state string) (returnTo string, err error) {
	var rec record
	err = s.c.FindOneAndDelete(ctx, bson.M{"_id": state}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrStateInvalid
	}
	if err != nil {
		return "", err
	}
	if time.Since(rec.CreatedAt) > stateTTL {
		return "", ErrStateInvalid
	}
	return rec.ReturnTo, nil
}
