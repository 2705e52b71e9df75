// internal/app/store/contact/contactstore.go
package contactstore

import (
	"context"
	"time"

	"github.com/mwalimuhub/unionhub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Message is one enquiry from the public contact form.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contact_messages")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

// Create stores a sanitized enquiry.
func (s *Store) Create(ctx context.Context, msg Message) (Message, error) {
	msg.ID = primitive.NewObjectID()
	msg.Name = normalize.Name(msg.Name)
	msg.Email = normalize.Email(msg.Email)
	msg.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Recent returns the latest enquiries for the operations screen.
func (s *Store) Recent(ctx context.Context, limit int64) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
