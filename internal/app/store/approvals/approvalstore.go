// internal/app/store/approvals/approvalstore.go
package approvalstore

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
	// ErrNotFound is returned when no request with the given ID exists.
	ErrNotFound = errors.New("approval request not found")

	// ErrConflict is returned when a conditional status update matched no
	// document: another decision landed first, or the request moved on.
	ErrConflict = errors.New("approval request was modified concurrently")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("approval_requests")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "approver_role", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new request. The caller (system/approval) is responsible
// for setting Status and the initial history entry; timestamps are stamped
// here so the wire always carries normalized times.
func (s *Store) Create(ctx context.Context, req models.ApprovalRequest) (models.ApprovalRequest, error) {
	req.ID = primitive.NewObjectID()
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	for i := range req.History {
		if req.History[i].Timestamp.IsZero() {
			req.History[i].Timestamp = now
		}
	}
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.ApprovalRequest{}, err
	}
	return req, nil
}

// GetByID loads a request by ID, mapping missing documents to ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Transition applies a status change only if the request is still in the
// expected status, appending the history entry in the same write. A matched
// count of zero means someone else decided first; callers get ErrConflict
// and should re-read.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, fromStatus, toStatus string, entry models.ApprovalHistoryItem) error {
	now := time.Now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	set := bson.M{"status": toStatus, "updated_at": now}
	if entry.Action == models.ActionRejected && entry.Comment != "" {
		set["reason"] = entry.Comment
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": fromStatus},
		bson.M{
			"$set":  set,
			"$push": bson.M{"history": entry},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a lost race from a bad ID.
		if n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}); err == nil && n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// AppendHistory adds a comment-style entry without touching the status.
func (s *Store) AppendHistory(ctx context.Context, id primitive.ObjectID, entry models.ApprovalHistoryItem) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"history": entry},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilter selects requests for the approvals screen.
type ListFilter struct {
	Statuses     []string
	ApproverRole string
	RequesterID  primitive.ObjectID
	Limit        int64
}

// List returns matching requests, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.ApprovalRequest, error) {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.ApproverRole != "" {
		query["approver_role"] = filter.ApproverRole
	}
	if !filter.RequesterID.IsZero() {
		query["requester_id"] = filter.RequesterID
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []models.ApprovalRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// CountOpen returns the number of requests not yet in a terminal state, for
// the dashboard badge.
func (s *Store) CountOpen(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": bson.M{"$in": []string{
		models.StatusPending, models.StatusAwaitingVP, models.StatusAwaitingPresident,
	}}})
}
