// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - ReferralCode / referral_code: The short code a member shares so applicants can credit them

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/app/system/normalize"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New("unknown role")
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email and referral-code indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "referral_code", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"referral_code": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "full_name_ci", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "assigned_regions", Value: 1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByReferralCode looks up the owner of a referral code.
func (s *Store) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"referral_code": code}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields. A fresh
// referral code is minted for every member so they can refer colleagues.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.FullNameCI = text.Fold(u.FullName())
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.ReferralCode == "" {
		u.ReferralCode = NewReferralCode()
	}

	if _, ok := authz.ParseRole(u.Role); !ok {
		return models.User{}, errBadRole
	}
	if u.Status != models.StatusActive && u.Status != models.StatusDisabled {
		return models.User{}, errBadStatus
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the fields an admin can edit on a user.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Role      string
	Status    string
}

// UpdateProfile updates a user's editable fields.
// Returns ErrDuplicateEmail if the email already exists for another user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	first := normalize.Name(upd.FirstName)
	last := normalize.Name(upd.LastName)
	set := bson.M{
		"first_name":   first,
		"last_name":    last,
		"full_name_ci": text.Fold(strings.TrimSpace(first + " " + last)),
		"email":        normalize.Email(upd.Email),
		"role":         normalize.Role(upd.Role),
		"status":       normalize.Status(upd.Status),
		"updated_at":   time.Now(),
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// SetPassword stores a bcrypt hash of the given password.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": string(hash),
		"updated_at":    time.Now(),
	}})
	return err
}

// CheckPassword compares the stored hash against a candidate password.
func CheckPassword(u *models.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPermissions replaces the user's explicit permission override list.
func (s *Store) SetPermissions(ctx context.Context, id primitive.ObjectID, perms []string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"permissions": perms,
		"updated_at":  time.Now(),
	}})
	return err
}

// SetAssignedRegions replaces the user's region assignment list.
func (s *Store) SetAssignedRegions(ctx context.Context, id primitive.ObjectID, regions []string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"assigned_regions": regions,
		"updated_at":       time.Now(),
	}})
	return err
}

// SetStatus activates or disables a user. Users are never hard-deleted.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if status != models.StatusActive && status != models.StatusDisabled {
		return errBadStatus
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}})
	return err
}

// ListFilter selects users for the members screen.
type ListFilter struct {
	Role    string
	Regions []string // restrict to members whose county is in this list; nil means no restriction
	Search  string   // case-folded name prefix
	Limit   int64
}

// List returns users matching the filter, ordered by folded name.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = normalize.Role(filter.Role)
	}
	if filter.Regions != nil {
		query["assigned_regions"] = bson.M{"$in": filter.Regions}
	}
	if filter.Search != "" {
		query["full_name_ci"] = bson.M{"$regex": "^" + text.Fold(filter.Search)}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// NewReferralCode mints a short uppercase referral code.
func NewReferralCode() string {
	return "MW-" + strings.ToUpper(uuid.New().String()[:8])
}
