// internal/testutil/fixtures.go
package testutil

import (
	"fmt"
	"testing"

	approvalstore "github.com/mwalimuhub/unionhub/internal/app/store/approvals"
	applicationstore "github.com/mwalimuhub/unionhub/internal/app/store/applications"
	referralstore "github.com/mwalimuhub/unionhub/internal/app/store/referrals"
	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var fixtureSeq int

func nextSeq() int {
	fixtureSeq++
	return fixtureSeq
}

// CreateUser inserts a user with the given role and returns it. Email is
// unique per call so tests can create as many users as they need.
func CreateUser(t *testing.T, db *mongo.Database, role string) models.User {
	t.Helper()

	n := nextSeq()
	u, err := userstore.New(db).Create(TestContext(), models.User{
		FirstName: "Test",
		LastName:  fmt.Sprintf("%s %d", role, n),
		Email:     fmt.Sprintf("%s%d@example.org", role, n),
		Role:      role,
	})
	if err != nil {
		t.Fatalf("create %s user: %v", role, err)
	}
	return u
}

// CreateUserInRegions inserts a user and assigns them the given regions.
func CreateUserInRegions(t *testing.T, db *mongo.Database, role string, regions ...string) models.User {
	t.Helper()

	u := CreateUser(t, db, role)
	_, err := db.Collection("users").UpdateOne(TestContext(),
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"assigned_regions": regions}})
	if err != nil {
		t.Fatalf("assign regions: %v", err)
	}
	u.AssignedRegions = regions
	return u
}

// CreateApprovalRequest inserts a request of the given type in the given
// status, with requester as its creator.
func CreateApprovalRequest(t *testing.T, db *mongo.Database, requester models.User, reqType, approverRole, status string) models.ApprovalRequest {
	t.Helper()

	req, err := approvalstore.New(db).Create(TestContext(), models.ApprovalRequest{
		Type:          reqType,
		RequesterID:   requester.ID,
		RequesterName: requester.FullName(),
		RequesterRole: requester.Role,
		ApproverRole:  approverRole,
		Status:        status,
		History: []models.ApprovalHistoryItem{{
			ActorID:   requester.ID,
			ActorName: requester.FullName(),
			ActorRole: requester.Role,
			Action:    models.ActionCreated,
		}},
	})
	if err != nil {
		t.Fatalf("create approval request: %v", err)
	}
	return req
}

// CreateReferral inserts a pending referral from referrer to referee.
func CreateReferral(t *testing.T, db *mongo.Database, referrer, referee models.User) models.Referral {
	t.Helper()

	ref, err := referralstore.New(db).Create(TestContext(), models.Referral{
		ReferrerID:   referrer.ID,
		ReferrerName: referrer.FullName(),
		RefereeID:    referee.ID,
		RefereeName:  referee.FullName(),
	})
	if err != nil {
		t.Fatalf("create referral: %v", err)
	}
	return ref
}

// CreateApplication inserts a submitted member application.
func CreateApplication(t *testing.T, db *mongo.Database, county, referralCode string) models.MemberApplication {
	t.Helper()

	n := nextSeq()
	app, err := applicationstore.New(db).Create(TestContext(), models.MemberApplication{
		FirstName:    "Applicant",
		LastName:     fmt.Sprintf("Number %d", n),
		Email:        fmt.Sprintf("applicant%d@example.org", n),
		Phone:        "+254700000000",
		County:       county,
		TSCNumber:    fmt.Sprintf("TSC-%06d", n),
		ReferralCode: referralCode,
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	return app
}
