// internal/app/store/users/userstore_test.go
package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/mwalimuhub/unionhub/internal/testutil"
)

func TestCreateNormalizesAndMintsReferralCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	ctx := testutil.TestContext()

	u, err := s.Create(ctx, models.User{
		FirstName: "  Wanjiku ",
		LastName:  "Kamau",
		Email:     " Wanjiku.Kamau@Example.ORG ",
		Role:      "Teacher",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if u.Email != "wanjiku.kamau@example.org" {
		t.Errorf("email = %q, want normalized lowercase", u.Email)
	}
	if u.Role != "teacher" {
		t.Errorf("role = %q, want lowercase", u.Role)
	}
	if u.Status != models.StatusActive {
		t.Errorf("status = %q, want active default", u.Status)
	}
	if u.ReferralCode == "" {
		t.Errorf("every member should get a referral code")
	}

	byCode, err := s.GetByReferralCode(ctx, u.ReferralCode)
	if err != nil {
		t.Fatalf("lookup by referral code: %v", err)
	}
	if byCode.ID != u.ID {
		t.Errorf("referral code lookup returned the wrong user")
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	ctx := testutil.TestContext()

	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	first := models.User{FirstName: "A", LastName: "B", Email: "dup@example.org", Role: "teacher"}
	if _, err := s.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := models.User{FirstName: "C", LastName: "D", Email: "DUP@example.org", Role: "teacher"}
	if _, err := s.Create(ctx, second); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("duplicate create: err = %v, want userstore.ErrDuplicateEmail", err)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)

	_, err := s.Create(testutil.TestContext(), models.User{
		FirstName: "A", LastName: "B", Email: "x@example.org", Role: "janitor",
	})
	if err == nil {
		t.Fatalf("unknown role should be rejected")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	ctx := testutil.TestContext()

	u, err := s.Create(ctx, models.User{
		FirstName: "A", LastName: "B", Email: "pw@example.org", Role: "finance",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.SetPassword(ctx, u.ID, "correct horse battery staple"); err != nil {
		t.Fatalf("set password: %v", err)
	}

	loaded, err := s.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !userstore.CheckPassword(loaded, "correct horse battery staple") {
		t.Errorf("correct password rejected")
	}
	if userstore.CheckPassword(loaded, "wrong") {
		t.Errorf("wrong password accepted")
	}
	if userstore.CheckPassword(nil, "anything") {
		t.Errorf("nil user must never authenticate")
	}
}

func TestListScopesByRegion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	ctx := testutil.TestContext()

	testutil.CreateUserInRegions(t, db, "teacher", "Nairobi")
	testutil.CreateUserInRegions(t, db, "teacher", "Kisumu")
	testutil.CreateUserInRegions(t, db, "teacher", "Mombasa")

	got, err := s.List(ctx, userstore.ListFilter{Regions: []string{"Nairobi", "Kisumu"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("scoped list length = %d, want 2", len(got))
	}

	all, err := s.List(ctx, userstore.ListFilter{})
	if err != nil {
		t.Fatalf("unscoped list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unscoped list length = %d, want 3", len(all))
	}
}
