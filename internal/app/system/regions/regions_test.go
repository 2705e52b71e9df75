// internal/app/system/regions/regions_test.go
package regions

import (
	"reflect"
	"testing"

	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/mwalimuhub/unionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) (*Manager, *userstore.Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	audit := auditlog.New(nil, auditlog.ModeOff, zap.NewNop())
	return NewManager(users, audit), users, db
}

func testActor(u models.User) auditlog.Actor {
	return auditlog.Actor{ID: u.ID.Hex(), Name: u.FullName(), Role: u.Role}
}

func TestAssignMergesAsSetUnion(t *testing.T) {
	m, users, db := newTestManager(t)
	ctx := testutil.TestContext()

	president := testutil.CreateUser(t, db, string(authz.RolePresident))
	admin := testutil.CreateUserInRegions(t, db, string(authz.RoleRegionalAdmin), "Kisumu")

	got, err := m.Assign(ctx, admin.ID, []string{"nairobi", "Kisumu", "nakuru "}, testActor(president))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	want := []string{"Kisumu", "Nairobi", "Nakuru"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assigned regions = %v, want %v", got, want)
	}

	stored, err := users.GetByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(stored.AssignedRegions, want) {
		t.Errorf("stored regions = %v, want %v", stored.AssignedRegions, want)
	}
}

func TestUnassignRemovesOneRegion(t *testing.T) {
	m, _, db := newTestManager(t)
	ctx := testutil.TestContext()

	president := testutil.CreateUser(t, db, string(authz.RolePresident))
	admin := testutil.CreateUserInRegions(t, db, string(authz.RoleRegionalAdmin), "Kisumu", "Nairobi")

	got, err := m.Unassign(ctx, admin.ID, "kisumu", testActor(president))
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Nairobi"}) {
		t.Errorf("remaining regions = %v, want [Nairobi]", got)
	}

	// Removing a region the admin does not hold still succeeds.
	got, err = m.Unassign(ctx, admin.ID, "Mombasa", testActor(president))
	if err != nil {
		t.Fatalf("unassign absent region: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Nairobi"}) {
		t.Errorf("regions after no-op unassign = %v, want [Nairobi]", got)
	}
}

func TestSameRegionOnMultipleAdmins(t *testing.T) {
	m, _, db := newTestManager(t)
	ctx := testutil.TestContext()

	president := testutil.CreateUser(t, db, string(authz.RolePresident))
	first := testutil.CreateUser(t, db, string(authz.RoleRegionalAdmin))
	second := testutil.CreateUser(t, db, string(authz.RoleRegionalAdmin))

	if _, err := m.Assign(ctx, first.ID, []string{"Nairobi"}, testActor(president)); err != nil {
		t.Fatalf("assign first: %v", err)
	}
	got, err := m.Assign(ctx, second.ID, []string{"Nairobi"}, testActor(president))
	if err != nil {
		t.Fatalf("assign second: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Nairobi"}) {
		t.Errorf("second admin regions = %v, want [Nairobi]; no exclusivity exists", got)
	}
}
