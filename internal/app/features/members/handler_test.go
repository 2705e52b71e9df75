package members_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mwalimuhub/unionhub/internal/app/features/members"
	auditstore "github.com/mwalimuhub/unionhub/internal/app/store/audit"
	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/mwalimuhub/unionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*members.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	audit := auditlog.New(auditstore.New(db), auditlog.ModeDB, logger)
	audit.Start()
	t.Cleanup(audit.Stop)
	return members.NewHandler(userstore.New(db), audit, logger), db
}

// serve runs the request through the feature router so URL params resolve.
// Template rendering may panic in tests without a booted engine; the
// handler logic before the render is what these tests exercise.
func serve(h *members.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() {
			_ = recover()
		}()
		members.Routes(h).ServeHTTP(rec, req)
	}()
	return rec
}

func TestUpdate_EditsProfile(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := testutil.TestContext()

	officer := testutil.CreateUser(t, db, "vice_president")
	member := testutil.CreateUserInRegions(t, db, "teacher", "nairobi")

	form := url.Values{
		"first_name": {"Amina"},
		"last_name":  {"Odhiambo"},
		"email":      {"amina@union.test"},
		"role":       {member.Role},
	}
	req := testutil.NewAuthenticatedForm("/"+member.ID.Hex(), officer, form)
	rec := serve(handler, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/members/"+member.ID.Hex()+"?saved=1" {
		t.Errorf("unexpected redirect target %q", loc)
	}

	got, err := userstore.New(db).GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if got.FirstName != "Amina" || got.LastName != "Odhiambo" {
		t.Errorf("profile not updated: %q %q", got.FirstName, got.LastName)
	}
	if got.Email != "amina@union.test" {
		t.Errorf("email not updated: %q", got.Email)
	}
}

func TestUpdate_RoleChangeNeedsUserManagement(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := testutil.TestContext()

	// regional_admin can edit members in its regions but cannot change roles.
	admin := testutil.CreateUserInRegions(t, db, "regional_admin", "nairobi")
	member := testutil.CreateUserInRegions(t, db, "teacher", "nairobi")

	form := url.Values{
		"first_name": {member.FirstName},
		"last_name":  {member.LastName},
		"email":      {member.Email},
		"role":       {"finance"},
	}
	req := testutil.NewAuthenticatedForm("/"+member.ID.Hex(), admin, form)
	serve(handler, req)

	got, err := userstore.New(db).GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if got.Role != "teacher" {
		t.Errorf("role changed without manage_users: %q", got.Role)
	}
}

func TestUpdate_MemberOutsideRegionsIsHidden(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := testutil.TestContext()

	admin := testutil.CreateUserInRegions(t, db, "regional_admin", "nairobi")
	member := testutil.CreateUserInRegions(t, db, "teacher", "mombasa")

	form := url.Values{
		"first_name": {"Changed"},
		"last_name":  {member.LastName},
		"email":      {member.Email},
		"role":       {member.Role},
	}
	req := testutil.NewAuthenticatedForm("/"+member.ID.Hex(), admin, form)
	serve(handler, req)

	got, err := userstore.New(db).GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if got.FirstName == "Changed" {
		t.Error("member outside assigned regions was edited")
	}
}

func TestUpdatePermissions_KeepsOnlyKnownOverrides(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := testutil.TestContext()

	president := testutil.CreateUser(t, db, "president")
	member := testutil.CreateUserInRegions(t, db, "teacher", "nairobi")

	form := url.Values{"perm": {"view_finance", "not_a_permission"}}
	req := testutil.NewAuthenticatedForm("/"+member.ID.Hex()+"/permissions", president, form)
	rec := serve(handler, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	got, err := userstore.New(db).GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if len(got.Permissions) != 1 || got.Permissions[0] != "view_finance" {
		t.Errorf("unexpected overrides %v", got.Permissions)
	}
}

func TestDeactivate_DisablesAccount(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx := testutil.TestContext()

	president := testutil.CreateUser(t, db, "president")
	member := testutil.CreateUserInRegions(t, db, "teacher", "nairobi")

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+member.ID.Hex()+"/deactivate", president)
	rec := serve(handler, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	got, err := userstore.New(db).GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if got.Status != models.StatusDisabled {
		t.Errorf("expected disabled status, got %q", got.Status)
	}
}

func TestServeList_ForbiddenForTeachers(t *testing.T) {
	handler, db := newTestHandler(t)

	teacher := testutil.CreateUser(t, db, "teacher")
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", teacher)
	rec := serve(handler, req)

	if rec.Code == http.StatusSeeOther {
		t.Errorf("expected forbidden page, got redirect to %q", rec.Header().Get("Location"))
	}
}
