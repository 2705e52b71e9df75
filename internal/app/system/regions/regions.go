// internal/app/system/regions/regions.go
package regions

import (
	"context"
	"sort"

	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Manager maintains admins' region assignments. The same district may be
// assigned to any number of admins; there is no exclusivity.
type Manager struct {
	users *userstore.Store
	audit *auditlog.Logger
}

func NewManager(users *userstore.Store, audit *auditlog.Logger) *Manager {
	return &Manager{users: users, audit: audit}
}

// Assign merges the given regions into the admin's existing list as a set
// union. Duplicates collapse; existing assignments survive. Returns the
// resulting list, sorted.
func (m *Manager) Assign(ctx context.Context, adminID primitive.ObjectID, regions []string, actor auditlog.Actor) ([]string, error) {
	admin, err := m.users.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(admin.AssignedRegions)+len(regions))
	for _, r := range admin.AssignedRegions {
		seen[r] = struct{}{}
	}
	for _, r := range regions {
		if r = normalize.Region(r); r != "" {
			seen[r] = struct{}{}
		}
	}

	merged := make([]string, 0, len(seen))
	for r := range seen {
		merged = append(merged, r)
	}
	sort.Strings(merged)

	if err := m.users.SetAssignedRegions(ctx, adminID, merged); err != nil {
		return nil, err
	}

	m.audit.Record(actor, "regions.assign", adminID.Hex(), bson.M{
		"added":  regions,
		"result": merged,
	})
	return merged, nil
}

// Unassign removes one region from the admin's list. Removing a region the
// admin does not hold is a no-op that still succeeds.
func (m *Manager) Unassign(ctx context.Context, adminID primitive.ObjectID, region string, actor auditlog.Actor) ([]string, error) {
	admin, err := m.users.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	region = normalize.Region(region)
	remaining := make([]string, 0, len(admin.AssignedRegions))
	for _, r := range admin.AssignedRegions {
		if r != region {
			remaining = append(remaining, r)
		}
	}

	if err := m.users.SetAssignedRegions(ctx, adminID, remaining); err != nil {
		return nil, err
	}

	m.audit.Record(actor, "regions.unassign", adminID.Hex(), bson.M{
		"removed": region,
		"result":  remaining,
	})
	return remaining, nil
}
