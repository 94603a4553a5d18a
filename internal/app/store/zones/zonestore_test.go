package zonestore_test

import (
	"errors"
	"testing"

	zonestore "github.com/civickey/civickey/internal/app/store/zones"
	"github.com/civickey/civickey/internal/app/system/indexes"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/civickey/civickey/internal/testutil"
	"go.uber.org/zap"
)

func TestStore_CreateListScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := zonestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i, id := range []string{"west", "east"} {
		if _, err := store.Create(ctx, "saint-lazare", models.Zone{ZoneID: id, SortOrder: i}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if _, err := store.Create(ctx, "hudson", models.Zone{ZoneID: "centre"}); err != nil {
		t.Fatalf("Create hudson: %v", err)
	}

	zones, err := store.List(ctx, "saint-lazare")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := models.ZoneIDs(zones); len(got) != 2 || got[0] != "west" || got[1] != "east" {
		t.Errorf("List = %v, want [west east]", got)
	}
	for _, z := range zones {
		if z.MunicipalityID != "saint-lazare" {
			t.Errorf("zone %s leaked from %s", z.ZoneID, z.MunicipalityID)
		}
	}

	if _, err := store.Get(ctx, "hudson", "east"); !errors.Is(err, zonestore.ErrNotFound) {
		t.Errorf("cross-tenant Get err = %v, want ErrNotFound", err)
	}
}

func TestStore_CreateDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := zonestore.New(db)

	if _, err := store.Create(ctx, "saint-lazare", models.Zone{ZoneID: "east"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "saint-lazare", models.Zone{ZoneID: "East"}); !errors.Is(err, zonestore.ErrDuplicate) {
		t.Errorf("duplicate Create err = %v, want ErrDuplicate", err)
	}
}

func TestStore_UpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := zonestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "saint-lazare", models.Zone{ZoneID: "east"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.Update(ctx, "saint-lazare", "east", models.Zone{
		Name:      models.Localized{EN: "East", FR: "Est"},
		SortOrder: 3,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name.FR != "Est" || updated.SortOrder != 3 {
		t.Errorf("Update = %+v", updated)
	}

	if _, err := store.Update(ctx, "hudson", "east", models.Zone{}); !errors.Is(err, zonestore.ErrNotFound) {
		t.Errorf("cross-tenant Update err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "hudson", "east"); !errors.Is(err, zonestore.ErrNotFound) {
		t.Errorf("cross-tenant Delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "saint-lazare", "east"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "saint-lazare", "east"); !errors.Is(err, zonestore.ErrNotFound) {
		t.Errorf("Get after Delete err = %v", err)
	}
}
