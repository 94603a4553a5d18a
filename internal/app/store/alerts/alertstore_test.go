package alertstore_test

import (
	"errors"
	"sort"
	"testing"

	alertstore "github.com/civickey/civickey/internal/app/store/alerts"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/civickey/civickey/internal/testutil"
)

func TestStore_Active(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alertstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.Alert{
		{Title: models.Localized{FR: "open"}, Type: models.AlertInfo, Active: true},
		{Title: models.Localized{FR: "window"}, Type: models.AlertWarning, Active: true, StartDate: "2026-03-01", EndDate: "2026-03-31"},
		{Title: models.Localized{FR: "future"}, Type: models.AlertInfo, Active: true, StartDate: "2026-04-01"},
		{Title: models.Localized{FR: "expired"}, Type: models.AlertInfo, Active: true, EndDate: "2026-03-09"},
		{Title: models.Localized{FR: "inactive"}, Type: models.AlertUrgent, Active: false},
	}
	for _, a := range seed {
		if _, err := store.Create(ctx, "saint-lazare", a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := store.Create(ctx, "hudson", models.Alert{Title: models.Localized{FR: "other"}, Type: models.AlertInfo, Active: true}); err != nil {
		t.Fatalf("Create hudson: %v", err)
	}

	got, err := store.Active(ctx, "saint-lazare", "2026-03-10")
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	var titles []string
	for _, a := range got {
		titles = append(titles, a.Title.FR)
	}
	sort.Strings(titles)
	if len(titles) != 2 || titles[0] != "open" || titles[1] != "window" {
		t.Errorf("Active = %v, want [open window]", titles)
	}
}

func TestStore_UpdateScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alertstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, "saint-lazare", models.Alert{Title: models.Localized{FR: "x"}, Type: models.AlertInfo, Active: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a.Active = false
	if _, err := store.Update(ctx, "hudson", a.ID, a); !errors.Is(err, alertstore.ErrNotFound) {
		t.Errorf("cross-tenant Update err = %v", err)
	}
	got, err := store.Update(ctx, "saint-lazare", a.ID, a)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Active || got.MunicipalityID != "saint-lazare" {
		t.Errorf("Update = %+v", got)
	}
}
