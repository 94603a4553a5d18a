package eventstore_test

import (
	"errors"
	"testing"

	eventstore "github.com/civickey/civickey/internal/app/store/events"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/civickey/civickey/internal/testutil"
)

func TestStore_Upcoming(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.Event{
		{Title: models.Localized{FR: "passé"}, Date: "2026-03-01"},
		{Title: models.Localized{FR: "festival"}, Date: "2026-03-08", EndDate: "2026-03-12"},
		{Title: models.Localized{FR: "conseil"}, Date: "2026-03-15"},
		{Title: models.Localized{FR: "marché"}, Date: "2026-03-11"},
	}
	for _, e := range seed {
		if _, err := store.Create(ctx, "saint-lazare", e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := store.Create(ctx, "hudson", models.Event{Title: models.Localized{FR: "ailleurs"}, Date: "2026-03-20"}); err != nil {
		t.Fatalf("Create hudson: %v", err)
	}

	got, err := store.Upcoming(ctx, "saint-lazare", "2026-03-10", 0)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	var titles []string
	for _, e := range got {
		titles = append(titles, e.Title.FR)
	}
	want := []string{"festival", "marché", "conseil"}
	if len(titles) != len(want) {
		t.Fatalf("Upcoming = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("Upcoming = %v, want %v", titles, want)
		}
	}

	limited, err := store.Upcoming(ctx, "saint-lazare", "2026-03-10", 1)
	if err != nil {
		t.Fatalf("Upcoming limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Title.FR != "festival" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestStore_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "saint-lazare", models.Event{Title: models.Localized{FR: "Fête"}, Date: "2026-06-24"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("Create did not stamp ID/timestamps: %+v", created)
	}

	created.Location = "Parc Bédard"
	updated, err := store.Update(ctx, "saint-lazare", created.ID, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Location != "Parc Bédard" || updated.CreatedAt.IsZero() {
		t.Errorf("Update = %+v", updated)
	}

	if _, err := store.Get(ctx, "hudson", created.ID); !errors.Is(err, eventstore.ErrNotFound) {
		t.Errorf("cross-tenant Get err = %v", err)
	}
	if err := store.Delete(ctx, "hudson", created.ID); !errors.Is(err, eventstore.ErrNotFound) {
		t.Errorf("cross-tenant Delete err = %v", err)
	}
	if err := store.Delete(ctx, "saint-lazare", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
