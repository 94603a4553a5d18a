package roadclosurestore_test

import (
	"testing"

	roadclosurestore "github.com/civickey/civickey/internal/app/store/roadclosures"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/civickey/civickey/internal/testutil"
)

func TestStore_ListCompletedFilterIsOptIn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := roadclosurestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.RoadClosure{
		{Location: "Montée Saint-Lazare", Severity: models.SeverityPartial, Status: models.ClosureActive, StartDate: "2026-03-02"},
		{Location: "Chemin Sainte-Angélique", Severity: models.SeverityDetour, Status: models.ClosureScheduled, StartDate: "2026-04-10"},
		{Location: "Rue Principale", Severity: models.SeverityFullClosure, Status: models.ClosureCompleted, StartDate: "2026-01-05"},
	}
	for _, rc := range seed {
		if _, err := store.Create(ctx, "saint-lazare", rc); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := store.List(ctx, "saint-lazare", true)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 || all[0].Status != models.ClosureCompleted {
		t.Errorf("all closures = %+v", all)
	}

	open, err := store.List(ctx, "saint-lazare", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open) != 2 || open[0].Location != "Montée Saint-Lazare" {
		t.Errorf("open closures = %+v", open)
	}
}
