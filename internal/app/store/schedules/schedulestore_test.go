package schedulestore_test

import (
	"errors"
	"testing"

	schedulestore "github.com/civickey/civickey/internal/app/store/schedules"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/civickey/civickey/internal/testutil"
)

func TestStore_PutGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schedulestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "saint-lazare"); !errors.Is(err, schedulestore.ErrNotFound) {
		t.Fatalf("Get before Put err = %v, want ErrNotFound", err)
	}

	sch := models.Schedule{
		CollectionTypes: []models.CollectionType{{ID: "recycling", Name: models.Localized{EN: "Recycling", FR: "Recyclage"}}},
		Schedules: map[string]models.ZoneSchedule{
			"east": {"recycling": {DayOfWeek: 2, Frequency: models.FrequencyWeekly}},
		},
	}
	if _, err := store.Put(ctx, "saint-lazare", sch); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Second Put replaces rather than inserting another document.
	sch.Schedules["east"]["recycling"] = models.ZoneCollection{DayOfWeek: 3, Frequency: models.FrequencyBiweekly}
	if _, err := store.Put(ctx, "saint-lazare", sch); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	n, err := db.Collection(schedulestore.Collection).CountDocuments(ctx, map[string]any{"municipality_id": "saint-lazare"})
	if err != nil || n != 1 {
		t.Fatalf("schedule documents = %d (%v), want 1", n, err)
	}

	got, err := store.Get(ctx, "saint-lazare")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rule := got.Schedules["east"]["recycling"]; rule.DayOfWeek != 3 || rule.Frequency != models.FrequencyBiweekly {
		t.Errorf("rule = %+v", rule)
	}

	if _, err := store.Get(ctx, "hudson"); !errors.Is(err, schedulestore.ErrNotFound) {
		t.Errorf("other tenant err = %v, want ErrNotFound", err)
	}
}
