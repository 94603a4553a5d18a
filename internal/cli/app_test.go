package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/civickey/civickey/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_RemindersPersistAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{
		API:          APIConfig{BaseURL: "http://localhost:8080"},
		Store:        StoreConfig{Path: filepath.Join(t.TempDir(), "civickey.db")},
		Municipality: "saint-lazare",
		Locale:       models.LocaleFR,
		Reminder:     ReminderConfig{Hour: 19},
	}
	sched := models.Schedule{
		CollectionTypes: []models.CollectionType{{ID: "garbage", Name: models.Localized{FR: "Ordures"}}},
		Schedules:       map[string]models.ZoneSchedule{"zone-a": {"garbage": {DayOfWeek: 2, Frequency: models.FrequencyWeekly}}},
	}

	app, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, app.Reminders("saint-lazare").Sync(ctx, sched, "zone-a", models.LocaleFR))
	require.NoError(t, app.Close())

	app, err = Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close() //nolint:errcheck

	triggers, err := app.Notifier.Triggers(ctx)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	require.NotNil(t, triggers[0].Weekly)
	assert.Equal(t, time.Monday, triggers[0].Weekly.Weekday)

	// Another municipality's scheduler does not see these reminders.
	keys, err := app.Reminders("hudson").Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, app.Reminders("saint-lazare").CancelAll(ctx))
	triggers, err = app.Notifier.Triggers(ctx)
	require.NoError(t, err)
	assert.Empty(t, triggers)
}

func TestOpen_BadBaseURL(t *testing.T) {
	cfg := &Config{API: APIConfig{BaseURL: "ftp://x"}, Store: StoreConfig{Path: filepath.Join(t.TempDir(), "x.db")}}
	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestApp_MunicipalityRequired(t *testing.T) {
	app := &App{Config: &Config{}}
	_, err := app.Municipality()
	assert.Error(t, err)
}
