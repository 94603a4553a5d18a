package cli

import (
	"context"

	"github.com/civickey/civickey/internal/app/system/idle"
	"github.com/civickey/civickey/internal/client/apiclient"
	"github.com/civickey/civickey/internal/client/kv"
	"github.com/civickey/civickey/internal/client/offlinecache"
	"github.com/civickey/civickey/internal/client/reminders"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// App is the wired client: one SQLite store backing the offline cache and
// the reminder registry.
type App struct {
	Config   *Config
	API      *apiclient.Client
	Store    *kv.SQLite
	Cache    *offlinecache.Cache
	Syncer   *offlinecache.Syncer
	Notifier *LocalNotifier
	Log      *zap.Logger
}

// Open opens the local store, migrating it if needed, and wires the
// client against cfg.API.
func Open(ctx context.Context, cfg *Config, logger *zap.Logger) (*App, error) {
	api, err := apiclient.New(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	store, err := kv.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "open store %s", cfg.Store.Path)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	cache := offlinecache.New(store, offlinecache.WithLogger(logger))
	syncer := offlinecache.NewSyncer(cache, api, logger)
	if cfg.Municipality != "" {
		syncer.SetCurrent(cfg.Municipality)
	}
	return &App{
		Config:   cfg,
		API:      api,
		Store:    store,
		Cache:    cache,
		Syncer:   syncer,
		Notifier: NewLocalNotifier(store),
		Log:      logger,
	}, nil
}

// Municipality returns the configured municipality or an error naming the
// flag to set.
func (a *App) Municipality() (string, error) {
	if a.Config.Municipality == "" {
		return "", eris.New("no municipality: pass --municipality or set CIVICKEYCTL_MUNICIPALITY")
	}
	return a.Config.Municipality, nil
}

// Reminders returns the scheduler for the configured municipality.
func (a *App) Reminders(muni string) *reminders.Scheduler {
	return reminders.NewScheduler(a.Notifier, a.Store,
		reminders.WithPrefix("reminder:"+muni+":"),
		reminders.WithTime(a.Config.Reminder.Hour, a.Config.Reminder.Minute),
		reminders.WithLogger(a.Log))
}

// AdminShell returns a back-office shell with its own session that signs
// out after Config.Admin.IdleTimeout without commands.
func (a *App) AdminShell(opts ...idle.Option) *AdminShell {
	if d := a.Config.Admin.IdleTimeout; d > 0 {
		opts = append([]idle.Option{idle.WithThreshold(d)}, opts...)
	}
	return NewAdminShell(a.API.AdminSession(), a.Log, opts...)
}

// Close waits for background revalidation and closes the store.
func (a *App) Close() error {
	a.Syncer.Wait()
	return a.Store.Close()
}
