// Package reminders schedules collection reminders: a weekly trigger per
// collection type of the user's zone and a one-shot trigger per upcoming
// special collection. Delivery is done by a Notifier.
package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civickey/civickey/internal/client/kv"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Notification is what the user sees.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notifier schedules and cancels platform notifications. IDs are opaque
// to the scheduler.
type Notifier interface {
	ScheduleWeekly(ctx context.Context, w Weekly, n Notification) (string, error)
	ScheduleOnce(ctx context.Context, at time.Time, n Notification) (string, error)
	Cancel(ctx context.Context, id string) error
}

// Keys of the logical reminders.
func CollectionKey(typeID string) string { return "collection:" + typeID }
func SpecialKey(id string) string        { return "special:" + id }

// Scheduler keeps at most one outstanding trigger per logical key. Trigger
// IDs are persisted in the KV store under the scheduler's prefix so they
// can be cancelled after a restart.
type Scheduler struct {
	notifier Notifier
	store    kv.Store
	prefix   string
	hour     int
	minute   int
	now      func() time.Time
	log      *zap.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTime sets the preferred reminder time.
func WithTime(hour, minute int) Option {
	return func(s *Scheduler) { s.hour, s.minute = hour, minute }
}

// WithPrefix namespaces the stored trigger IDs, e.g. per device.
func WithPrefix(prefix string) Option {
	return func(s *Scheduler) { s.prefix = prefix }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func NewScheduler(n Notifier, store kv.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier: n,
		store:    store,
		prefix:   "reminder:",
		hour:     DefaultHour,
		minute:   DefaultMinute,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ScheduleCollection replaces the weekly reminder for a collection type.
func (s *Scheduler) ScheduleCollection(ctx context.Context, ct models.CollectionType, rule models.ZoneCollection, locale string) (string, error) {
	key := CollectionKey(ct.ID)
	if err := s.Cancel(ctx, key); err != nil {
		return "", err
	}
	w := ComputeWeekly(rule.DayOfWeek, s.hour, s.minute)
	n := collectionNotification(ct, locale)
	n.Data = map[string]string{"key": key, "collectionTypeId": ct.ID}
	id, err := s.notifier.ScheduleWeekly(ctx, w, n)
	if err != nil {
		return "", eris.Wrapf(err, "reminders: schedule %s", key)
	}
	return id, s.remember(ctx, key, id)
}

// ScheduleSpecial replaces the one-shot reminder of a special collection.
// It returns "" without scheduling when the reminder time has passed.
func (s *Scheduler) ScheduleSpecial(ctx context.Context, sc models.SpecialCollection, locale string) (string, error) {
	key := SpecialKey(sc.ID)
	if err := s.Cancel(ctx, key); err != nil {
		return "", err
	}
	at, err := ComputeOnce(sc.Date, s.hour, s.minute, s.now())
	if err != nil {
		return "", err
	}
	if at == nil {
		s.log.Debug("special collection reminder in the past", zap.String("key", key))
		return "", nil
	}
	n := specialNotification(sc, locale)
	n.Data = map[string]string{"key": key, "specialCollectionId": sc.ID}
	id, err := s.notifier.ScheduleOnce(ctx, *at, n)
	if err != nil {
		return "", eris.Wrapf(err, "reminders: schedule %s", key)
	}
	return id, s.remember(ctx, key, id)
}

// Cancel cancels the stored trigger of key, if any, and forgets it.
func (s *Scheduler) Cancel(ctx context.Context, key string) error {
	id, ok, err := s.store.Get(ctx, s.prefix+key)
	if err != nil {
		return eris.Wrapf(err, "reminders: load trigger %s", key)
	}
	if !ok {
		return nil
	}
	if err := s.notifier.Cancel(ctx, id); err != nil {
		return eris.Wrapf(err, "reminders: cancel %s", key)
	}
	return eris.Wrapf(s.store.Delete(ctx, s.prefix+key), "reminders: forget %s", key)
}

// CancelAll cancels every stored trigger.
func (s *Scheduler) CancelAll(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Cancel(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the logical keys that have a stored trigger.
func (s *Scheduler) Keys(ctx context.Context) ([]string, error) {
	stored, err := s.store.Keys(ctx, s.prefix)
	if err != nil {
		return nil, eris.Wrap(err, "reminders: list triggers")
	}
	out := make([]string, 0, len(stored))
	for _, k := range stored {
		out = append(out, strings.TrimPrefix(k, s.prefix))
	}
	return out, nil
}

// Sync replaces every reminder with those of zoneID in sched: one weekly
// reminder per collection type of the zone and one per active special
// collection covering the zone.
func (s *Scheduler) Sync(ctx context.Context, sched models.Schedule, zoneID, locale string) error {
	if err := s.CancelAll(ctx); err != nil {
		return err
	}
	rules, ok := sched.ForZone(zoneID)
	if !ok {
		return eris.Errorf("reminders: zone %q has no schedule", zoneID)
	}
	for _, ct := range sched.CollectionTypes {
		rule, ok := rules[ct.ID]
		if !ok {
			continue
		}
		if _, err := s.ScheduleCollection(ctx, ct, rule, locale); err != nil {
			return err
		}
	}
	for _, sc := range sched.SpecialCollectionsFor(zoneID) {
		if _, err := s.ScheduleSpecial(ctx, sc, locale); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) remember(ctx context.Context, key, id string) error {
	return eris.Wrapf(s.store.Set(ctx, s.prefix+key, id), "reminders: store trigger %s", key)
}

func collectionNotification(ct models.CollectionType, locale string) Notification {
	name, bin := ct.Name.In(locale), ct.BinName.In(locale)
	if locale == models.LocaleEN {
		return Notification{
			Title: fmt.Sprintf("%s collection tomorrow", name),
			Body:  fmt.Sprintf("Remember to put out your %s tonight.", bin),
		}
	}
	return Notification{
		Title: fmt.Sprintf("Collecte demain : %s", name),
		Body:  fmt.Sprintf("N'oubliez pas de sortir votre %s ce soir.", bin),
	}
}

func specialNotification(sc models.SpecialCollection, locale string) Notification {
	name := sc.Name.In(locale)
	if locale == models.LocaleEN {
		return Notification{Title: "Special collection tomorrow", Body: name}
	}
	return Notification{Title: "Collecte spéciale demain", Body: name}
}
