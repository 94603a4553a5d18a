package cli

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/civickey/civickey/internal/client/kv"
	"github.com/civickey/civickey/internal/client/reminders"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

const triggerPrefix = "trigger:"

// Trigger is a reminder scheduled on this device.
type Trigger struct {
	ID     string                 `json:"id"`
	Weekly *reminders.Weekly      `json:"weekly,omitempty"`
	At     *time.Time             `json:"at,omitempty"`
	Note   reminders.Notification `json:"notification"`
}

// When describes the trigger time for display.
func (t Trigger) When() string {
	switch {
	case t.Weekly != nil:
		return t.Weekly.Weekday.String() + "s at " + clock(t.Weekly.Hour, t.Weekly.Minute)
	case t.At != nil:
		return t.At.Format("Mon 2006-01-02 15:04")
	}
	return ""
}

func clock(h, m int) string {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("15:04")
}

// LocalNotifier keeps the device's scheduled reminders in the local store.
// It plays the role of the platform notification scheduler for the CLI.
type LocalNotifier struct {
	store kv.Store
}

func NewLocalNotifier(store kv.Store) *LocalNotifier {
	return &LocalNotifier{store: store}
}

func (n *LocalNotifier) ScheduleWeekly(ctx context.Context, w reminders.Weekly, note reminders.Notification) (string, error) {
	return n.save(ctx, Trigger{Weekly: &w, Note: note})
}

func (n *LocalNotifier) ScheduleOnce(ctx context.Context, at time.Time, note reminders.Notification) (string, error) {
	return n.save(ctx, Trigger{At: &at, Note: note})
}

func (n *LocalNotifier) Cancel(ctx context.Context, id string) error {
	return eris.Wrapf(n.store.Delete(ctx, triggerPrefix+id), "notifier: cancel %s", id)
}

func (n *LocalNotifier) save(ctx context.Context, t Trigger) (string, error) {
	t.ID = uuid.NewString()
	raw, err := json.Marshal(t)
	if err != nil {
		return "", eris.Wrap(err, "notifier: encode trigger")
	}
	if err := n.store.Set(ctx, triggerPrefix+t.ID, string(raw)); err != nil {
		return "", eris.Wrap(err, "notifier: store trigger")
	}
	return t.ID, nil
}

// Triggers lists the scheduled reminders, weekly ones first by weekday,
// then one-shots by time.
func (n *LocalNotifier) Triggers(ctx context.Context) ([]Trigger, error) {
	keys, err := n.store.Keys(ctx, triggerPrefix)
	if err != nil {
		return nil, eris.Wrap(err, "notifier: list triggers")
	}
	out := make([]Trigger, 0, len(keys))
	for _, k := range keys {
		raw, ok, err := n.store.Get(ctx, k)
		if err != nil {
			return nil, eris.Wrapf(err, "notifier: load %s", strings.TrimPrefix(k, triggerPrefix))
		}
		if !ok {
			continue
		}
		var t Trigger
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, eris.Wrapf(err, "notifier: decode %s", k)
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Weekly != nil && b.Weekly != nil:
			return a.Weekly.Weekday < b.Weekly.Weekday
		case a.Weekly != nil:
			return true
		case b.Weekly != nil:
			return false
		}
		return a.At.Before(*b.At)
	})
	return out, nil
}
