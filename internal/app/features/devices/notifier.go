package devices

import (
	"context"
	"time"

	"github.com/civickey/civickey/internal/app/system/pushqueue"
	"github.com/civickey/civickey/internal/client/reminders"
)

// Queue is the push queue reminders are delivered through.
type Queue interface {
	EnqueueAt(ctx context.Context, at time.Time, msg pushqueue.Message) (string, error)
	RegisterWeekly(ctx context.Context, cronSpec string, msg pushqueue.Message) (string, error)
	Cancel(ctx context.Context, id string) error
}

// deviceNotifier schedules reminders for one device of one municipality.
type deviceNotifier struct {
	queue          Queue
	deviceToken    string
	municipalityID string
}

func (n deviceNotifier) message(note reminders.Notification) pushqueue.Message {
	return pushqueue.Message{
		DeviceToken:    n.deviceToken,
		MunicipalityID: n.municipalityID,
		Title:          note.Title,
		Body:           note.Body,
		Data:           note.Data,
	}
}

func (n deviceNotifier) ScheduleWeekly(ctx context.Context, w reminders.Weekly, note reminders.Notification) (string, error) {
	return n.queue.RegisterWeekly(ctx, w.Cron(), n.message(note))
}

func (n deviceNotifier) ScheduleOnce(ctx context.Context, at time.Time, note reminders.Notification) (string, error) {
	return n.queue.EnqueueAt(ctx, at, n.message(note))
}

func (n deviceNotifier) Cancel(ctx context.Context, id string) error {
	return n.queue.Cancel(ctx, id)
}
