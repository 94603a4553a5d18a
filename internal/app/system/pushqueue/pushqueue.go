// Package pushqueue delivers collection reminders to devices through
// asynq. One-shot reminders are scheduled tasks; weekly reminders are
// periodic task registrations kept in a KV registry that the periodic task
// manager re-reads, so both kinds survive restarts.
package pushqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civickey/civickey/internal/client/kv"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeDeliver is the asynq task type of a reminder delivery.
const TypeDeliver = "push:deliver"

// DefaultQueue is the asynq queue reminders run on.
const DefaultQueue = "reminders"

const (
	oncePrefix   = "once:"
	weeklyPrefix = "weekly:"
)

// ErrBadID is returned by Cancel for IDs it did not issue.
var ErrBadID = errors.New("unknown reminder id")

// Message is one push notification for one device.
type Message struct {
	ID             string            `json:"id"`
	DeviceToken    string            `json:"deviceToken"`
	MunicipalityID string            `json:"municipalityId"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data,omitempty"`
}

type weeklyEntry struct {
	Cron    string  `json:"cron"`
	Message Message `json:"message"`
}

// Queue schedules reminder deliveries.
type Queue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	registry  kv.Store
	queue     string
	log       *zap.Logger
}

// New creates a queue on redisOpt. registry holds weekly registrations.
func New(redisOpt asynq.RedisConnOpt, registry kv.Store, logger *zap.Logger) *Queue {
	return &Queue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		registry:  registry,
		queue:     DefaultQueue,
		log:       logger,
	}
}

func (q *Queue) Close() error {
	err := q.client.Close()
	if ierr := q.inspector.Close(); err == nil {
		err = ierr
	}
	return err
}

// EnqueueAt schedules msg for delivery at at and returns the reminder ID.
func (q *Queue) EnqueueAt(ctx context.Context, at time.Time, msg Message) (string, error) {
	taskID := uuid.NewString()
	msg.ID = oncePrefix + taskID
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	_, err = q.client.EnqueueContext(ctx, asynq.NewTask(TypeDeliver, payload),
		asynq.ProcessAt(at),
		asynq.TaskID(taskID),
		asynq.Queue(q.queue),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeDeliver, err)
	}
	return msg.ID, nil
}

// RegisterWeekly registers msg for delivery on every match of cronSpec
// and returns the reminder ID.
func (q *Queue) RegisterWeekly(ctx context.Context, cronSpec string, msg Message) (string, error) {
	id := weeklyPrefix + uuid.NewString()
	msg.ID = id
	raw, err := json.Marshal(weeklyEntry{Cron: cronSpec, Message: msg})
	if err != nil {
		return "", fmt.Errorf("marshal weekly entry: %w", err)
	}
	if err := q.registry.Set(ctx, id, string(raw)); err != nil {
		return "", fmt.Errorf("store weekly entry: %w", err)
	}
	return id, nil
}

// Cancel removes a reminder. Reminders that already ran or were already
// cancelled are not an error.
func (q *Queue) Cancel(ctx context.Context, id string) error {
	switch {
	case strings.HasPrefix(id, weeklyPrefix):
		return q.registry.Delete(ctx, id)
	case strings.HasPrefix(id, oncePrefix):
		err := q.inspector.DeleteTask(q.queue, strings.TrimPrefix(id, oncePrefix))
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil
		}
		return err
	default:
		return ErrBadID
	}
}

// GetConfigs lists the weekly registrations. It makes Queue an
// asynq.PeriodicTaskConfigProvider.
func (q *Queue) GetConfigs() ([]*asynq.PeriodicTaskConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	keys, err := q.registry.Keys(ctx, weeklyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list weekly entries: %w", err)
	}
	configs := make([]*asynq.PeriodicTaskConfig, 0, len(keys))
	for _, k := range keys {
		raw, ok, err := q.registry.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("load weekly entry %s: %w", k, err)
		}
		if !ok {
			continue
		}
		var e weeklyEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			q.log.Warn("skipping malformed weekly entry", zap.String("id", k), zap.Error(err))
			continue
		}
		payload, err := json.Marshal(e.Message)
		if err != nil {
			return nil, err
		}
		configs = append(configs, &asynq.PeriodicTaskConfig{
			Cronspec: e.Cron,
			Task:     asynq.NewTask(TypeDeliver, payload),
			Opts:     []asynq.Option{asynq.Queue(q.queue), asynq.MaxRetry(1)},
		})
	}
	return configs, nil
}
