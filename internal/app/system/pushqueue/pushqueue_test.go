package pushqueue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/civickey/civickey/internal/client/kv"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func newTestQueue(t *testing.T) (*Queue, *kv.Memory) {
	t.Helper()
	reg := kv.NewMemory()
	// The client only dials Redis when used; these tests never enqueue.
	q := New(asynq.RedisClientOpt{Addr: "127.0.0.1:0"}, reg, zap.NewNop())
	t.Cleanup(func() { _ = q.Close() })
	return q, reg
}

func TestRegisterWeekly_ListedAsPeriodicConfig(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	id, err := q.RegisterWeekly(ctx, "0 19 * * 1", Message{DeviceToken: "tok-1", Title: "Collecte demain : Ordures"})
	if err != nil {
		t.Fatalf("RegisterWeekly: %v", err)
	}
	if !strings.HasPrefix(id, "weekly:") {
		t.Errorf("id = %q", id)
	}

	configs, err := q.GetConfigs()
	if err != nil {
		t.Fatalf("GetConfigs: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("configs = %d, want 1", len(configs))
	}
	if configs[0].Cronspec != "0 19 * * 1" || configs[0].Task.Type() != TypeDeliver {
		t.Errorf("config = %+v", configs[0])
	}
	var msg Message
	if err := json.Unmarshal(configs[0].Task.Payload(), &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if msg.ID != id || msg.DeviceToken != "tok-1" {
		t.Errorf("message = %+v", msg)
	}

	if err := q.Cancel(ctx, id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	configs, _ = q.GetConfigs()
	if len(configs) != 0 {
		t.Errorf("configs after cancel = %d", len(configs))
	}
}

func TestGetConfigs_SkipsMalformed(t *testing.T) {
	q, reg := newTestQueue(t)
	_ = reg.Set(context.Background(), "weekly:broken", "{")

	configs, err := q.GetConfigs()
	if err != nil || len(configs) != 0 {
		t.Errorf("GetConfigs = %d, %v", len(configs), err)
	}
}

func TestCancel_UnknownID(t *testing.T) {
	q, _ := newTestQueue(t)
	if err := q.Cancel(context.Background(), "abc"); !errors.Is(err, ErrBadID) {
		t.Errorf("err = %v, want ErrBadID", err)
	}
}

type captureSender struct{ got []Message }

func (c *captureSender) Send(_ context.Context, m Message) error {
	c.got = append(c.got, m)
	return nil
}

func TestMux_DeliversDecodedMessage(t *testing.T) {
	sender := &captureSender{}
	mux := NewMux(sender, zap.NewNop())
	payload, _ := json.Marshal(Message{ID: "once:1", DeviceToken: "tok", Title: "t"})

	if err := mux.ProcessTask(context.Background(), asynq.NewTask(TypeDeliver, payload)); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(sender.got) != 1 || sender.got[0].DeviceToken != "tok" {
		t.Errorf("sent = %+v", sender.got)
	}

	err := mux.ProcessTask(context.Background(), asynq.NewTask(TypeDeliver, []byte("nope")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("malformed err = %v, want SkipRetry", err)
	}

	noToken, _ := json.Marshal(Message{ID: "once:2"})
	if err := mux.ProcessTask(context.Background(), asynq.NewTask(TypeDeliver, noToken)); err != nil {
		t.Errorf("tokenless message err = %v", err)
	}
	if len(sender.got) != 1 {
		t.Errorf("tokenless message was sent")
	}
}
