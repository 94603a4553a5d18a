package pushqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Sender hands a message to the push provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of pushing them.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Log.Info("push (log only)",
		zap.String("id", msg.ID),
		zap.String("municipality_id", msg.MunicipalityID),
		zap.String("title", msg.Title))
	return nil
}

// NewMux routes delivery tasks to sender.
func NewMux(sender Sender, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDeliver, func(ctx context.Context, t *asynq.Task) error {
		var msg Message
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			logger.Error("malformed push payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if msg.DeviceToken == "" {
			logger.Warn("push without device token dropped", zap.String("id", msg.ID))
			return nil
		}
		return sender.Send(ctx, msg)
	})
	return mux
}
