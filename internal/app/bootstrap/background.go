// internal/app/bootstrap/background.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/civickey/civickey/internal/app/system/pushqueue"
	"github.com/civickey/civickey/internal/app/system/workers"
	"go.uber.org/zap"
)

// Background tracks the long-running work started with the HTTP handler:
// the custom domain re-check, the push worker, and the rate limiter
// sweepers.
type Background struct {
	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	domainCheck *workers.DomainCheck
	push        *workers.PushWorker
	queue       *pushqueue.Queue
}

// start returns the context the sweepers run under. It is cancelled by
// Stop.
func (b *Background) start() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		b.ctx, b.cancel = context.WithCancel(context.Background())
	}
	return b.ctx
}

// Stop stops everything in reverse start order. It is safe to call more
// than once.
func (b *Background) Stop(logger *zap.Logger) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.push != nil {
		logger.Info("stopping push worker")
		b.push.Stop()
		b.push = nil
	}
	if b.queue != nil {
		if err := b.queue.Close(); err != nil {
			logger.Warn("push queue close failed", zap.Error(err))
		}
		b.queue = nil
	}
	if b.domainCheck != nil {
		b.domainCheck.Stop()
		b.domainCheck = nil
	}
	if b.cancel != nil {
		b.cancel()
		b.ctx, b.cancel = nil, nil
	}
}
