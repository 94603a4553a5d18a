// internal/app/system/workers/domaincheck.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

// MunicipalityLister lists active municipalities.
type MunicipalityLister interface {
	List(ctx context.Context, includeInactive bool) ([]models.Municipality, error)
}

// DomainVerifier checks that a custom domain still points at the platform.
type DomainVerifier interface {
	Verify(ctx context.Context, host string) error
}

// DomainCheck is a background worker that re-verifies custom domains and
// logs those whose DNS no longer points at the platform.
type DomainCheck struct {
	munis    MunicipalityLister
	verifier DomainVerifier
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewDomainCheck creates the worker. interval is how often every domain is
// checked (e.g., 1 hour).
func NewDomainCheck(munis MunicipalityLister, verifier DomainVerifier, logger *zap.Logger, interval time.Duration) *DomainCheck {
	return &DomainCheck{
		munis:    munis,
		verifier: verifier,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *DomainCheck) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("domain check worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *DomainCheck) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("domain check worker stopped")
}

func (w *DomainCheck) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.CheckOnce()
		}
	}
}

// CheckOnce verifies every custom domain and returns the hosts that
// failed.
func (w *DomainCheck) CheckOnce() []string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	munis, err := w.munis.List(ctx, false)
	if err != nil {
		w.log.Error("domain check: list municipalities failed", zap.Error(err))
		return nil
	}

	var failed []string
	for _, m := range munis {
		host := m.Website.CustomDomain
		if host == "" {
			continue
		}
		if err := w.verifier.Verify(ctx, host); err != nil {
			failed = append(failed, host)
			w.log.Warn("custom domain no longer verified",
				zap.String("municipality_id", m.ID),
				zap.String("host", host),
				zap.Error(err))
		}
	}
	return failed
}
