// Package devices lets resident devices register for collection reminders
// delivered by the server's push queue.
package devices

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/ratelimit"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/client/kv"
	"github.com/civickey/civickey/internal/client/reminders"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

// ScheduleSource is the content the reminders are computed from.
type ScheduleSource interface {
	Config(ctx context.Context, municipalityID string) (models.Municipality, error)
	Schedule(ctx context.Context, municipalityID string) (models.Schedule, error)
}

type Handler struct {
	Content  ScheduleSource
	Queue    Queue
	Registry kv.Store
	Limit    *ratelimit.Limiter
	Loc      *time.Location
	Now      func() time.Time
	Log      *zap.Logger
}

// NewHandler allows 20 registrations per client IP per hour. loc is the
// timezone reminder times are expressed in.
func NewHandler(src ScheduleSource, q Queue, registry kv.Store, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Content:  src,
		Queue:    q,
		Registry: registry,
		Limit:    ratelimit.New(20, time.Hour),
		Loc:      loc,
		Now:      time.Now,
		Log:      logger,
	}
}

type device struct {
	MunicipalityID string `json:"municipalityId"`
	DeviceToken    string `json:"deviceToken"`
}

type registerRequest struct {
	device
	ZoneID string `json:"zoneId"`
	Locale string `json:"locale"`
	Hour   *int   `json:"hour,omitempty"`
	Minute *int   `json:"minute,omitempty"`
}

type registration struct {
	Keys []string `json:"keys"`
}

func (d device) check() string {
	switch {
	case d.MunicipalityID == "":
		return "municipalityId is required"
	case strings.TrimSpace(d.DeviceToken) == "":
		return "deviceToken is required"
	}
	return ""
}

// KeyPrefix is the registry prefix holding one device's reminder keys. The
// token is hashed so no token's prefix can contain another's.
func KeyPrefix(municipalityID, deviceToken string) string {
	sum := sha256.Sum256([]byte(deviceToken))
	return "device:" + municipalityID + ":" + hex.EncodeToString(sum[:]) + ":"
}

func (h *Handler) scheduler(d device, opts ...reminders.Option) *reminders.Scheduler {
	n := deviceNotifier{queue: h.Queue, deviceToken: d.DeviceToken, municipalityID: d.MunicipalityID}
	opts = append([]reminders.Option{
		reminders.WithPrefix(KeyPrefix(d.MunicipalityID, d.DeviceToken)),
		reminders.WithClock(func() time.Time { return h.Now().In(h.Loc) }),
		reminders.WithLogger(h.Log),
	}, opts...)
	return reminders.NewScheduler(n, h.Registry, opts...)
}

// Register replaces the device's reminders with those of its zone.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	if msg := req.check(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	if req.Locale == "" {
		req.Locale = models.DefaultLocale
	}
	if !models.IsSupportedLocale(req.Locale) {
		httpjson.Error(w, http.StatusBadRequest, "locale must be fr or en")
		return
	}
	var opts []reminders.Option
	if req.Hour != nil || req.Minute != nil {
		hour, minute := reminders.DefaultHour, reminders.DefaultMinute
		if req.Hour != nil {
			hour = *req.Hour
		}
		if req.Minute != nil {
			minute = *req.Minute
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			httpjson.Error(w, http.StatusBadRequest, "hour must be 0-23 and minute 0-59")
			return
		}
		opts = append(opts, reminders.WithTime(hour, minute))
	}
	if !h.Limit.Allow(ratelimit.ClientIP(r)) {
		httpjson.Error(w, http.StatusTooManyRequests, "too many registrations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Content.Config(ctx, req.MunicipalityID); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	sch, err := h.Content.Schedule(ctx, req.MunicipalityID)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	if _, ok := sch.ForZone(req.ZoneID); !ok {
		httpjson.Error(w, http.StatusNotFound, "zone has no collection schedule")
		return
	}

	s := h.scheduler(req.device, opts...)
	if err := s.Sync(ctx, sch, req.ZoneID, req.Locale); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("device reminders registered",
		zap.String("municipality_id", req.MunicipalityID),
		zap.String("zone_id", req.ZoneID),
		zap.Int("reminders", len(keys)))
	httpjson.OK(w, registration{Keys: keys})
}

// Unregister cancels every reminder of the device.
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	var req device
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	if msg := req.check(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	if err := h.scheduler(req).CancelAll(ctx); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Disabled answers every route with 503 when push delivery is off.
func Disabled(w http.ResponseWriter, _ *http.Request) {
	httpjson.Error(w, http.StatusServiceUnavailable, "push delivery is disabled")
}
