package manage

import (
	"context"
	"errors"
	"net/http"

	"github.com/civickey/civickey/internal/app/content"
	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

// Schedule returns the collection schedule. A municipality without one
// gets an empty document to start from.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	muni := municipality(r)
	sch, err := h.Content.Schedule(ctx, muni)
	if errors.Is(err, content.ErrNotFound) {
		sch = models.Schedule{
			MunicipalityID:  muni,
			CollectionTypes: []models.CollectionType{},
			Schedules:       map[string]models.ZoneSchedule{},
		}
		err = nil
	}
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, sch)
}

// SaveSchedule replaces the collection schedule.
func (h *Handler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	sch, ok := decode[models.Schedule](w, r, nil)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	saved, err := h.Content.SaveSchedule(ctx, municipality(r), sch)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("schedule replaced", zap.String("municipality_id", municipality(r)), actor(r))
	httpjson.OK(w, saved)
}
