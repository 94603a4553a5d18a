package manage

import (
	"context"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type publishRequest struct {
	Published bool `json:"published"`
}

// SetPublished publishes or unpublishes a page without resubmitting it.
func (h *Handler) SetPublished(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[publishRequest](w, r, nil)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	id := chi.URLParam(r, "id")
	p, err := h.Pages.SetPublished(ctx, municipality(r), id, req.Published)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("page visibility changed",
		zap.String("municipality_id", municipality(r)),
		zap.String("slug", p.Slug),
		zap.Bool("published", p.Published),
		actor(r))
	httpjson.OK(w, p)
}
