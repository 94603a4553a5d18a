package manage

import (
	"context"
	"io"
	"mime"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/csvutil"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ImportWasteItems adds waste items from a CSV upload, sent either as the
// request body (text/csv) or as the "file" field of a multipart form.
func (h *Handler) ImportWasteItems(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		f, _, err := r.FormFile("file")
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "upload needs a CSV in the \"file\" field")
			return
		}
		defer f.Close()
		src = f
	}

	items, err := csvutil.ParseWasteItems(src)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	if len(items) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "the file has no waste items")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	n, err := h.Content.ImportWasteItems(ctx, municipality(r), items)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("waste items uploaded", zap.String("municipality_id", municipality(r)), zap.Int("count", n), actor(r))
	httpjson.Write(w, http.StatusCreated, map[string]int{"imported": n})
}
