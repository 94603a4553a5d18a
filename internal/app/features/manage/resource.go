package manage

import (
	"context"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/authz"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// resource is a tenant-scoped collection managed through the standard
// list/get/create/update/delete routes. Writes take an In and every route
// returns Out. validate may be nil when the write path validates on its own.
type resource[In, Out any] struct {
	name     string
	feature  authz.Feature
	list     func(ctx context.Context, muni string) ([]Out, error)
	get      func(ctx context.Context, muni, id string) (Out, error)
	create   func(ctx context.Context, muni string, v In) (Out, error)
	update   func(ctx context.Context, muni, id string, v In) (Out, error)
	remove   func(ctx context.Context, muni, id string) error
	validate func(In) error
}

// mount registers the resource routes on r, each behind its permission.
func mount[In, Out any](h *Handler, r chi.Router, res resource[In, Out]) {
	can := func(a authz.Action) func(http.Handler) http.Handler {
		return h.can(res.feature, a)
	}
	r.With(can(authz.View)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		out, err := res.list(ctx, municipality(r))
		if err != nil {
			uierrors.Respond(w, r, h.Log, err)
			return
		}
		if out == nil {
			out = []Out{}
		}
		httpjson.OK(w, out)
	})
	r.With(can(authz.View)).Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		v, err := res.get(ctx, municipality(r), chi.URLParam(r, "id"))
		if err != nil {
			uierrors.Respond(w, r, h.Log, err)
			return
		}
		httpjson.OK(w, v)
	})
	r.With(can(authz.Create)).Post("/", func(w http.ResponseWriter, r *http.Request) {
		v, ok := decode(w, r, res.validate)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()
		created, err := res.create(ctx, municipality(r), v)
		if err != nil {
			uierrors.Respond(w, r, h.Log, err)
			return
		}
		h.Log.Info(res.name+" created", zap.String("municipality_id", municipality(r)), actor(r))
		httpjson.Write(w, http.StatusCreated, created)
	})
	r.With(can(authz.Edit)).Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		v, ok := decode(w, r, res.validate)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()
		id := chi.URLParam(r, "id")
		updated, err := res.update(ctx, municipality(r), id, v)
		if err != nil {
			uierrors.Respond(w, r, h.Log, err)
			return
		}
		h.Log.Info(res.name+" updated", zap.String("municipality_id", municipality(r)), zap.String("id", id), actor(r))
		httpjson.OK(w, updated)
	})
	r.With(can(authz.Delete)).Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()
		id := chi.URLParam(r, "id")
		if err := res.remove(ctx, municipality(r), id); err != nil {
			uierrors.Respond(w, r, h.Log, err)
			return
		}
		h.Log.Info(res.name+" deleted", zap.String("municipality_id", municipality(r)), zap.String("id", id), actor(r))
		w.WriteHeader(http.StatusNoContent)
	})
}

// decode reads the request body into a T and runs validate on it. It
// writes the error response itself and reports whether to continue.
func decode[T any](w http.ResponseWriter, r *http.Request, validate func(T) error) (T, bool) {
	var v T
	if err := httpjson.Decode(r, &v); err != nil {
		uierrors.BadRequest(w, err)
		return v, false
	}
	if validate != nil {
		if err := validate(v); err != nil {
			status, msg := uierrors.Status(err)
			httpjson.Error(w, status, msg)
			return v, false
		}
	}
	return v, true
}
