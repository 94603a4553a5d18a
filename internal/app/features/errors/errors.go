// Package errors maps domain errors to JSON error responses and serves the
// router's not-found and method-not-allowed replies.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/civickey/civickey/internal/app/content"
	adminstore "github.com/civickey/civickey/internal/app/store/admins"
	alertstore "github.com/civickey/civickey/internal/app/store/alerts"
	eventstore "github.com/civickey/civickey/internal/app/store/events"
	facilitystore "github.com/civickey/civickey/internal/app/store/facilities"
	identitystore "github.com/civickey/civickey/internal/app/store/identities"
	municipalitystore "github.com/civickey/civickey/internal/app/store/municipalities"
	pagestore "github.com/civickey/civickey/internal/app/store/pages"
	roadclosurestore "github.com/civickey/civickey/internal/app/store/roadclosures"
	schedulestore "github.com/civickey/civickey/internal/app/store/schedules"
	wasteitemstore "github.com/civickey/civickey/internal/app/store/wasteitems"
	zonestore "github.com/civickey/civickey/internal/app/store/zones"
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/authutil"
	"github.com/civickey/civickey/internal/app/system/domains"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/identity"
	"github.com/civickey/civickey/internal/app/system/validators"
	"go.uber.org/zap"
)

type mapping struct {
	err    error
	status int
}

// known lists the errors whose message is safe to show, most specific
// first. Wrapped content.ErrNotFound values match their store error.
var known = []mapping{
	{municipalitystore.ErrNotFound, http.StatusNotFound},
	{zonestore.ErrNotFound, http.StatusNotFound},
	{schedulestore.ErrNotFound, http.StatusNotFound},
	{eventstore.ErrNotFound, http.StatusNotFound},
	{alertstore.ErrNotFound, http.StatusNotFound},
	{facilitystore.ErrNotFound, http.StatusNotFound},
	{roadclosurestore.ErrNotFound, http.StatusNotFound},
	{pagestore.ErrNotFound, http.StatusNotFound},
	{wasteitemstore.ErrNotFound, http.StatusNotFound},
	{adminstore.ErrNotFound, http.StatusNotFound},
	{content.ErrNotFound, http.StatusNotFound},

	{zonestore.ErrDuplicate, http.StatusConflict},
	{pagestore.ErrDuplicateSlug, http.StatusConflict},
	{adminstore.ErrDuplicateEmail, http.StatusConflict},
	{identitystore.ErrDuplicateEmail, http.StatusConflict},
	{municipalitystore.ErrDuplicate, http.StatusConflict},
	{municipalitystore.ErrDomainInUse, http.StatusConflict},
	{content.ErrZoneInUse, http.StatusConflict},

	{content.ErrInvalidSlug, http.StatusBadRequest},
	{content.ErrReservedSlug, http.StatusBadRequest},
	{municipalitystore.ErrInvalidID, http.StatusBadRequest},
	{adminstore.ErrBadRole, http.StatusBadRequest},
	{adminstore.ErrBadEmail, http.StatusBadRequest},
	{adminstore.ErrMunicipalityNeeded, http.StatusBadRequest},
	{domains.ErrInvalidDomain, http.StatusBadRequest},
	{domains.ErrPlatformDomain, http.StatusBadRequest},
	{domains.ErrNotVerified, http.StatusUnprocessableEntity},
	{authutil.ErrPasswordTooShort, http.StatusBadRequest},
	{authutil.ErrPasswordTooLong, http.StatusBadRequest},
	{authutil.ErrPasswordCommon, http.StatusBadRequest},
	{identity.ErrInvalidResetCode, http.StatusBadRequest},

	{auth.ErrNotAuthorized, http.StatusForbidden},
	{auth.ErrUnknownMunicipality, http.StatusNotFound},
}

// Status returns the response status for err and the message to show.
// Unrecognized errors are 500 with a generic message.
func Status(err error) (int, string) {
	var probs validators.Problems
	if stderrors.As(err, &probs) {
		return http.StatusBadRequest, probs.Error()
	}
	for _, m := range known {
		if stderrors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// Respond writes err as a JSON error. Server errors are logged with the
// request path.
func Respond(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	httpjson.Error(w, status, msg)
}

// BadRequest writes a 400 for an undecodable request body.
func BadRequest(w http.ResponseWriter, err error) {
	httpjson.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// NotFound handles unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	httpjson.Error(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed handles known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	httpjson.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
