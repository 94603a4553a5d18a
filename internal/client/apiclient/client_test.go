package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civickey/civickey/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://civickey.ca")
	assert.Error(t, err)
}

func TestFetchAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/m/saint-lazare/all", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.Snapshot{
			MunicipalityID: "saint-lazare",
			Zones:          []models.Zone{{ZoneID: "zone-a"}},
			DefaultZoneID:  "zone-a",
			Errors:         map[string]string{models.PartEvents: "timeout"},
		})
	})

	snap, err := c.FetchAll(context.Background(), "saint-lazare")
	require.NoError(t, err)
	assert.Equal(t, "zone-a", snap.DefaultZoneID)
	assert.False(t, snap.Complete())
	assert.Equal(t, "timeout", snap.Errors[models.PartEvents])
}

func TestSearchSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/m/saint-lazare/waste-items/search", r.URL.Path)
		assert.Equal(t, "pile électrique", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("[]"))
	})

	res, err := c.SearchWasteItems(context.Background(), "saint-lazare", "pile électrique")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})

	_, err := c.ZoneSchedule(context.Background(), "saint-lazare", "zone-z")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"database unavailable"}`))
	})

	_, err := c.WasteItems(context.Background(), "saint-lazare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503: database unavailable")
	assert.NotErrorIs(t, err, ErrNotFound)
}
