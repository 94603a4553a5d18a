// Package apiclient calls the public CivicKey content API by municipality
// ID. It is the Fetcher behind the offline cache.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civickey/civickey/internal/app/content"
	"github.com/civickey/civickey/internal/app/system/search"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = eris.New("not found")

// StatusError is a non-2xx response other than 404.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL, e.g.
// "https://civickey.ca".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, eris.Wrapf(err, "parse base url %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, eris.Errorf("base url %q must be http or https", baseURL)
	}
	c := &Client{
		base: u.String(),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// FetchAll returns the aggregate snapshot of muni. Parts that failed on the
// server are listed in Snapshot.Errors.
func (c *Client) FetchAll(ctx context.Context, muni string) (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.get(ctx, muni, "/all", nil, &snap)
	return snap, err
}

// ZoneSchedule returns the schedule of one zone.
func (c *Client) ZoneSchedule(ctx context.Context, muni, zoneID string) (content.ZoneView, error) {
	var v content.ZoneView
	err := c.get(ctx, muni, "/schedule/zones/"+url.PathEscape(zoneID), nil, &v)
	return v, err
}

// WasteItems returns the waste-item catalog of muni.
func (c *Client) WasteItems(ctx context.Context, muni string) ([]models.WasteItem, error) {
	items := []models.WasteItem{}
	err := c.get(ctx, muni, "/waste-items", nil, &items)
	return items, err
}

// SearchWasteItems runs a server-side search.
func (c *Client) SearchWasteItems(ctx context.Context, muni, q string) ([]search.Result, error) {
	out := []search.Result{}
	err := c.get(ctx, muni, "/waste-items/search", url.Values{"q": {q}}, &out)
	return out, err
}

// Page returns a published page by slug.
func (c *Client) Page(ctx context.Context, muni, slug string) (models.CustomPage, error) {
	var p models.CustomPage
	err := c.get(ctx, muni, "/pages/"+url.PathEscape(slug), nil, &p)
	return p, err
}

func (c *Client) get(ctx context.Context, muni, path string, q url.Values, out any) error {
	u := c.base + "/api/v1/m/" + url.PathEscape(muni) + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "GET %s", u)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return eris.Wrapf(err, "GET %s", u)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "decode %s", u)
	}
	return nil
}

// checkStatus maps 404 to ErrNotFound and other non-2xx responses to a
// StatusError carrying the server's error message.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &body)
		return &StatusError{Status: resp.StatusCode, Message: body.Error}
	}
	return nil
}
