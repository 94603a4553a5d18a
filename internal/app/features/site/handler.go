// Package site serves the public website of a municipality as localized
// view models: every bilingual field is projected to the locale in the URL
// and page bodies are returned as sanitized HTML.
package site

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/civickey/civickey/internal/app/content"
	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/htmlsanitize"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/locale"
	"github.com/civickey/civickey/internal/app/system/tenant"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/app/system/validators"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// homeEventCount is how many upcoming events the home page lists.
const homeEventCount = 5

type Handler struct {
	Content      *content.Service
	LocaleCookie string
	Log          *zap.Logger
}

func NewHandler(svc *content.Service, localeCookie string, logger *zap.Logger) *Handler {
	if localeCookie == "" {
		localeCookie = locale.DefaultCookieName
	}
	return &Handler{Content: svc, LocaleCookie: localeCookie, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| View models                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type navLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type siteVM struct {
	Locale  string             `json:"locale"`
	Name    string             `json:"name"`
	Colors  models.BrandColors `json:"colors"`
	Contact models.ContactInfo `json:"contact"`
	Nav     []navLink          `json:"nav"`
}

type alertVM struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    models.AlertType `json:"type"`
}

type eventVM struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description template.HTML `json:"description"`
	Date        string        `json:"date"`
	EndDate     string        `json:"endDate,omitempty"`
	Time        string        `json:"time,omitempty"`
	Location    string        `json:"location,omitempty"`
}

type homeVM struct {
	Site   siteVM    `json:"site"`
	Alerts []alertVM `json:"alerts"`
	Events []eventVM `json:"events"`
}

type collectionVM struct {
	TypeID    string           `json:"typeId"`
	Name      string           `json:"name"`
	Color     string           `json:"color"`
	Weekday   string           `json:"weekday"`
	Frequency models.Frequency `json:"frequency"`
}

type specialVM struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

type zoneVM struct {
	ZoneID      string         `json:"zoneId"`
	Name        string         `json:"name"`
	Collections []collectionVM `json:"collections"`
	Specials    []specialVM    `json:"specials"`
	Guidelines  template.HTML  `json:"guidelines"`
}

type zoneLink struct {
	ZoneID string `json:"zoneId"`
	Name   string `json:"name"`
}

type facilityVM struct {
	Name        string            `json:"name"`
	Description template.HTML     `json:"description"`
	Address     string            `json:"address,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Email       string            `json:"email,omitempty"`
	Hours       []models.DayHours `json:"hours,omitempty"`
}

type pageVM struct {
	Slug  string          `json:"slug"`
	Type  models.PageType `json:"type"`
	Title string          `json:"title"`
	HTML  template.HTML   `json:"html,omitempty"`
	Data  any             `json:"data,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| Handlers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// RedirectRoot sends "/" to the home page in the request locale.
func (h *Handler) RedirectRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+locale.FromRequest(r, h.LocaleCookie)+"/", http.StatusTemporaryRedirect)
}

// WithLocale validates the {locale} segment, stores it in the context and
// remembers it in the locale cookie.
func (h *Handler) WithLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := chi.URLParam(r, "locale")
		if !models.IsSupportedLocale(loc) {
			uierrors.NotFound(w, r)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     h.LocaleCookie,
			Value:    loc,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
		next.ServeHTTP(w, r.WithContext(locale.WithLocale(r.Context(), loc)))
	})
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni, loc string) (any, error) {
		site, err := h.site(ctx, muni, loc)
		if err != nil {
			return nil, err
		}
		alerts, err := h.Content.ActiveAlerts(ctx, muni)
		if err != nil {
			return nil, err
		}
		events, err := h.Content.UpcomingEvents(ctx, muni, homeEventCount)
		if err != nil {
			return nil, err
		}
		return homeVM{Site: site, Alerts: localizeAlerts(alerts, loc), Events: localizeEvents(events, loc)}, nil
	})
}

// Collections lists the zones to pick a schedule from.
func (h *Handler) Collections(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni, loc string) (any, error) {
		zones, err := h.Content.Zones(ctx, muni)
		if err != nil {
			return nil, err
		}
		out := make([]zoneLink, 0, len(zones))
		for _, z := range zones {
			out = append(out, zoneLink{ZoneID: z.ZoneID, Name: z.Name.In(loc)})
		}
		return out, nil
	})
}

func (h *Handler) Zone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	h.serve(w, r, func(ctx context.Context, muni, loc string) (any, error) {
		view, err := h.Content.ZoneSchedule(ctx, muni, zoneID)
		if err != nil {
			return nil, err
		}
		return localizeZone(view, loc), nil
	})
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni, loc string) (any, error) {
		events, err := h.Content.UpcomingEvents(ctx, muni, 0)
		if err != nil {
			return nil, err
		}
		return localizeEvents(events, loc), nil
	})
}

// News lists the active alerts.
func (h *Handler) News(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni, loc string) (any, error) {
		alerts, err := h.Content.ActiveAlerts(ctx, muni)
		if err != nil {
			return nil, err
		}
		return localizeAlerts(alerts, loc), nil
	})
}

func (h *Handler) Facilities(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni, loc string) (any, error) {
		list, err := h.Content.Facilities(ctx, muni)
		if err != nil {
			return nil, err
		}
		out := make([]facilityVM, 0, len(list))
		for _, f := range list {
			out = append(out, facilityVM{
				Name:        f.Name.In(loc),
				Description: htmlsanitize.PrepareForDisplay(f.Description.In(loc)),
				Address:     f.Address,
				Phone:       f.Phone,
				Email:       f.Email,
				Hours:       f.Hours,
			})
		}
		return out, nil
	})
}

// Page serves a published custom page.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	h.serve(w, r, func(ctx context.Context, muni, loc string) (any, error) {
		p, err := h.Content.PageBySlug(ctx, muni, slug)
		if err != nil {
			return nil, err
		}
		return localizePage(p, loc)
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, muni, loc string) (any, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := load(ctx, tenant.IDFromRequest(r), locale.FromContext(r.Context()))
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, v)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Projection                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) site(ctx context.Context, muni, loc string) (siteVM, error) {
	m, err := h.Content.Config(ctx, muni)
	if err != nil {
		return siteVM{}, err
	}
	pages, err := h.Content.PublishedPages(ctx, muni)
	if err != nil {
		return siteVM{}, err
	}
	nav := make([]navLink, 0, len(pages))
	for _, p := range pages {
		nav = append(nav, navLink{Slug: p.Slug, Title: p.Title.In(loc)})
	}
	return siteVM{
		Locale:  loc,
		Name:    m.Name.In(loc),
		Colors:  m.Colors,
		Contact: m.Contact,
		Nav:     nav,
	}, nil
}

func localizeAlerts(alerts []models.Alert, loc string) []alertVM {
	out := make([]alertVM, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertVM{Title: a.Title.In(loc), Message: a.Message.In(loc), Type: a.Type})
	}
	return out
}

func localizeEvents(events []models.Event, loc string) []eventVM {
	out := make([]eventVM, 0, len(events))
	for _, e := range events {
		out = append(out, eventVM{
			ID:          e.ID,
			Title:       e.Title.In(loc),
			Description: htmlsanitize.PrepareForDisplay(e.Description.In(loc)),
			Date:        e.Date,
			EndDate:     e.EndDate,
			Time:        e.Time,
			Location:    e.Location,
		})
	}
	return out
}

var weekdays = map[string][7]string{
	models.LocaleFR: {"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
	models.LocaleEN: {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

func weekdayName(day int, loc string) string {
	names, ok := weekdays[loc]
	if !ok {
		names = weekdays[models.DefaultLocale]
	}
	if day < 0 || day > 6 {
		return ""
	}
	return names[day]
}

// localizeZone lists the zone's collections in catalog order.
func localizeZone(v content.ZoneView, loc string) zoneVM {
	out := zoneVM{
		ZoneID:      v.Zone.ZoneID,
		Name:        v.Zone.Name.In(loc),
		Collections: []collectionVM{},
		Specials:    []specialVM{},
		Guidelines:  htmlsanitize.PrepareForDisplay(v.Guidelines.In(loc)),
	}
	for _, ct := range v.CollectionTypes {
		rule, ok := v.Collections[ct.ID]
		if !ok {
			continue
		}
		out.Collections = append(out.Collections, collectionVM{
			TypeID:    ct.ID,
			Name:      ct.Name.In(loc),
			Color:     ct.Color,
			Weekday:   weekdayName(rule.DayOfWeek, loc),
			Frequency: rule.Frequency,
		})
	}
	for _, sc := range v.SpecialCollections {
		if !sc.Active {
			continue
		}
		out.Specials = append(out.Specials, specialVM{Name: sc.Name.In(loc), Date: sc.Date})
	}
	return out
}

// localizePage renders text pages to HTML. Other page types keep their
// structured content with every bilingual field projected.
func localizePage(p models.CustomPage, loc string) (pageVM, error) {
	vm := pageVM{Slug: p.Slug, Type: p.Type, Title: p.Title.In(loc)}
	raw, err := json.Marshal(p.Content)
	if err != nil {
		return pageVM{}, err
	}
	payload, err := validators.DecodeContent(p.Type, raw)
	if err != nil {
		return pageVM{}, err
	}
	if tc, ok := payload.(*models.TextContent); ok {
		vm.HTML = htmlsanitize.PrepareForDisplay(tc.Body.In(loc))
		return vm, nil
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return pageVM{}, err
	}
	vm.Data = projectLocalized(generic, loc)
	return vm, nil
}

// projectLocalized walks decoded JSON and replaces every {en, fr} object
// with the string for loc.
func projectLocalized(v any, loc string) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 2 {
			en, okEN := t[models.LocaleEN].(string)
			fr, okFR := t[models.LocaleFR].(string)
			if okEN && okFR {
				return models.Localized{EN: en, FR: fr}.In(loc)
			}
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = projectLocalized(val, loc)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = projectLocalized(val, loc)
		}
		return out
	default:
		return v
	}
}
