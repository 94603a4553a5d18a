package site

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/civickey/civickey/internal/app/content"
	"github.com/civickey/civickey/internal/app/system/tenant"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/civickey/civickey/internal/testutil"
	"go.uber.org/zap"
)

func TestProjectLocalized(t *testing.T) {
	in := map[string]any{
		"intro": map[string]any{"en": "Hello", "fr": "Bonjour"},
		"cards": []any{
			map[string]any{"title": map[string]any{"en": "Pool", "fr": ""}, "icon": "pool"},
		},
	}
	want := map[string]any{
		"intro": "Bonjour",
		"cards": []any{
			map[string]any{"title": "Pool", "icon": "pool"},
		},
	}
	if got := projectLocalized(in, models.LocaleFR); !reflect.DeepEqual(got, want) {
		t.Errorf("projectLocalized = %#v", got)
	}
}

func TestLocalizeZone(t *testing.T) {
	v := content.ZoneView{
		Zone: models.Zone{ZoneID: "zone-a", Name: models.Localized{FR: "Secteur A", EN: "Area A"}},
		CollectionTypes: []models.CollectionType{
			{ID: "garbage", Name: models.Localized{FR: "Ordures", EN: "Garbage"}},
			{ID: "compost", Name: models.Localized{FR: "Compost", EN: "Compost"}},
		},
		Collections: models.ZoneSchedule{
			"compost": {DayOfWeek: 1, Frequency: models.FrequencyWeekly},
			"garbage": {DayOfWeek: 4, Frequency: models.FrequencyBiweekly},
		},
		SpecialCollections: []models.SpecialCollection{
			{ID: "old", Name: models.Localized{FR: "Ancienne"}, Date: "2026-01-01", Active: false},
			{ID: "bulky", Name: models.Localized{FR: "Encombrants", EN: "Bulky items"}, Date: "2026-11-20", Active: true},
		},
		Guidelines: models.Localized{FR: "Bacs au chemin\navant 7 h"},
	}

	vm := localizeZone(v, models.LocaleEN)
	if vm.Name != "Area A" {
		t.Errorf("name = %q", vm.Name)
	}
	if len(vm.Collections) != 2 || vm.Collections[0].TypeID != "garbage" || vm.Collections[0].Weekday != "Thursday" {
		t.Errorf("collections = %+v", vm.Collections)
	}
	if len(vm.Specials) != 1 || vm.Specials[0].Name != "Bulky items" {
		t.Errorf("specials = %+v", vm.Specials)
	}
	if vm.Guidelines != "<p>Bacs au chemin<br>avant 7 h</p>" {
		t.Errorf("guidelines = %q", vm.Guidelines)
	}
}

func newTestSite(t *testing.T) (http.Handler, *content.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := content.New(db, time.UTC, nil, zap.NewNop())
	return Routes(NewHandler(svc, "", zap.NewNop())), svc, testutil.NewFixtures(t, db)
}

func TestTextPageIsSanitized(t *testing.T) {
	router, svc, fx := newTestSite(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateMunicipality(ctx, "saint-lazare", "Saint-Lazare")

	_, err := svc.CreatePage(ctx, "saint-lazare", content.PageInput{
		Slug:      "taxes",
		Type:      models.PageText,
		Title:     models.Localized{FR: "Taxes", EN: "Taxes"},
		Content:   []byte(`{"body":{"fr":"<p>Payez en ligne</p><script>alert(1)</script>","en":"Pay online"}}`),
		Published: true,
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, tenant.WithTestTenant(httptest.NewRequest("GET", "/fr/taxes", nil), "saint-lazare"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var vm struct {
		Title string `json:"title"`
		HTML  string `json:"html"`
	}
	testutil.DecodeJSON(t, rec, &vm)
	if !strings.Contains(vm.HTML, "Payez en ligne") || strings.Contains(vm.HTML, "script") {
		t.Errorf("html = %q", vm.HTML)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, tenant.WithTestTenant(httptest.NewRequest("GET", "/en/taxes", nil), "saint-lazare"))
	testutil.DecodeJSON(t, rec, &vm)
	if vm.HTML != "<p>Pay online</p>" {
		t.Errorf("en html = %q", vm.HTML)
	}
	if c := rec.Result().Cookies(); len(c) == 0 || c[0].Value != "en" {
		t.Errorf("locale cookie = %+v", c)
	}
}

func TestUnsupportedLocaleIs404(t *testing.T) {
	router, _, fx := newTestSite(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateMunicipality(ctx, "saint-lazare", "Saint-Lazare")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, tenant.WithTestTenant(httptest.NewRequest("GET", "/de/events", nil), "saint-lazare"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRootRedirectsToRequestLocale(t *testing.T) {
	router, _, _ := newTestSite(t)

	req := tenant.WithTestTenant(httptest.NewRequest("GET", "/", nil), "saint-lazare")
	req.Header.Set("Accept-Language", "en-CA,en;q=0.9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/en/" {
		t.Errorf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestNoTenantIs404(t *testing.T) {
	router, _, _ := newTestSite(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/fr/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
