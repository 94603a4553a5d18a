package search

import (
	"reflect"
	"testing"

	"github.com/civickey/civickey/internal/domain/models"
)

func item(id string, terms ...string) models.WasteItem {
	return models.WasteItem{ID: id, SearchTerms: terms}
}

func ids(res []Result) []string {
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.Item.ID
	}
	return out
}

func TestSearch_PrefixBeforeSubstring(t *testing.T) {
	items := []models.WasteItem{
		item("carton", "carton", "boite recyclable"),
		item("papier", "recyclage", "papier recycle"),
		item("batterie", "batterie"),
		item("bouteille", "bouteille", "contenant recyclable"),
	}

	res := Search("rec", items)

	got := ids(res)
	want := []string{"papier", "carton", "bouteille"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Search(rec) = %v, want %v", got, want)
	}
	if res[0].Match != MatchPrefix {
		t.Errorf("first result match = %q, want prefix", res[0].Match)
	}
	for _, r := range res[1:] {
		if r.Match != MatchSubstring {
			t.Errorf("%s match = %q, want substring", r.Item.ID, r.Match)
		}
	}
}

func TestSearch_SpecExample(t *testing.T) {
	items := []models.WasteItem{
		item("a", "recyclage", "papier recyclé"),
		item("b", "batterie"),
	}
	res := Search("rec", items)
	if len(res) != 1 || res[0].Item.ID != "a" || res[0].Match != MatchPrefix {
		t.Fatalf("unexpected results: %+v", res)
	}
}

func TestSearch_ItemAppearsOnce(t *testing.T) {
	items := []models.WasteItem{
		item("x", "pile recyclable", "recuperation"),
	}
	res := Search("rec", items)
	if len(res) != 1 {
		t.Fatalf("expected a single result, got %d", len(res))
	}
	if res[0].Match != MatchPrefix {
		t.Errorf("match = %q, want prefix (any term prefix wins)", res[0].Match)
	}
}

func TestSearch_CaseAndDiacriticInsensitive(t *testing.T) {
	items := []models.WasteItem{item("ecran", "ecran", "televiseur")}

	for _, q := range []string{"ÉCR", "Écran", "télé", "TELEV"} {
		if got := Search(q, items); len(got) != 1 {
			t.Errorf("Search(%q) returned %d results, want 1", q, len(got))
		}
	}
}

func TestSearch_ShortQuery(t *testing.T) {
	items := []models.WasteItem{item("a", "aerosol")}

	for _, q := range []string{"", " ", "a", " é "} {
		got := Search(q, items)
		if got == nil || len(got) != 0 {
			t.Errorf("Search(%q) = %v, want empty non-nil slice", q, got)
		}
	}
}

func TestSearch_NoMatch(t *testing.T) {
	items := []models.WasteItem{item("a", "aerosol")}
	if got := Search("zz", items); len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestBuildTerms(t *testing.T) {
	got := BuildTerms("Papier recyclé", "Recycled paper", "papier")
	want := []string{"papier recycle", "papier", "recycle", "recycled paper", "recycled", "paper"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildTerms = %v, want %v", got, want)
	}
}
