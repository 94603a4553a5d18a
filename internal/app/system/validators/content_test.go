package validators

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/civickey/civickey/internal/domain/models"
)

func TestPageContent_Valid(t *testing.T) {
	tests := []struct {
		name string
		typ  models.PageType
		raw  string
	}{
		{"text", models.PageText, `{"body":{"en":"<p>Hi</p>","fr":"<p>Salut</p>"},"contactInfo":{"phone":"450-555-0100","email":"info@saint-lazare.ca"}}`},
		{"info cards", models.PageInfoCards, `{"intro":{"en":"","fr":"Intro"},"cards":[{"title":{"en":"Pools","fr":"Piscines"},"description":{"en":"","fr":""},"icon":"swim"}]}`},
		{"pdf", models.PagePDF, `{"description":{"en":"","fr":""},"documents":[{"title":{"en":"Budget","fr":"Budget"},"url":"https://saint-lazare.ca/budget.pdf","description":{"en":"","fr":""}}]}`},
		{"council", models.PageCouncil, `{"members":[{"name":"Jeanne Roy","role":{"en":"Mayor","fr":"Mairesse"},"email":"maire@saint-lazare.ca"}]}`},
		{"links", models.PageLinks, `{"categories":[{"title":{"en":"Services","fr":"Services"},"links":[{"title":{"en":"Permits","fr":"Permis"},"url":"https://example.com/permis"}]}]}`},
		{"contact", models.PageContact, `{"address":{"en":"1 Main","fr":"1 rue Principale"},"hours":{"en":"","fr":""},"departments":[{"name":{"en":"Public works","fr":"Travaux publics"},"hours":{"en":"","fr":""}}]}`},
		{"empty cards", models.PageInfoCards, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PageContent(tt.typ, json.RawMessage(tt.raw)); err != nil {
				t.Fatalf("PageContent: %v", err)
			}
		})
	}
}

func TestPageContent_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		typ     models.PageType
		raw     string
		wantMsg string
	}{
		{"unknown type", models.PageType("video"), `{}`, "unknown page type"},
		{"unknown field", models.PageText, `{"body":{"en":"x","fr":"x"},"script":"x"}`, "does not match"},
		{"shape of other type", models.PageCouncil, `{"documents":[]}`, "does not match"},
		{"empty body", models.PageText, `{"body":{"en":"","fr":""}}`, "body is required"},
		{"body only script", models.PageText, `{"body":{"en":"<script>x()</script>","fr":""}}`, "body is required"},
		{"bad pdf url", models.PagePDF, `{"documents":[{"title":{"en":"a","fr":"a"},"url":"javascript:alert(1)"}]}`, "documents[0].url"},
		{"member without name", models.PageCouncil, `{"members":[{"name":" "}]}`, "members[0].name"},
		{"link without url", models.PageLinks, `{"categories":[{"title":{"en":"a","fr":"a"},"links":[{"title":{"en":"a","fr":"a"}}]}]}`, "links[0].url"},
		{"bad contact email", models.PageContact, `{"email":"nope"}`, "email must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PageContent(tt.typ, json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestPageContent_SanitizesTextBody(t *testing.T) {
	m, err := PageContent(models.PageText, json.RawMessage(`{"body":{"en":"<p>Hi</p><script>x()</script>","fr":"<p onclick=\"x()\">Salut</p>"}}`))
	if err != nil {
		t.Fatalf("PageContent: %v", err)
	}
	body := m["body"].(map[string]any)
	if body["en"] != "<p>Hi</p>" {
		t.Errorf("en = %q", body["en"])
	}
	if body["fr"] != "<p>Salut</p>" {
		t.Errorf("fr = %q", body["fr"])
	}
}

func TestPageContent_EmptyListsSerializeAsArrays(t *testing.T) {
	m, err := PageContent(models.PageCouncil, nil)
	if err != nil {
		t.Fatalf("PageContent: %v", err)
	}
	members, ok := m["members"].([]any)
	if !ok || len(members) != 0 {
		t.Errorf("members = %#v, want empty array", m["members"])
	}
}

func TestDecodeContent_RoundTripsStoredMap(t *testing.T) {
	stored, err := PageContent(models.PageLinks, json.RawMessage(`{"categories":[{"title":{"en":"A","fr":"A"},"links":[{"title":{"en":"x","fr":"x"},"url":"https://x.example"}]}]}`))
	if err != nil {
		t.Fatalf("PageContent: %v", err)
	}
	raw, _ := json.Marshal(stored)
	v, err := DecodeContent(models.PageLinks, raw)
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	links := v.(*models.LinksContent)
	if len(links.Categories) != 1 || links.Categories[0].Links[0].URL != "https://x.example" {
		t.Errorf("decoded = %+v", links)
	}
}
