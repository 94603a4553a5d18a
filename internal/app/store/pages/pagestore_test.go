package pagestore_test

import (
	"encoding/json"
	"errors"
	"testing"

	pagestore "github.com/civickey/civickey/internal/app/store/pages"
	"github.com/civickey/civickey/internal/app/system/indexes"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/civickey/civickey/internal/testutil"
	"go.uber.org/zap"
)

func councilPage(slug string, published bool) models.CustomPage {
	return models.CustomPage{
		Slug:  slug,
		Type:  models.PageCouncil,
		Title: models.Localized{EN: "Council", FR: "Conseil"},
		Content: map[string]any{
			"members": []any{
				map[string]any{"name": "Jeanne Roy", "role": map[string]any{"en": "Mayor", "fr": "Mairesse"}},
			},
		},
		Published: published,
	}
}

func TestStore_PublishedAndBySlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := pagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "saint-lazare", councilPage("council", true)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "saint-lazare", councilPage("draft", false)); err != nil {
		t.Fatalf("Create draft: %v", err)
	}

	pub, err := store.Published(ctx, "saint-lazare")
	if err != nil {
		t.Fatalf("Published: %v", err)
	}
	if len(pub) != 1 || pub[0].Slug != "council" {
		t.Fatalf("Published = %+v", pub)
	}
	if pub[0].PublishedAt == nil {
		t.Error("PublishedAt not stamped")
	}

	if _, err := store.BySlug(ctx, "saint-lazare", "draft", false); !errors.Is(err, pagestore.ErrNotFound) {
		t.Errorf("draft visible publicly: %v", err)
	}
	if _, err := store.BySlug(ctx, "saint-lazare", "draft", true); err != nil {
		t.Errorf("draft not visible to editors: %v", err)
	}
	if _, err := store.BySlug(ctx, "hudson", "council", true); !errors.Is(err, pagestore.ErrNotFound) {
		t.Errorf("cross-tenant BySlug err = %v", err)
	}
}

func TestStore_ContentRoundTripsAsJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := pagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := councilPage("council", true)
	if _, err := store.Create(ctx, "saint-lazare", in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.BySlug(ctx, "saint-lazare", "council", false)
	if err != nil {
		t.Fatalf("BySlug: %v", err)
	}

	want, _ := json.Marshal(in.Content)
	have, err := json.Marshal(got.Content)
	if err != nil {
		t.Fatalf("marshal stored content: %v", err)
	}
	if string(have) != string(want) {
		t.Errorf("content = %s, want %s", have, want)
	}
}

func TestStore_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := pagestore.New(db)

	if _, err := store.Create(ctx, "saint-lazare", councilPage("council", true)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "saint-lazare", councilPage("Council", false)); !errors.Is(err, pagestore.ErrDuplicateSlug) {
		t.Errorf("duplicate err = %v, want ErrDuplicateSlug", err)
	}
	if _, err := store.Create(ctx, "hudson", councilPage("council", true)); err != nil {
		t.Errorf("same slug in another municipality: %v", err)
	}
}

func TestStore_UpdateKeepsFirstPublishedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := pagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, "saint-lazare", councilPage("council", false))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	p.Published = true
	first, err := store.Update(ctx, "saint-lazare", p.ID, p)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if first.PublishedAt == nil {
		t.Fatal("PublishedAt not set on publish")
	}

	first.Title.EN = "City council"
	second, err := store.Update(ctx, "saint-lazare", p.ID, first)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if second.PublishedAt == nil || !second.PublishedAt.Equal(*first.PublishedAt) {
		t.Errorf("PublishedAt changed: %v -> %v", first.PublishedAt, second.PublishedAt)
	}
}
