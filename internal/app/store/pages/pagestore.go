// internal/app/store/pages/pagestore.go
package pagestore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/store/scoped"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "pages"

var (
	ErrNotFound      = errors.New("page not found")
	ErrDuplicateSlug = errors.New("a page with this slug already exists")
)

type Store struct {
	c scoped.Collection
}

// New opens the pages collection so that nested content decodes as plain
// maps, which encode back to the same JSON shape that was stored.
func New(db *mongo.Database) *Store {
	opts := options.Collection().SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	return &Store{c: scoped.New(db.Collection(Collection, opts))}
}

var menuOrder = bson.D{{Key: "sort_order", Value: 1}, {Key: "slug", Value: 1}}

// List returns every page, drafts included, in menu order.
func (s *Store) List(ctx context.Context, municipalityID string) ([]models.CustomPage, error) {
	out := []models.CustomPage{}
	if err := s.c.Find(ctx, municipalityID, bson.M{}, &out, options.Find().SetSort(menuOrder)); err != nil {
		return nil, err
	}
	return out, nil
}

// Published returns published pages in menu order.
func (s *Store) Published(ctx context.Context, municipalityID string) ([]models.CustomPage, error) {
	out := []models.CustomPage{}
	if err := s.c.Find(ctx, municipalityID, bson.M{"published": true}, &out, options.Find().SetSort(menuOrder)); err != nil {
		return nil, err
	}
	return out, nil
}

// BySlug finds a page by slug. Drafts are ErrNotFound unless
// includeDrafts is set.
func (s *Store) BySlug(ctx context.Context, municipalityID, slug string, includeDrafts bool) (models.CustomPage, error) {
	filter := bson.M{"slug": normalize.Slug(slug)}
	if !includeDrafts {
		filter["published"] = true
	}
	return s.findOne(ctx, municipalityID, filter)
}

func (s *Store) Get(ctx context.Context, municipalityID, id string) (models.CustomPage, error) {
	return s.findOne(ctx, municipalityID, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, municipalityID string, filter bson.M) (models.CustomPage, error) {
	var p models.CustomPage
	err := s.c.FindOne(ctx, municipalityID, filter, &p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CustomPage{}, ErrNotFound
	}
	if err != nil {
		return models.CustomPage{}, err
	}
	return p, nil
}

// Create inserts a page. Content must already be validated for its type.
func (s *Store) Create(ctx context.Context, municipalityID string, p models.CustomPage) (models.CustomPage, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID().Hex()
	p.MunicipalityID = municipalityID
	p.Slug = normalize.Slug(p.Slug)
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Published {
		p.PublishedAt = &now
	}
	if err := s.c.InsertOne(ctx, municipalityID, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CustomPage{}, ErrDuplicateSlug
		}
		return models.CustomPage{}, err
	}
	return p, nil
}

// Update overwrites the page. PublishedAt is set the first time the page
// becomes published and kept afterwards.
func (s *Store) Update(ctx context.Context, municipalityID, id string, p models.CustomPage) (models.CustomPage, error) {
	prev, err := s.Get(ctx, municipalityID, id)
	if err != nil {
		return models.CustomPage{}, err
	}
	now := time.Now().UTC()
	p.Slug = normalize.Slug(p.Slug)
	p.UpdatedAt = now
	p.PublishedAt = prev.PublishedAt
	if p.Published && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	ok, err := s.c.SetFields(ctx, municipalityID, bson.M{"_id": id}, p)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.CustomPage{}, ErrDuplicateSlug
		}
		return models.CustomPage{}, err
	}
	if !ok {
		return models.CustomPage{}, ErrNotFound
	}
	return s.Get(ctx, municipalityID, id)
}

func (s *Store) Delete(ctx context.Context, municipalityID, id string) error {
	ok, err := s.c.DeleteOne(ctx, municipalityID, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SetPublished toggles publication without touching the content.
func (s *Store) SetPublished(ctx context.Context, municipalityID, id string, published bool) (models.CustomPage, error) {
	p, err := s.Get(ctx, municipalityID, id)
	if err != nil {
		return models.CustomPage{}, err
	}
	p.Published = published
	return s.Update(ctx, municipalityID, id, p)
}
