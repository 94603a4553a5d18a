// internal/app/store/wasteitems/wasteitemstore.go
package wasteitemstore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/store/scoped"
	"github.com/civickey/civickey/internal/app/system/search"
	"github.com/civickey/civickey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "waste_items"

var ErrNotFound = errors.New("waste item not found")

type Store struct {
	c scoped.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: scoped.New(db.Collection(Collection))}
}

// List returns the catalog in display order. Search results keep this
// order within each match group.
func (s *Store) List(ctx context.Context, municipalityID string) ([]models.WasteItem, error) {
	out := []models.WasteItem{}
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}})
	if err := s.c.Find(ctx, municipalityID, bson.M{}, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, municipalityID, id string) (models.WasteItem, error) {
	var it models.WasteItem
	err := s.c.FindOne(ctx, municipalityID, bson.M{"_id": id}, &it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.WasteItem{}, ErrNotFound
	}
	if err != nil {
		return models.WasteItem{}, err
	}
	return it, nil
}

func withTerms(it models.WasteItem) models.WasteItem {
	values := append([]string{it.Name.FR, it.Name.EN}, it.Keywords...)
	it.SearchTerms = search.BuildTerms(values...)
	if it.SearchTerms == nil {
		it.SearchTerms = []string{}
	}
	return it
}

// Create stores the item with freshly computed search terms.
func (s *Store) Create(ctx context.Context, municipalityID string, it models.WasteItem) (models.WasteItem, error) {
	it = withTerms(it)
	it.ID = primitive.NewObjectID().Hex()
	it.MunicipalityID = municipalityID
	it.UpdatedAt = time.Now().UTC()
	if err := s.c.InsertOne(ctx, municipalityID, it); err != nil {
		return models.WasteItem{}, err
	}
	return it, nil
}

func (s *Store) Update(ctx context.Context, municipalityID, id string, it models.WasteItem) (models.WasteItem, error) {
	it = withTerms(it)
	it.UpdatedAt = time.Now().UTC()
	ok, err := s.c.SetFields(ctx, municipalityID, bson.M{"_id": id}, it)
	if err != nil {
		return models.WasteItem{}, err
	}
	if !ok {
		return models.WasteItem{}, ErrNotFound
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

// CountByBin reports how many items reference binID, so a collection type
// cannot be removed while items still point at it.
func (s *Store) CountByBin(ctx context.Context, municipalityID, binID string) (int64, error) {
	return s.c.Count(ctx, municipalityID, bson.M{"bin_id": binID})
}
