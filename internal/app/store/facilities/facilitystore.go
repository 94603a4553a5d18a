// internal/app/store/facilities/facilitystore.go
package facilitystore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/store/scoped"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "facilities"

var ErrNotFound = errors.New("facility not found")

type Store struct {
	c scoped.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: scoped.New(db.Collection(Collection))}
}

// List returns facilities sorted by folded french name.
func (s *Store) List(ctx context.Context, municipalityID string) ([]models.Facility, error) {
	out := []models.Facility{}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if err := s.c.Find(ctx, municipalityID, bson.M{}, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, municipalityID, id string) (models.Facility, error) {
	var f models.Facility
	err := s.c.FindOne(ctx, municipalityID, bson.M{"_id": id}, &f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Facility{}, ErrNotFound
	}
	if err != nil {
		return models.Facility{}, err
	}
	return f, nil
}

func (s *Store) Create(ctx context.Context, municipalityID string, f models.Facility) (models.Facility, error) {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID().Hex()
	f.MunicipalityID = municipalityID
	f.NameCI = normalize.Fold(f.Name.In(models.LocaleFR))
	f.CreatedAt = now
	f.UpdatedAt = now
	if err := s.c.InsertOne(ctx, municipalityID, f); err != nil {
		return models.Facility{}, err
	}
	return f, nil
}

func (s *Store) Update(ctx context.Context, municipalityID, id string, f models.Facility) (models.Facility, error) {
	f.NameCI = normalize.Fold(f.Name.In(models.LocaleFR))
	f.UpdatedAt = time.Now().UTC()
	ok, err := s.c.SetFields(ctx, municipalityID, bson.M{"_id": id}, f)
	if err != nil {
		return models.Facility{}, err
	}
	if !ok {
		return models.Facility{}, ErrNotFound
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
