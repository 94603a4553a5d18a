// internal/app/store/zones/zonestore.go
package zonestore

import (
	"context"
	"errors"

	"github.com/civickey/civickey/internal/app/store/scoped"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "zones"

var (
	ErrNotFound  = errors.New("zone not found")
	ErrDuplicate = errors.New("a zone with this id already exists")
)

type Store struct {
	c scoped.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: scoped.New(db.Collection(Collection))}
}

// List returns the municipality's zones by sort order, then ID.
func (s *Store) List(ctx context.Context, municipalityID string) ([]models.Zone, error) {
	out := []models.Zone{}
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "zone_id", Value: 1}})
	if err := s.c.Find(ctx, municipalityID, bson.M{}, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// IDs returns the zone IDs of the municipality.
func (s *Store) IDs(ctx context.Context, municipalityID string) ([]string, error) {
	zones, err := s.List(ctx, municipalityID)
	if err != nil {
		return nil, err
	}
	return models.ZoneIDs(zones), nil
}

func (s *Store) Get(ctx context.Context, municipalityID, zoneID string) (models.Zone, error) {
	var z models.Zone
	err := s.c.FindOne(ctx, municipalityID, bson.M{"zone_id": normalize.Slug(zoneID)}, &z)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Zone{}, ErrNotFound
	}
	if err != nil {
		return models.Zone{}, err
	}
	return z, nil
}

func (s *Store) Create(ctx context.Context, municipalityID string, z models.Zone) (models.Zone, error) {
	z.MunicipalityID = municipalityID
	z.ZoneID = normalize.Slug(z.ZoneID)
	if err := s.c.InsertOne(ctx, municipalityID, z); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Zone{}, ErrDuplicate
		}
		return models.Zone{}, err
	}
	return z, nil
}

// Update replaces the name, description and sort order. The zone ID is
// immutable since schedules are keyed by it.
func (s *Store) Update(ctx context.Context, municipalityID, zoneID string, z models.Zone) (models.Zone, error) {
	zoneID = normalize.Slug(zoneID)
	ok, err := s.c.UpdateOne(ctx, municipalityID, bson.M{"zone_id": zoneID}, bson.M{"$set": bson.M{
		"name":        z.Name,
		"description": z.Description,
		"sort_order":  z.SortOrder,
	}})
	if err != nil {
		return models.Zone{}, err
	}
	if !ok {
		return models.Zone{}, ErrNotFound
	}
	return s.Get(ctx, municipalityID, zoneID)
}

func (s *Store) Delete(ctx context.Context, municipalityID, zoneID string) error {
	ok, err := s.c.DeleteOne(ctx, municipalityID, bson.M{"zone_id": normalize.Slug(zoneID)})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
